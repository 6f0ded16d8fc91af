package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptsDefaults(t *testing.T) {
	system, user := BuildPrompts(&Request{})

	assert.Contains(t, user, defaultTopic)
	assert.Contains(t, user, defaultTone)
	assert.Contains(t, user, defaultLength)
	assert.Contains(t, system, "60-140")
	assert.Contains(t, system, SeparatorToken)
	assert.Contains(t, system, "3-6")
	assert.Contains(t, system, "8 từ liên tiếp")
}

func TestBuildPromptsForbidsComposerContent(t *testing.T) {
	system, _ := BuildPrompts(&Request{Topic: "khuyến mãi tháng 9"})

	// links, hashtags and contact info are added by the composer, never by
	// the model
	assert.Contains(t, system, "KHÔNG chèn đường link, hashtag hay thông tin liên hệ")
}

func TestBuildPromptsUsesRequestValues(t *testing.T) {
	system, user := BuildPrompts(&Request{
		Topic:   "hướng dẫn lấy lại tài khoản",
		Tone:    "nghiêm túc",
		Length:  "ngắn",
		Keyword: "ku191",
	})

	assert.Contains(t, user, "hướng dẫn lấy lại tài khoản")
	assert.Contains(t, user, "nghiêm túc")
	assert.Contains(t, user, "ngắn")
	assert.Contains(t, user, "ku191")
	assert.NotContains(t, user, defaultTopic)
	assert.NotEmpty(t, system)
}

func TestBuildPromptsIsPure(t *testing.T) {
	req := &Request{Topic: "chủ đề", Keyword: "kubet"}

	s1, u1 := BuildPrompts(req)
	s2, u2 := BuildPrompts(req)

	assert.Equal(t, s1, s2)
	assert.Equal(t, u1, u2)
}

func TestDiversifyDirectiveForbidsRepetition(t *testing.T) {
	assert.True(t, strings.Contains(DiversifyDirective, "cấu trúc"))
	assert.True(t, strings.Contains(DiversifyDirective, "từ vựng"))
}
