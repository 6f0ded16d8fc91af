package pipeline

import "strings"

// fallbackBullets is used whenever the model produced no usable bullet
// section. Keeping at least 3 lines is a hard invariant of the final post.
var fallbackBullets = []string{
	"Truy cập qua đường link chính thức để đảm bảo an toàn",
	"Đội ngũ hỗ trợ trực 24/7, phản hồi nhanh chóng",
	"Thông tin cá nhân được bảo mật tuyệt đối",
	"Hướng dẫn xử lý sự cố tài khoản tận tình",
	"Cập nhật đường truy cập mới nhất thường xuyên",
}

// bulletMarkers are the leading characters stripped from bullet lines
const bulletMarkers = "-*•–—+· \t"

// Parse splits a raw completion into body and bullet lines at the separator
// token. It never fails: a missing separator leaves the whole text as body,
// and an empty bullet section falls back to the canned list. Bullet counts
// above 6 are kept as-is; only the lower bound is enforced via the fallback.
func Parse(raw string) RawPayload {
	body := strings.TrimSpace(raw)
	var bulletSection string

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == SeparatorToken {
			body = strings.TrimSpace(strings.Join(lines[:i], "\n"))
			bulletSection = strings.Join(lines[i+1:], "\n")
			break
		}
	}

	bullets := extractBullets(bulletSection)
	if len(bullets) == 0 {
		bullets = append([]string(nil), fallbackBullets...)
	}

	return RawPayload{Body: body, Bullets: bullets}
}

// extractBullets strips bullet markers and deduplicates exact repeats while
// preserving first-seen order.
func extractBullets(section string) []string {
	var bullets []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), bulletMarkers)
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		bullets = append(bullets, line)
	}

	return bullets
}
