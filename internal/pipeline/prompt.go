package pipeline

import (
	"fmt"
	"strings"
)

// SeparatorToken is the literal line the model must emit between the body
// and the bullet section.
const SeparatorToken = "---"

const (
	defaultTopic  = "Hỗ trợ người dùng truy cập kênh chính thức an toàn và giải đáp các vấn đề tài khoản thường gặp."
	defaultTone   = "thân thiện, hỗ trợ, chuyên nghiệp"
	defaultLength = "trung bình"
)

// DiversifyDirective is appended to the user instruction when a candidate was
// too similar to previously generated texts and a regeneration is requested.
const DiversifyDirective = "LƯU Ý QUAN TRỌNG: Bài viết trước quá giống các bài đã đăng. " +
	"Hãy viết lại với cấu trúc câu, cách mở đầu và từ vựng hoàn toàn khác. " +
	"Không lặp lại bất kỳ cụm từ hay bố cục nào đã dùng trước đó."

// BuildPrompts assembles the system/user instruction pair for one request.
// Pure function of the request plus the fixed defaults.
func BuildPrompts(req *Request) (systemPrompt, userPrompt string) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = defaultTone
	}
	length := strings.TrimSpace(req.Length)
	if length == "" {
		length = defaultLength
	}

	var sb strings.Builder
	sb.WriteString("Bạn là chuyên gia viết nội dung mạng xã hội tiếng Việt cho fanpage chăm sóc khách hàng.\n")
	sb.WriteString("Yêu cầu định dạng bắt buộc:\n")
	sb.WriteString("- Phần thân bài dài 60-140 từ.\n")
	sb.WriteString(fmt.Sprintf("- Sau thân bài là một dòng chỉ chứa đúng ký tự \"%s\".\n", SeparatorToken))
	sb.WriteString(fmt.Sprintf("- Sau dòng \"%s\" là 3-6 gạch đầu dòng ngắn gọn, mỗi dòng một ý.\n", SeparatorToken))
	sb.WriteString("- KHÔNG chèn đường link, hashtag hay thông tin liên hệ; các phần đó được hệ thống thêm sau.\n")
	sb.WriteString("- KHÔNG sao chép nguyên văn từ nguồn khác; diễn đạt lại, không lặp lại 8 từ liên tiếp giống hệt bất kỳ văn bản tham khảo hay bài viết trước nào.\n")

	var ub strings.Builder
	ub.WriteString(fmt.Sprintf("Chủ đề: %s\n", topic))
	ub.WriteString(fmt.Sprintf("Giọng văn: %s\n", tone))
	ub.WriteString(fmt.Sprintf("Độ dài: %s\n", length))
	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		ub.WriteString(fmt.Sprintf("Từ khóa cần nhắc đến tự nhiên trong bài: %s\n", kw))
	}
	ub.WriteString("Viết bài đăng theo đúng định dạng đã yêu cầu.")

	return sb.String(), ub.String()
}
