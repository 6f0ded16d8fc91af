package pipeline

import (
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pagedesk/pagedesk-api/internal/textnorm"
)

const (
	defaultMethodLink = "https://cualuon360.net/huong-dan-truy-cap"

	headerFallback = "HỖ TRỢ KHÁCH HÀNG"
	bulletsLabel   = "Thông tin quan trọng:"
	hashtagsLabel  = "Hashtags:"

	maxKeywordTags    = 6
	maxContextualTags = 10
	contextWindowMin  = 2
	contextWindowMax  = 3
)

var headerIcons = []string{
	"🔥", "⚡", "🌟", "✨", "💎", "🎯", "🚀", "🏆", "👑", "💰",
	"🎁", "📢", "🔔", "💥", "🌈", "🍀", "🧧", "🎉", "🛡️", "📌",
	"💡", "⭐", "🔑", "🎊", "🧿", "🪙", "📣", "🏅", "🌹", "❤️",
}

var promoIcons = []string{"🎁", "💝", "🧧", "🎀", "📦", "💌"}

var disclaimerIcons = []string{"ℹ️", "📘", "🛡️", "📎", "🔎"}

const disclaimerText = "Nội dung mang tính tham khảo, chúng tôi không kêu gọi tham gia " +
	"các hoạt động giải trí có rủi ro hay huy động tài chính dưới mọi hình thức."

// keywordTagSuffixes are appended to the space-stripped keyword to form the
// fixed hashtag set; each is only emitted when the keyword is non-empty.
var keywordTagSuffixes = []string{
	"link chính thức",
	"an toàn",
	"hỗ trợ lấy lại tiền",
	"rút tiền",
	"mở khóa tài khoản",
}

// triggerTopics force the risk-disclosure note block and the fixed topic tag
// set when matched case-insensitively against the request topic or keyword.
var triggerTopics = []string{"baccarat", "nổ hũ", "xóc đĩa", "tài xỉu", "casino", "slot"}

var triggerTopicTags = []string{"GiaiTriCoTrachNhiem", "Tren18Tuoi", "ChoiVuiCoChungMuc"}

var riskNoteLines = []string{
	"Hoạt động giải trí trực tuyến tiềm ẩn rủi ro tài chính, cân nhắc kỹ trước khi tham gia",
	"Dịch vụ chỉ dành cho người từ 18 tuổi trở lên",
}

// stopWords are matched against accent-folded tokens
var stopWords = map[string]bool{
	"va": true, "la": true, "cua": true, "cac": true, "nhung": true,
	"mot": true, "cho": true, "voi": true, "trong": true, "den": true,
	"tu": true, "co": true, "khong": true, "duoc": true, "khi": true,
	"nay": true, "ban": true, "se": true, "da": true, "ve": true,
	"len": true, "hay": true, "hoac": true, "ngay": true, "tai": true,
	"nhat": true, "rat": true, "hon": true, "thi": true, "nen": true,
	"vui": true, "long": true, "quy": true, "khach": true, "luon": true,
	"nhe": true, "moi": true, "deu": true, "chi": true, "neu": true,
}

// Composer assembles the final post text from the parsed payload and the
// request. The random source is injected so tests can assert exact output.
type Composer struct {
	rng *rand.Rand
}

func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// Compose builds the final post. The block order is a hard contract with the
// publishing UI: header, sublink, promo, body, bullet label, bullets+notes,
// optional contact, disclaimer, hashtag label and tag line.
func (c *Composer) Compose(body string, bullets []string, req *Request) string {
	triggered := req.IncludeNotes || hasTriggerTopic(req.Topic) || hasTriggerTopic(req.Keyword)

	var sections []string

	head := c.headerLine(req.Keyword)
	if sub := sublinkLine(req.Keyword, req.Link); sub != "" {
		head += "\n" + sub
	}
	sections = append(sections, head)

	sections = append(sections, c.promoBlock(req.MethodLink))

	if body != "" {
		sections = append(sections, body)
	}

	sections = append(sections, bulletsLabel)
	sections = append(sections, bulletBlock(bullets, triggered))

	if contact := contactBlock(req.ContactPhone, req.ContactChannel); contact != "" {
		sections = append(sections, contact)
	}

	sections = append(sections, c.disclaimerLine())

	tags := c.hashtags(body, bullets, req.Keyword, triggered)
	sections = append(sections, hashtagsLabel+"\n"+strings.Join(tags, " "))

	return trimTrailing(strings.Join(sections, "\n\n"))
}

// headerLine places two distinct icons around the uppercased keyword
func (c *Composer) headerLine(keyword string) string {
	first := c.rng.Intn(len(headerIcons))
	second := c.rng.Intn(len(headerIcons) - 1)
	if second >= first {
		second++
	}

	title := headerFallback
	if kw := strings.TrimSpace(keyword); kw != "" {
		title = strings.ToUpper(kw)
	}

	return headerIcons[first] + " " + title + " " + headerIcons[second]
}

// sublinkLine emits `#keyword ➡ link` with each segment independently
// optional; the line is omitted entirely when both sources are empty.
func sublinkLine(keyword, link string) string {
	var parts []string
	if kw := strings.TrimSpace(keyword); kw != "" {
		parts = append(parts, "#"+strings.ReplaceAll(kw, " ", ""))
	}
	if link = strings.TrimSpace(link); link != "" {
		parts = append(parts, "➡ "+link)
	}
	return strings.Join(parts, " ")
}

func (c *Composer) promoBlock(methodLink string) string {
	if strings.TrimSpace(methodLink) == "" {
		methodLink = defaultMethodLink
	}
	icon := promoIcons[c.rng.Intn(len(promoIcons))]
	return icon + " Cập nhật phương thức truy cập mới nhất, nhận ưu đãi mỗi ngày:\n👉 " + methodLink
}

func bulletBlock(bullets []string, triggered bool) string {
	lines := make([]string, 0, len(bullets)+len(riskNoteLines))
	for _, b := range bullets {
		lines = append(lines, "• "+b)
	}
	if triggered {
		for _, note := range riskNoteLines {
			lines = append(lines, "⚠️ "+note)
		}
	}
	return strings.Join(lines, "\n")
}

func contactBlock(phone, channel string) string {
	var lines []string
	if phone = strings.TrimSpace(phone); phone != "" {
		lines = append(lines, "📞 Hotline: "+phone)
	}
	if channel = strings.TrimSpace(channel); channel != "" {
		lines = append(lines, "💬 Telegram: "+channel)
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) disclaimerLine() string {
	icon := disclaimerIcons[c.rng.Intn(len(disclaimerIcons))]
	return icon + " " + disclaimerText
}

// hashtags combines keyword-derived fixed tags, contextual tags extracted
// from the body+bullets text, and the topic-triggered fixed set, deduplicated
// case-insensitively in that order.
func (c *Composer) hashtags(body string, bullets []string, keyword string, triggered bool) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(tag string) {
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			return
		}
		seen[key] = true
		tags = append(tags, "#"+tag)
	}

	if kw := strings.ReplaceAll(strings.TrimSpace(keyword), " ", ""); kw != "" {
		add(kw)
		for _, suffix := range keywordTagSuffixes {
			if len(tags) >= maxKeywordTags {
				break
			}
			add(kw + strings.ReplaceAll(suffix, " ", ""))
		}
	}

	base := len(tags)
	for _, tag := range contextualTags(body + " " + strings.Join(bullets, " ")) {
		if len(tags)-base >= maxContextualTags {
			break
		}
		add(tag)
	}

	if triggered {
		for _, tag := range triggerTopicTags {
			add(tag)
		}
	}

	return tags
}

// contextualTags extracts 2-and-3-word windows from the normalized text with
// stop-words removed and CamelCase-joins the survivors into hashtag tokens.
func contextualTags(text string) []string {
	var kept []string
	for _, tok := range textnorm.FoldTokens(text) {
		if !stopWords[tok] {
			kept = append(kept, tok)
		}
	}

	var tags []string
	for i := range kept {
		for size := contextWindowMin; size <= contextWindowMax; size++ {
			if i+size > len(kept) {
				break
			}
			tags = append(tags, camelJoin(kept[i:i+size]))
		}
	}
	return tags
}

func camelJoin(words []string) string {
	var b strings.Builder
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

func hasTriggerTopic(s string) bool {
	s = strings.ToLower(s)
	for _, trigger := range triggerTopics {
		if strings.Contains(s, trigger) {
			return true
		}
	}
	return false
}

// trimTrailing removes trailing whitespace from every line and the text
func trimTrailing(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n \t")
}
