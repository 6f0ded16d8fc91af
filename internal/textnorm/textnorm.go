// Package textnorm provides the shared text normalization used by both the
// contextual-hashtag extraction and the duplicate-content similarity check.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)

	// đ/Đ carry no combining mark, so NFD decomposition alone leaves them intact
	dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")
)

// Fold removes Vietnamese diacritics from s ("chính thức" -> "chinh thuc").
func Fold(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		return dReplacer.Replace(s)
	}
	return dReplacer.Replace(folded)
}

// StripURLs replaces every http(s)/www URL in s with a single space.
func StripURLs(s string) string {
	return urlPattern.ReplaceAllString(s, " ")
}

// Tokens lowercases s, removes URLs and punctuation, and splits on whitespace.
// Diacritics are preserved; use FoldTokens when accent-insensitive tokens are
// needed.
func Tokens(s string) []string {
	s = strings.ToLower(StripURLs(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// FoldTokens is Tokens applied after diacritic folding.
func FoldTokens(s string) []string {
	return Tokens(Fold(s))
}
