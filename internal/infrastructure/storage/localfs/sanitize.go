package localfs

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var illegalNameChars = regexp.MustCompile(`[<>:"/\\|?*\r\n]+`)

// Sanitize replaces every run of characters that are illegal in common
// filesystem names with a single underscore, then truncates to maxLen runes.
// maxLen <= 0 disables truncation.
func Sanitize(name string, maxLen int) string {
	return Truncate(illegalNameChars.ReplaceAllString(name, "_"), maxLen)
}

// Truncate cuts s to at most maxLen runes without splitting a rune.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	count := 0
	for idx := range s {
		if count == maxLen {
			return s[:idx]
		}
		count++
	}
	return s
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// canonicalKey folds case and width and collapses separators so that
// "Finance Reports" and "finance_reports" compare equal.
func canonicalKey(s string) string {
	folded := cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
