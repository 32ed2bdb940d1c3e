package extraction

import (
	"strings"
	"unicode"
)

// Pages whose text scores below these ratios are treated as unreadable,
// typically raw glyph codes from fonts without a usable encoding.
const (
	minPrintableRatio = 0.85
	minWordlikeRatio  = 0.3
)

// readable reports whether pages hold text worth checking.
func readable(pages []string) bool {
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return false
	}
	return printableRatio(text) >= minPrintableRatio && wordlikeRatio(text) >= minWordlikeRatio
}

// printableRatio is the share of runes that are printable or whitespace.
func printableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

// wordlikeRatio is the share of fields between 2 and 15 runes long.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

// isGarbageRune matches private use code points, U+FFFD and control
// characters other than line breaks and tabs.
func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == unicode.ReplacementChar:
		return true
	case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

func stripGarbage(s string) string {
	return strings.Map(func(r rune) rune {
		if isGarbageRune(r) {
			return -1
		}
		return r
	}, s)
}
