package resolver

import (
	"strings"
	"unicode"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/config"
)

// postProcess cleans a raw candidate: trim and collapse whitespace, strip
// special characters, then clip to the configured max length. Order matters: the clip
// applies to the trimmed value.
func postProcess(s string, ext config.Extraction, maxLen int) string {
	if ext.TrimWhitespace {
		s = collapseWhitespace(strings.TrimSpace(s))
	}
	if ext.RemoveSpecial {
		s = stripSpecial(s)
	}
	s = clip(s, maxLen)
	if ext.TrimWhitespace {
		s = strings.TrimSpace(s)
	}
	return s
}

// collapseWhitespace folds internal whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripSpecial keeps letters, digits, whitespace, and the punctuation that
// commonly appears inside extracted values (periods, hyphens, underscores).
func stripSpecial(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// clip truncates to n characters (runes, so multi-byte text is never split).
func clip(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// validateType checks a post-processed candidate against the expected type.
// A failed check advances the chain; it is not an error.
func validateType(s string, t constants.ExpectedType) bool {
	switch t {
	case constants.TypeNumbers:
		return isNumbers(s)
	case constants.TypeLetters:
		return isLetters(s)
	case constants.TypeBoth:
		return hasLetter(s) && hasDigit(s)
	default:
		return true
	}
}

// numericSymbols are ignored when checking a numbers candidate: currency
// marks, grouping separators, signs, and percent.
func isNumericSymbol(r rune) bool {
	switch r {
	case '$', '£', '€', '¥', ',', '.', '-', '+', '%':
		return true
	}
	return unicode.IsSpace(r)
}

// isNumbers requires at least one digit and nothing besides digits and
// numeric symbols once currency marks and separators are stripped.
func isNumbers(s string) bool {
	sawDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			sawDigit = true
		case isNumericSymbol(r):
		default:
			return false
		}
	}
	return sawDigit
}

// isLetters requires at least one letter and nothing besides letters and spaces.
func isLetters(s string) bool {
	sawLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			sawLetter = true
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return sawLetter
}

func hasLetter(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}
