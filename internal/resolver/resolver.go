// Package resolver implements marker-based value extraction: given a
// document's raw text and one extraction's ordered rule chain, it finds the
// first rule whose markers are present, post-processes the candidate, and
// validates it against the expected type. The first satisfying rule wins; no
// later rule is evaluated. Rule failures are control flow, not errors.
package resolver

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/config"
)

// Result is one (document, configuration) extraction outcome. Immutable.
type Result struct {
	SourceID   string
	ConfigName string
	Value      string
	Success    bool
	Status     constants.ResultStatus
}

// Resolve runs text through an extraction's rule chain and returns the single
// resolved value, or the configured not-found sentinel. Pure function of its
// inputs: identical text and configuration always yield an identical result.
func Resolve(text string, ext config.Extraction) Result {
	for _, rule := range ext.Rules {
		maxLen := ruleMaxLength(rule, ext)
		candidate, ok := applyRule(text, rule, maxLen)
		if !ok {
			continue
		}
		value := postProcess(candidate, ext, maxLen)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if !validateType(value, ext.ExpectedType) {
			continue
		}
		return Result{
			ConfigName: ext.Name,
			Value:      value,
			Success:    true,
			Status:     constants.StatusSuccess,
		}
	}
	return NotFound(ext)
}

// NotFound is the chain-exhausted result carrying the configured default.
func NotFound(ext config.Extraction) Result {
	return Result{
		ConfigName: ext.Name,
		Value:      ext.DefaultNotFound,
		Success:    false,
		Status:     constants.StatusNoMatch,
	}
}

// ReadError marks a document whose text could not be supplied. One such row is
// produced per configuration so a bad document never blocks the rest.
func ReadError(ext config.Extraction) Result {
	return Result{
		ConfigName: ext.Name,
		Value:      ext.DefaultNotFound,
		Success:    false,
		Status:     constants.StatusReadError,
	}
}

// applyRule locates the raw candidate for one rule. The boolean is the tagged
// matched/not-matched signal; a false return advances the chain. maxLen bounds
// the window for the modes that slice by window (before, around).
func applyRule(text string, rule config.PatternRule, maxLen int) (string, bool) {
	// Matching folds case rune by rune when the rule is case-insensitive, but
	// every offset refers to the original text: the extracted value keeps its
	// original casing, and case mappings that change a rune's byte length
	// (U+0130 shrinks, U+023A grows under ToLower) cannot skew the bounds.
	i, end := indexFold(text, rule.BeforeText, rule.CaseSensitive)
	if i < 0 {
		return "", false
	}

	switch rule.Mode {
	case constants.ModeAfter:
		return resolveAfter(text, rule, end)
	case constants.ModeBefore:
		return resolveBefore(text, i, maxLen)
	case constants.ModeBetween:
		return resolveBetween(text, rule, end)
	case constants.ModeAround:
		return resolveAround(text, i, maxLen)
	default:
		return "", false
	}
}

// resolveAfter extracts the text following the begin marker. When after_text
// is configured it must occur after the marker's end offset; a configured but
// absent end marker fails the rule. Without after_text the candidate runs to
// the end of text and the length clip applies during post-processing.
func resolveAfter(text string, rule config.PatternRule, start int) (string, bool) {
	if rule.AfterText != "" {
		j, _ := indexFold(text[start:], rule.AfterText, rule.CaseSensitive)
		if j < 0 {
			return "", false
		}
		return text[start : start+j], true
	}
	return text[start:], true
}

// resolveBefore treats before_text as the trailing marker: the candidate is
// the last non-empty line within the window preceding the match.
func resolveBefore(text string, markerPos, maxLen int) (string, bool) {
	winStart := markerPos - maxLen
	if winStart < 0 {
		winStart = 0
	}
	lines := strings.Split(text[winStart:markerPos], "\n")
	for k := len(lines) - 1; k >= 0; k-- {
		if line := strings.TrimSpace(lines[k]); line != "" {
			return line, true
		}
	}
	return "", false
}

// resolveBetween extracts strictly between the begin marker and the first
// occurrence of end_text after the begin marker's end offset. An end marker at
// or before the begin position is never considered, which also makes
// end_text == before_text legal when they appear at different offsets.
func resolveBetween(text string, rule config.PatternRule, start int) (string, bool) {
	j, _ := indexFold(text[start:], rule.EndText, rule.CaseSensitive)
	if j < 0 {
		return "", false
	}
	return text[start : start+j], true
}

// resolveAround returns a window of up to maxLen characters STARTING AT
// the begin of the marker match, spanning forward into surrounding context.
func resolveAround(text string, markerPos, maxLen int) (string, bool) {
	end := markerPos + maxLen
	if end > len(text) {
		end = len(text)
	}
	return text[markerPos:end], true
}

func ruleMaxLength(rule config.PatternRule, ext config.Extraction) int {
	if rule.MaxLength > 0 {
		return rule.MaxLength
	}
	return ext.MaxLength
}

// indexFold returns the byte offsets [start, end) in s of the leftmost
// occurrence of substr. Case-insensitive comparison happens rune by rune, so
// both offsets always index s itself.
func indexFold(s, substr string, caseSensitive bool) (int, int) {
	if caseSensitive {
		i := strings.Index(s, substr)
		if i < 0 {
			return -1, -1
		}
		return i, i + len(substr)
	}
	if substr == "" {
		return 0, 0
	}
	for i := range s {
		if n, ok := matchFold(s[i:], substr); ok {
			return i, i + n
		}
	}
	return -1, -1
}

// matchFold reports whether s starts with a case-insensitive match of substr
// and returns the byte length of the matched prefix of s.
func matchFold(s, substr string) (int, bool) {
	n := 0
	for _, want := range substr {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if r != want && unicode.ToLower(r) != unicode.ToLower(want) {
			return 0, false
		}
		n += size
	}
	return n, true
}
