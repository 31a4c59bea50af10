package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/config"
)

func extraction(typ constants.ExpectedType, maxLen int, rules ...config.PatternRule) config.Extraction {
	return config.Extraction{
		Name:            "test",
		Rules:           rules,
		ExpectedType:    typ,
		MaxLength:       maxLen,
		TrimWhitespace:  true,
		DefaultNotFound: "NOT_FOUND",
	}
}

func afterRule(before string) config.PatternRule {
	return config.PatternRule{BeforeText: before, Mode: constants.ModeAfter}
}

func TestResolveAfterCaseInsensitive(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "total amount:",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Total Amount: $10", ext)
	require.True(t, res.Success)
	assert.Equal(t, "$10", res.Value)
	assert.Equal(t, constants.StatusSuccess, res.Status)

	// Exact-case marker behaves identically.
	ext.Rules[0].BeforeText = "Total Amount:"
	exact := Resolve("Total Amount: $10", ext)
	assert.Equal(t, res.Value, exact.Value)
}

func TestResolveCaseSensitiveMarkerMismatch(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText:    "total amount:",
		CaseSensitive: true,
		Mode:          constants.ModeAfter,
	})

	res := Resolve("Total Amount: $10", ext)
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.Value)
}

func TestResolvePreservesOriginalCasing(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "bill to:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Bill To: ACME Industries\nDate: today", ext)
	require.True(t, res.Success)
	assert.Equal(t, "ACME Industries", res.Value)
}

func TestResolveFirstMatchingRuleWins(t *testing.T) {
	ext := extraction(constants.TypeAny, 100,
		afterRule("Ref:"),
		afterRule("ID:"),
	)

	res := Resolve("Ref: first-value ID: second-value", ext)
	require.True(t, res.Success)
	assert.Equal(t, "first-value ID: second-value", res.Value)
}

func TestResolveOrderDeterminism(t *testing.T) {
	// Rule 0 matches and validates, so rule 1 must never be consulted even
	// though it would also match.
	ext := extraction(constants.TypeAny, 100,
		config.PatternRule{BeforeText: "Invoice #:", AfterText: "\n", Mode: constants.ModeAfter},
		config.PatternRule{BeforeText: "Reference:", AfterText: "\n", Mode: constants.ModeAfter},
	)

	text := "Invoice #: A-100\nReference: B-200\n"
	res := Resolve(text, ext)
	require.True(t, res.Success)
	assert.Equal(t, "A-100", res.Value)
}

func TestResolveFallsThroughToNextRule(t *testing.T) {
	// First rule's marker is absent; the chain advances.
	ext := extraction(constants.TypeAny, 100,
		config.PatternRule{BeforeText: "Grand Total:", Mode: constants.ModeAfter},
		config.PatternRule{BeforeText: "Total:", Mode: constants.ModeAfter},
	)

	res := Resolve("Total: 42", ext)
	require.True(t, res.Success)
	assert.Equal(t, "42", res.Value)
}

func TestResolveBetween(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "From",
		EndText:    "To",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("From 2024-01-01 To 2024-12-31", ext)
	require.True(t, res.Success)
	assert.Equal(t, "2024-01-01", res.Value)
}

func TestResolveBetweenMissingEndMarkerFails(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "From",
		EndText:    "Until",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("From 2024-01-01 To 2024-12-31", ext)
	assert.False(t, res.Success)
	assert.Equal(t, constants.StatusNoMatch, res.Status)
}

func TestResolveBetweenIdenticalMarkers(t *testing.T) {
	// end_text identical to before_text is legal: the end marker is the next
	// occurrence strictly after the begin marker.
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "|",
		EndText:    "|",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("id | ACME-77 | total", ext)
	require.True(t, res.Success)
	assert.Equal(t, "ACME-77", res.Value)
}

func TestResolveBetweenEndBeforeBeginIgnored(t *testing.T) {
	// The "To" preceding "From" must not terminate the candidate; the search
	// for the end marker starts after the begin marker's end offset.
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "From",
		EndText:    "To",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("To be confirmed. From 2024-03-01 To 2024-04-01", ext)
	require.True(t, res.Success)
	assert.Equal(t, "2024-03-01", res.Value)
}

func TestResolveAfterClipsToMaxLength(t *testing.T) {
	ext := extraction(constants.TypeAny, 5, afterRule("Total:"))

	res := Resolve("Total: $123456.78", ext)
	require.True(t, res.Success)
	assert.Equal(t, "$1234", res.Value)
}

func TestResolveAfterMissingConfiguredEndMarkerFails(t *testing.T) {
	// after_text, once configured, must occur after the begin marker.
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Total:",
		AfterText:  "Date:",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Total: 42", ext)
	assert.False(t, res.Success)
}

func TestResolveLeftmostOccurrenceWins(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Total:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Total: 10\nTotal: 20\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "10", res.Value)
}

func TestResolveBeforeMode(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Invoice No:",
		Mode:       constants.ModeBefore,
	})

	res := Resolve("Acme Corp\nInvoice No: 12345", ext)
	require.True(t, res.Success)
	assert.Equal(t, "Acme Corp", res.Value)
}

func TestResolveBeforeModeNothingPrecedingFails(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Invoice No:",
		Mode:       constants.ModeBefore,
	})

	res := Resolve("Invoice No: 12345", ext)
	assert.False(t, res.Success)
}

// The around window STARTS AT the begin of the marker match and extends
// max_length characters forward. This pins the documented centering policy.
func TestResolveAroundWindowStartsAtMarker(t *testing.T) {
	ext := extraction(constants.TypeAny, 8, config.PatternRule{
		BeforeText: "Total:",
		Mode:       constants.ModeAround,
	})

	res := Resolve("abcdef Total: 99 xyz", ext)
	require.True(t, res.Success)
	assert.Equal(t, "Total: 9", res.Value)
}

func TestResolveEmptyCandidateFailsEvenWithMarkers(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "From",
		EndText:    "To",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("From   To 2024", ext)
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.Value)
}

func TestResolveNotFoundCarriesDefault(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, afterRule("Nowhere:"))
	ext.DefaultNotFound = "missing"

	res := Resolve("completely unrelated text", ext)
	assert.False(t, res.Success)
	assert.Equal(t, "missing", res.Value)
	assert.Equal(t, constants.StatusNoMatch, res.Status)
}

func TestResolveIdempotent(t *testing.T) {
	ext := extraction(constants.TypeNumbers, 30, afterRule("Total:"))
	text := "Subtotal: 9.50\nTotal: 12.00\n"

	first := Resolve(text, ext)
	second := Resolve(text, ext)
	assert.Equal(t, first, second)
}

func TestResolveTypeBothFallsThrough(t *testing.T) {
	ext := extraction(constants.TypeBoth, 100,
		config.PatternRule{BeforeText: "Ref:", AfterText: "\n", Mode: constants.ModeAfter},
		config.PatternRule{BeforeText: "ID:", AfterText: "\n", Mode: constants.ModeAfter},
	)

	// "INV" has no digit, so the first rule fails type validation and the
	// chain advances to the rule that yields "INV-2024".
	res := Resolve("Ref: INV\nID: INV-2024\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "INV-2024", res.Value)
}

func TestResolveTypeBothExhaustedChain(t *testing.T) {
	ext := extraction(constants.TypeBoth, 100, config.PatternRule{
		BeforeText: "Ref:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Ref: INV\n", ext)
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.Value)
}

func TestResolveTypeNumbers(t *testing.T) {
	ext := extraction(constants.TypeNumbers, 30, config.PatternRule{
		BeforeText: "Total:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Total: $1,234.56\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "$1,234.56", res.Value)

	bad := Resolve("Total: 12ab\n", ext)
	assert.False(t, bad.Success)
}

func TestResolveTypeLetters(t *testing.T) {
	ext := extraction(constants.TypeLetters, 60, config.PatternRule{
		BeforeText: "Bill To:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Bill To: John Smith\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "John Smith", res.Value)

	bad := Resolve("Bill To: John2\n", ext)
	assert.False(t, bad.Success)
}

func TestResolveRuleMaxLengthOverridesExtraction(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Total:",
		Mode:       constants.ModeAfter,
		MaxLength:  4,
	})

	res := Resolve("Total: 123456789", ext)
	require.True(t, res.Success)
	assert.Equal(t, "1234", res.Value)
}

func TestResolveRemoveSpecialChars(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "ID:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})
	ext.RemoveSpecial = true

	res := Resolve("ID: INV/2024#77!\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "INV202477", res.Value)
}

func TestResolveWhitespaceCollapsedWhenTrimming(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "Bill To:",
		AfterText:  "Date:",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("Bill To:   ACME \t Industries \n Date: now", ext)
	require.True(t, res.Success)
	assert.Equal(t, "ACME Industries", res.Value)
}

func TestReadErrorRowShape(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, afterRule("Total:"))

	row := ReadError(ext)
	assert.False(t, row.Success)
	assert.Equal(t, constants.StatusReadError, row.Status)
	assert.Equal(t, "NOT_FOUND", row.Value)
}

func TestResolveFoldedOffsetsShrinkingRune(t *testing.T) {
	// U+0130 lowercases to a shorter UTF-8 sequence; offsets found in a folded
	// copy of the haystack would drift left of the real marker.
	ext := extraction(constants.TypeNumbers, 100, afterRule("total:"))

	res := Resolve("İİİİİİİİİİ Total: 42", ext)
	require.True(t, res.Success)
	assert.Equal(t, "42", res.Value)
}

func TestResolveFoldedOffsetsGrowingRune(t *testing.T) {
	// U+023A lowercases to a longer UTF-8 sequence; drifted offsets would run
	// past the end of the original text.
	ext := extraction(constants.TypeNumbers, 100, afterRule("total:"))

	res := Resolve("ȺȺȺȺȺȺȺȺȺȺ Total:42", ext)
	require.True(t, res.Success)
	assert.Equal(t, "42", res.Value)
}

func TestResolveFoldedMarkerRune(t *testing.T) {
	// A dotted capital I in the document matches the plain ASCII marker.
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "istanbul:",
		AfterText:  "\n",
		Mode:       constants.ModeAfter,
	})

	res := Resolve("İstanbul: Kadikoy\n", ext)
	require.True(t, res.Success)
	assert.Equal(t, "Kadikoy", res.Value)
}

func TestResolveBetweenFoldedEndMarker(t *testing.T) {
	ext := extraction(constants.TypeAny, 100, config.PatternRule{
		BeforeText: "start",
		EndText:    "end",
		Mode:       constants.ModeBetween,
	})

	res := Resolve("İİ START value END İİ", ext)
	require.True(t, res.Success)
	assert.Equal(t, "value", res.Value)
}
