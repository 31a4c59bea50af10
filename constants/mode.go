package constants

// Mode selects how a pattern rule locates its candidate relative to the markers.
type Mode string

// Stable values (these exact strings appear in configuration files).
const (
	ModeAfter   Mode = "after"   // candidate follows before_text
	ModeBefore  Mode = "before"  // candidate precedes before_text
	ModeBetween Mode = "between" // candidate sits between before_text and end_text
	ModeAround  Mode = "around"  // candidate is a window anchored at before_text
)

var allModes = []Mode{ModeAfter, ModeBefore, ModeBetween, ModeAround}

// IsValidMode reports whether s is a recognized extraction mode.
func IsValidMode(s string) bool {
	for _, m := range allModes {
		if string(m) == s {
			return true
		}
	}
	return false
}

// ExpectedType constrains what a validated candidate may contain.
type ExpectedType string

const (
	TypeAny     ExpectedType = "any"
	TypeNumbers ExpectedType = "numbers"
	TypeLetters ExpectedType = "letters"
	TypeBoth    ExpectedType = "both"
)

var allExpectedTypes = []ExpectedType{TypeAny, TypeNumbers, TypeLetters, TypeBoth}

// IsValidExpectedType reports whether s is a recognized expected type.
func IsValidExpectedType(s string) bool {
	for _, t := range allExpectedTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}
