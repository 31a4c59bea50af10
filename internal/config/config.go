// Package config loads and normalizes extraction configuration files.
//
// Two surface syntaxes are accepted for a configuration entry: the legacy
// single-rule form (marker fields inline on the entry, optionally with a
// search_terms list of alternative begin markers) and the patterns form (an
// explicit ordered OR-chain). Both normalize at load time into one
// []PatternRule so the resolver never branches on syntax.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
)

// PatternRule is one alternative in an extraction's OR-chain. Immutable once loaded.
type PatternRule struct {
	BeforeText    string         `json:"before_text"`
	AfterText     string         `json:"after_text,omitempty"`
	EndText       string         `json:"end_text,omitempty"`
	CaseSensitive bool           `json:"case_sensitive"`
	Mode          constants.Mode `json:"mode,omitempty"`
	MaxLength     int            `json:"max_length,omitempty"`
}

// Extraction is one named extraction: an ordered rule chain plus post-processing
// and validation policy. Read-only during a run.
type Extraction struct {
	Name            string
	Description     string
	Rules           []PatternRule
	ExpectedType    constants.ExpectedType
	MaxLength       int
	TrimWhitespace  bool
	RemoveSpecial   bool
	DefaultNotFound string
}

// Settings are the global defaults applied to every extraction entry.
type Settings struct {
	MaxExtractionLength    int    `json:"max_extraction_length"`
	TrimWhitespace         *bool  `json:"trim_whitespace"`
	RemoveSpecialChars     bool   `json:"remove_special_chars"`
	DefaultValueIfNotFound string `json:"default_value_if_not_found"`
}

// File is the top-level shape of a configuration file.
type File struct {
	Settings       Settings `json:"settings"`
	Configurations []Entry  `json:"configurations"`
}

// Entry is the raw JSON form of one configuration, before normalization.
type Entry struct {
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	ExpectedType       string        `json:"expected_type,omitempty"`
	MaxLength          int           `json:"max_length,omitempty"`
	TrimWhitespace     *bool         `json:"trim_whitespace,omitempty"`
	RemoveSpecialChars *bool         `json:"remove_special_chars,omitempty"`
	DefaultIfNotFound  string        `json:"default_if_not_found,omitempty"`
	Patterns           []PatternRule `json:"patterns,omitempty"`

	// Legacy single-rule fields.
	BeforeText     string   `json:"before_text,omitempty"`
	SearchTerms    []string `json:"search_terms,omitempty"`
	AfterText      string   `json:"after_text,omitempty"`
	EndText        string   `json:"end_text,omitempty"`
	ExtractionMode string   `json:"extraction_mode,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`
}

const (
	defaultMaxLength = 100
	defaultNotFound  = "NOT_FOUND"
)

// Load reads, validates, and normalizes a configuration file.
// Any problem is fatal and reported as a CONFIG_ERROR before extraction runs.
func Load(path string) ([]Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewConfigError(fmt.Sprintf("reading %s", path), err)
	}
	return Parse(data)
}

// Parse validates and normalizes raw configuration JSON.
func Parse(data []byte) ([]Extraction, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, common.NewConfigError("schema validation", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, common.NewConfigError("parsing configuration JSON", err)
	}

	if len(f.Configurations) == 0 {
		return nil, common.NewConfigError("no configurations defined", common.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(f.Configurations))
	out := make([]Extraction, 0, len(f.Configurations))
	for _, e := range f.Configurations {
		ext, err := normalize(e, f.Settings)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ext.Name]; dup {
			return nil, common.NewConfigError(fmt.Sprintf("duplicate configuration name %q", ext.Name), common.ErrInvalidInput)
		}
		seen[ext.Name] = struct{}{}
		out = append(out, ext)
	}
	return out, nil
}

// normalize folds global settings into an entry and collapses both surface
// syntaxes into one ordered rule chain.
func normalize(e Entry, s Settings) (Extraction, error) {
	if e.Name == "" {
		return Extraction{}, common.NewConfigError("configuration entry missing name", common.ErrInvalidInput)
	}

	maxLen := s.MaxExtractionLength
	if maxLen <= 0 {
		maxLen = defaultMaxLength
	}
	if e.MaxLength > 0 {
		maxLen = e.MaxLength
	}

	trim := true
	if s.TrimWhitespace != nil {
		trim = *s.TrimWhitespace
	}
	if e.TrimWhitespace != nil {
		trim = *e.TrimWhitespace
	}

	removeSpecial := s.RemoveSpecialChars
	if e.RemoveSpecialChars != nil {
		removeSpecial = *e.RemoveSpecialChars
	}

	notFound := s.DefaultValueIfNotFound
	if notFound == "" {
		notFound = defaultNotFound
	}
	if e.DefaultIfNotFound != "" {
		notFound = e.DefaultIfNotFound
	}

	expected := constants.TypeAny
	if e.ExpectedType != "" {
		if !constants.IsValidExpectedType(e.ExpectedType) {
			return Extraction{}, common.NewConfigError(
				fmt.Sprintf("configuration %q has invalid expected_type %q", e.Name, e.ExpectedType),
				common.ErrInvalidInput)
		}
		expected = constants.ExpectedType(e.ExpectedType)
	}

	rules, err := normalizeRules(e)
	if err != nil {
		return Extraction{}, err
	}

	return Extraction{
		Name:            e.Name,
		Description:     e.Description,
		Rules:           rules,
		ExpectedType:    expected,
		MaxLength:       maxLen,
		TrimWhitespace:  trim,
		RemoveSpecial:   removeSpecial,
		DefaultNotFound: notFound,
	}, nil
}

func normalizeRules(e Entry) ([]PatternRule, error) {
	var rules []PatternRule

	switch {
	case len(e.Patterns) > 0:
		rules = append(rules, e.Patterns...)
	case len(e.SearchTerms) > 0:
		// Legacy multi-term form: one alternative per search term, sharing the
		// entry's mode and end marker.
		for _, term := range e.SearchTerms {
			rules = append(rules, PatternRule{
				BeforeText:    term,
				AfterText:     e.AfterText,
				EndText:       e.EndText,
				CaseSensitive: e.CaseSensitive,
				Mode:          constants.Mode(e.ExtractionMode),
			})
		}
	case e.BeforeText != "":
		rules = append(rules, PatternRule{
			BeforeText:    e.BeforeText,
			AfterText:     e.AfterText,
			EndText:       e.EndText,
			CaseSensitive: e.CaseSensitive,
			Mode:          constants.Mode(e.ExtractionMode),
		})
	default:
		return nil, common.NewConfigError(
			fmt.Sprintf("configuration %q has no patterns or search terms", e.Name),
			common.ErrInvalidInput)
	}

	for i := range rules {
		if rules[i].Mode == "" {
			rules[i].Mode = constants.ModeAfter
		}
		if !constants.IsValidMode(string(rules[i].Mode)) {
			return nil, common.NewConfigError(
				fmt.Sprintf("configuration %q has invalid mode %q", e.Name, rules[i].Mode),
				common.ErrInvalidInput)
		}
		if rules[i].BeforeText == "" {
			return nil, common.NewConfigError(
				fmt.Sprintf("configuration %q has a pattern without before_text", e.Name),
				common.ErrInvalidInput)
		}
		if rules[i].Mode == constants.ModeBetween && rules[i].EndText == "" {
			return nil, common.NewConfigError(
				fmt.Sprintf("configuration %q uses between mode without end_text", e.Name),
				common.ErrInvalidInput)
		}
	}
	return rules, nil
}
