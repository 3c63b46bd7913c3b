package valueobjects

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxTitleBytes is MediaWiki's limit on page title length.
const MaxTitleBytes = 255

// invalidTitleChars cannot appear in a MediaWiki page title.
const invalidTitleChars = "#<>[]|{}"

// ArticleTitle is the canonical identifier of a Wikipedia article:
// spaces are stored as underscores and case is significant.
type ArticleTitle string

// NewArticleTitle normalizes raw user or API input into an ArticleTitle
func NewArticleTitle(raw string) (ArticleTitle, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("article title cannot be empty")
	}
	if len(trimmed) > MaxTitleBytes {
		return "", errors.New("article title exceeds 255 bytes")
	}
	if strings.ContainsAny(trimmed, invalidTitleChars) {
		return "", errors.New("article title contains characters not allowed in page titles")
	}
	return ArticleTitle(strings.ReplaceAll(trimmed, " ", "_")), nil
}

// String returns the underscore form used on the wire
func (t ArticleTitle) String() string {
	return string(t)
}

// IsZero checks if the title is empty
func (t ArticleTitle) IsZero() bool {
	return t == ""
}

// DisplayName returns the title as readers see it, with spaces
func (t ArticleTitle) DisplayName() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Obscured keeps the first character and masks every remaining one with an
// underscore, e.g. "Elephant" becomes "E_______".
func (t ArticleTitle) Obscured() string {
	if t == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(string(t))
	rest := utf8.RuneCountInString(string(t)[size:])
	return string(first) + strings.Repeat("_", rest)
}

// HasPrefixFold reports whether the title starts with prefix, ignoring case.
// Both sides are compared in underscore form.
func (t ArticleTitle) HasPrefixFold(prefix string) bool {
	p := strings.ReplaceAll(prefix, " ", "_")
	if len(t) < len(p) {
		return false
	}
	return strings.EqualFold(string(t)[:len(p)], p)
}
