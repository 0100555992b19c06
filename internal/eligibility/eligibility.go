// Package eligibility decides whether a field value is worth sending to the
// translation provider. The verdict is pure and deterministic: identical
// inputs always yield identical answers, whether the caller is the automatic
// trigger or a manual request.
package eligibility

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultMinLength is the minimum trimmed length considered translatable.
	DefaultMinLength = 3
	// DefaultMaxDigitRatio is the digit share above which text is skipped.
	DefaultMaxDigitRatio = 0.7
)

var contentExclusions = []*regexp.Regexp{
	regexp.MustCompile(`^https?://\S+$`),                                   // bare URL
	regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`), // email address
	regexp.MustCompile(`^[A-Z0-9_]{5,}$`),                                  // technical code
	regexp.MustCompile(`^\d+$`),                                            // bare number
	regexp.MustCompile(`^#[0-9A-Fa-f]{3,6}$`),                              // hex color
}

var fieldExclusions = []string{"url", "email", "password", "token", "key", "secret", "id", "code"}

// Checker applies the eligibility heuristics. The thresholds are tunable
// because they are heuristics, not correctness guarantees.
type Checker struct {
	minLength     int
	maxDigitRatio float64
}

// Option customizes a Checker.
type Option func(*Checker)

// WithMinLength overrides the minimum trimmed length.
func WithMinLength(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.minLength = n
		}
	}
}

// WithMaxDigitRatio overrides the digit-share threshold.
func WithMaxDigitRatio(r float64) Option {
	return func(c *Checker) {
		if r > 0 {
			c.maxDigitRatio = r
		}
	}
}

// NewChecker builds a Checker with the default thresholds.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{minLength: DefaultMinLength, maxDigitRatio: DefaultMaxDigitRatio}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsTranslatable reports whether the field value should be translated.
func (c *Checker) IsTranslatable(fieldName, text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < c.minLength {
		return false
	}

	for _, pattern := range contentExclusions {
		if pattern.MatchString(trimmed) {
			return false
		}
	}

	lowerField := strings.ToLower(fieldName)
	for _, token := range fieldExclusions {
		if strings.Contains(lowerField, token) {
			return false
		}
	}

	runes := []rune(text)
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits)/float64(len(runes)) > c.maxDigitRatio {
		return false
	}

	return true
}
