// Package langdetect guesses the source language of a text by counting
// stop-word hits per supported language. It is a cheap heuristic for picking
// a translation source, never authoritative over an explicitly declared
// language.
package langdetect

import (
	"strings"
	"unicode"
)

// minTextLength is the size below which detection is not attempted.
const minTextLength = 10

// priority is the fixed tie-break order. French first: it is the platform's
// primary content language.
var priority = []string{"fr", "en", "ar", "es", "de", "it", "pt", "ru", "zh", "tr", "nl"}

var stopWords = map[string][]string{
	"fr": {"le", "la", "les", "un", "une", "des", "et", "est", "dans", "pour"},
	"en": {"the", "and", "is", "in", "to", "of", "a", "for", "on", "with"},
	"ar": {"ال", "في", "من", "على", "إلى", "أن", "كان", "هذا", "ذلك", "هذه"},
	"es": {"el", "la", "los", "las", "un", "una", "y", "en", "de", "que"},
	"de": {"der", "die", "das", "und", "ist", "in", "den", "von", "mit", "sich"},
	"it": {"il", "la", "lo", "gli", "le", "un", "una", "e", "in", "di"},
	"pt": {"o", "a", "os", "as", "um", "uma", "e", "em", "de", "que"},
	"ru": {"и", "в", "не", "на", "я", "он", "с", "что", "это", "как"},
	"zh": {"的", "是", "在", "和", "了", "有", "我", "他", "这", "个"},
	"tr": {"ve", "bir", "bu", "şey", "için", "ama", "gibi", "de", "da", "ki"},
	"nl": {"de", "het", "een", "en", "is", "van", "op", "te", "dat", "die"},
}

// Detector scores text against per-language stop-word sets.
type Detector struct {
	defaultLanguage string
}

// NewDetector builds a Detector that falls back to defaultLanguage when no
// stop words match or the text is too short.
func NewDetector(defaultLanguage string) *Detector {
	if defaultLanguage == "" {
		defaultLanguage = "fr"
	}
	return &Detector{defaultLanguage: defaultLanguage}
}

// Detect returns the best guess for the text's language code.
func (d *Detector) Detect(text string) string {
	if len([]rune(strings.TrimSpace(text))) < minTextLength {
		return d.defaultLanguage
	}

	words := splitWords(strings.ToLower(text))
	if len(words) == 0 {
		return d.defaultLanguage
	}
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	lowered := strings.ToLower(text)
	best := ""
	bestScore := 0
	for _, lang := range priority {
		score := 0
		for _, stop := range stopWords[lang] {
			// Han text has no word separators, so count substrings there.
			if startsWithHan(stop) {
				score += strings.Count(lowered, stop)
			} else {
				score += counts[stop]
			}
		}
		if score > bestScore {
			best = lang
			bestScore = score
		}
	}
	if bestScore == 0 {
		return d.defaultLanguage
	}
	return best
}

// Supported lists the languages the detector can distinguish, in priority order.
func Supported() []string {
	out := make([]string, len(priority))
	copy(out, priority)
	return out
}

func startsWithHan(s string) bool {
	for _, r := range s {
		return unicode.Is(unicode.Han, r)
	}
	return false
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
