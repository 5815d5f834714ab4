package autoapply

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fieldKind names one known application-form input.
type fieldKind string

const (
	fieldName     fieldKind = "name"
	fieldEmail    fieldKind = "email"
	fieldPhone    fieldKind = "phone"
	fieldLocation fieldKind = "location"
)

// fieldSelectors lists candidate selectors per field, ordered from most
// to least specific. The first one present on the page wins.
var fieldSelectors = map[fieldKind][]string{
	fieldName:     {`input[name="name"]`, `input[name="full_name"]`, `input[placeholder*="name" i]`},
	fieldEmail:    {`input[type="email"]`, `input[name="email"]`, `input[placeholder*="email" i]`},
	fieldPhone:    {`input[type="tel"]`, `input[name="phone"]`, `input[placeholder*="phone" i]`},
	fieldLocation: {`input[name="location"]`, `input[name="city"]`, `input[placeholder*="location" i]`},
}

// submitWords are matched against normalized clickable-element labels.
var submitWords = []string{"apply", "submit"}

// normalizeLabel folds diacritics and lowercases so labels like
// "Ápply Now" on localized pages still count.
func normalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.ToLower(strings.TrimSpace(result))
}

// isSubmitLabel reports whether a clickable element's text looks like a
// job-application control.
func isSubmitLabel(text string) bool {
	label := normalizeLabel(text)
	if label == "" {
		return false
	}
	for _, w := range submitWords {
		if strings.Contains(label, w) {
			return true
		}
	}
	return false
}
