package generation

import (
	"strings"
	"unicode"

	"germanclash/internal/models"
)

// NormalizeType maps loose type spellings onto the canonical form
func NormalizeType(s string) models.ExerciseType {
	return models.NormalizeExerciseType(s)
}

// SanitizeToken lowercases a word and keeps only letters, combining marks and hyphens
func SanitizeToken(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if unicode.IsLetter(r) || unicode.Is(unicode.M, r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeWordTranslations turns a decoded JSON value into a translation map.
// Keys are sanitized, values trimmed, and pairs with an empty side are dropped.
// Anything that is not an object, or leaves no pairs, is absent.
func NormalizeWordTranslations(v any) models.WordTranslations {
	obj, ok := v.(map[string]any)
	if !ok {
		return models.WordTranslations{}
	}

	out := make(map[string]string, len(obj))
	for k, raw := range obj {
		key := SanitizeToken(k)
		val, _ := raw.(string)
		val = strings.TrimSpace(val)
		if key != "" && val != "" {
			out[key] = val
		}
	}
	return models.NewWordTranslations(out)
}

// needsTranslations reports whether a type carries word-by-word statement translations
func needsTranslations(t models.ExerciseType) bool {
	return t == models.TypeFillInTheBlank || t == models.TypeFillInTheBlankWriting
}
