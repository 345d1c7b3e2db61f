package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedField is wrapped by parse failures of JSON-valued columns
var ErrMalformedField = errors.New("malformed field")

// TranslationsState tells whether a word translation map is present and usable
type TranslationsState int

const (
	TranslationsAbsent TranslationsState = iota
	TranslationsValid
	TranslationsInvalid
)

// WordTranslations maps lowercase German words of a statement to their Spanish meaning.
// A value that failed to parse is kept as Invalid together with the parse error
// instead of being silently dropped.
type WordTranslations struct {
	state   TranslationsState
	entries map[string]string
	err     error
}

// NewWordTranslations builds a valid value, or an absent one when m is empty
func NewWordTranslations(m map[string]string) WordTranslations {
	if len(m) == 0 {
		return WordTranslations{}
	}
	entries := make(map[string]string, len(m))
	for k, v := range m {
		entries[k] = v
	}
	return WordTranslations{state: TranslationsValid, entries: entries}
}

// ParseWordTranslations decodes a stored JSON object. Empty input and JSON null are absent.
// Input that is a JSON string holding an object is unwrapped once.
func ParseWordTranslations(raw []byte) WordTranslations {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return WordTranslations{}
	}

	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return invalidTranslations(err)
		}
		return ParseWordTranslations([]byte(inner))
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return invalidTranslations(err)
	}
	return NewWordTranslations(m)
}

func invalidTranslations(err error) WordTranslations {
	return WordTranslations{
		state: TranslationsInvalid,
		err:   fmt.Errorf("%w: word_translations: %v", ErrMalformedField, err),
	}
}

// State returns the variant held by w
func (w WordTranslations) State() TranslationsState {
	return w.state
}

// Err returns the parse error of an invalid value
func (w WordTranslations) Err() error {
	return w.err
}

// Entries returns a copy of the map, or nil unless the value is valid
func (w WordTranslations) Entries() map[string]string {
	if w.state != TranslationsValid {
		return nil
	}
	out := make(map[string]string, len(w.entries))
	for k, v := range w.entries {
		out[k] = v
	}
	return out
}

// Lookup finds the translation of a word, ignoring case
func (w WordTranslations) Lookup(word string) (string, bool) {
	if w.state != TranslationsValid {
		return "", false
	}
	v, ok := w.entries[strings.ToLower(word)]
	return v, ok
}

// MarshalJSON writes the map, or null for absent and invalid values
func (w WordTranslations) MarshalJSON() ([]byte, error) {
	if w.state != TranslationsValid {
		return []byte("null"), nil
	}
	return json.Marshal(w.entries)
}

// UnmarshalJSON never fails; malformed input becomes an Invalid value
func (w *WordTranslations) UnmarshalJSON(data []byte) error {
	*w = ParseWordTranslations(data)
	return nil
}

// Scan implements sql.Scanner
func (w *WordTranslations) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*w = WordTranslations{}
	case []byte:
		*w = ParseWordTranslations(v)
	case string:
		*w = ParseWordTranslations([]byte(v))
	default:
		return fmt.Errorf("unsupported word_translations column type %T", src)
	}
	return nil
}

// Value implements driver.Valuer. Only valid maps are stored.
func (w WordTranslations) Value() (driver.Value, error) {
	if w.state != TranslationsValid {
		return nil, nil
	}
	b, err := json.Marshal(w.entries)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
