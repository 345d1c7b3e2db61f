package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrUnparseableOutput is returned when no JSON document can be recovered from model text
var ErrUnparseableOutput = errors.New("could not parse JSON from model output")

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("```\\s*$")
)

// ParseModelJSON recovers a JSON document from model output. Markdown code fences are
// stripped first; if the rest still does not parse, the text between the first opening
// bracket and the last closing bracket is tried.
func ParseModelJSON(text string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = leadingFence.ReplaceAllString(cleaned, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	start := strings.IndexAny(cleaned, "[{")
	end := max(strings.LastIndex(cleaned, "]"), strings.LastIndex(cleaned, "}"))
	if start == -1 || end == -1 || end <= start {
		return nil, ErrUnparseableOutput
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, ErrUnparseableOutput
	}
	return json.RawMessage(candidate), nil
}
