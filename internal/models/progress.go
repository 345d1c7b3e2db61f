package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LevelRecord is the best score a player reached on one level
type LevelRecord struct {
	Highscore int    `json:"highscore"`
	Date      string `json:"date"`
}

// LevelProgress holds per-level best scores stored on a profile.
// Like WordTranslations it keeps malformed stored data as an explicit invalid variant.
type LevelProgress struct {
	invalid bool
	err     error
	levels  map[int]LevelRecord
}

// ParseLevelProgress decodes the stored JSON object keyed by level number
func ParseLevelProgress(raw []byte) LevelProgress {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return LevelProgress{}
	}

	var m map[string]LevelRecord
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return LevelProgress{invalid: true, err: fmt.Errorf("%w: level_progress: %v", ErrMalformedField, err)}
	}

	levels := make(map[int]LevelRecord, len(m))
	for k, rec := range m {
		level, err := strconv.Atoi(k)
		if err != nil {
			return LevelProgress{invalid: true, err: fmt.Errorf("%w: level_progress key %q", ErrMalformedField, k)}
		}
		levels[level] = rec
	}
	return LevelProgress{levels: levels}
}

// Valid reports whether the stored value parsed cleanly
func (p LevelProgress) Valid() bool {
	return !p.invalid
}

// Err returns the parse error of an invalid value
func (p LevelProgress) Err() error {
	return p.err
}

// Highscore returns the stored best score for a level, 0 when unknown
func (p LevelProgress) Highscore(level int) int {
	return p.levels[level].Highscore
}

// Levels returns a copy of the per-level records
func (p LevelProgress) Levels() map[int]LevelRecord {
	out := make(map[int]LevelRecord, len(p.levels))
	for k, v := range p.levels {
		out[k] = v
	}
	return out
}

// WithScore returns the progress with score recorded for level when it beats the stored
// highscore. The second result reports whether anything changed. An invalid value is
// replaced by a fresh one.
func (p LevelProgress) WithScore(level, score int, now time.Time) (LevelProgress, bool) {
	next := LevelProgress{levels: map[int]LevelRecord{}}
	if !p.invalid {
		next.levels = p.Levels()
	}
	if score <= next.levels[level].Highscore {
		return p, false
	}
	next.levels[level] = LevelRecord{Highscore: score, Date: now.Format("2006-01-02")}
	return next, true
}

// MarshalJSON writes the object keyed by level number
func (p LevelProgress) MarshalJSON() ([]byte, error) {
	m := make(map[string]LevelRecord, len(p.levels))
	for k, v := range p.levels {
		m[strconv.Itoa(k)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON never fails; malformed input becomes an invalid value
func (p *LevelProgress) UnmarshalJSON(data []byte) error {
	*p = ParseLevelProgress(data)
	return nil
}

// Scan implements sql.Scanner
func (p *LevelProgress) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = LevelProgress{}
	case []byte:
		*p = ParseLevelProgress(v)
	case string:
		*p = ParseLevelProgress([]byte(v))
	default:
		return fmt.Errorf("unsupported level_progress column type %T", src)
	}
	return nil
}

// Value implements driver.Valuer
func (p LevelProgress) Value() (driver.Value, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
