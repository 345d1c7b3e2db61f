package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidExerciseShape is returned when an exercise is missing the fields its type requires
var ErrInvalidExerciseShape = errors.New("invalid exercise shape")

// ExerciseType identifies how an exercise is played
type ExerciseType string

const (
	TypeFillInTheBlank        ExerciseType = "FILL_IN_THE_BLANK"
	TypeFillInTheBlankWriting ExerciseType = "FILL_IN_THE_BLANK_WRITING"
	TypeListening             ExerciseType = "LISTENING"
	TypeIdentifyTheWord       ExerciseType = "IDENTIFY_THE_WORD"
	TypeWheelOfFortune        ExerciseType = "WHEEL_OF_FORTUNE"
	TypeFreeWriting           ExerciseType = "FREE_WRITING"
	TypeWordSearch            ExerciseType = "WORD_SEARCH"
)

// ExerciseTypes lists every playable type
var ExerciseTypes = []ExerciseType{
	TypeFillInTheBlank,
	TypeFillInTheBlankWriting,
	TypeListening,
	TypeIdentifyTheWord,
	TypeWheelOfFortune,
	TypeFreeWriting,
	TypeWordSearch,
}

const (
	MinLevel = 1
	MaxLevel = 6
)

// NormalizeExerciseType converts loose spellings such as "fill-in the blank"
// into the canonical upper snake case form
func NormalizeExerciseType(s string) ExerciseType {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return ExerciseType(strings.ToUpper(s))
}

// Valid reports whether t is a known exercise type
func (t ExerciseType) Valid() bool {
	for _, known := range ExerciseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsBonus reports whether the type is appended to a session as a bonus round
func (t ExerciseType) IsBonus() bool {
	return t == TypeFreeWriting
}

// IsScoring reports whether the type awards points
func (t ExerciseType) IsScoring() bool {
	return t != TypeFreeWriting && t != TypeFillInTheBlankWriting
}

// SupportsSecondAttempt reports whether one retry is allowed after a wrong answer
func (t ExerciseType) SupportsSecondAttempt() bool {
	return t == TypeFillInTheBlank || t == TypeIdentifyTheWord || t == TypeListening
}

// IsMultipleChoice reports whether the type is answered by picking an option
func (t ExerciseType) IsMultipleChoice() bool {
	return t.SupportsSecondAttempt()
}

// Exercise is a single piece of exercise content. Empty strings stand for absent values.
type Exercise struct {
	ID                          string           `json:"id"`
	Level                       int              `json:"level"`
	Type                        ExerciseType     `json:"type"`
	Topic                       string           `json:"topic"`
	Statement                   string           `json:"statement"`
	CorrectAnswer               string           `json:"correct_answer"`
	IncorrectAnswer1            string           `json:"incorrect_answer_1,omitempty"`
	IncorrectAnswer2            string           `json:"incorrect_answer_2,omitempty"`
	IncorrectAnswer3            string           `json:"incorrect_answer_3,omitempty"`
	IncorrectAnswer1Explanation string           `json:"incorrect_answer_1_explanation,omitempty"`
	IncorrectAnswer2Explanation string           `json:"incorrect_answer_2_explanation,omitempty"`
	IncorrectAnswer3Explanation string           `json:"incorrect_answer_3_explanation,omitempty"`
	GermanWord                  string           `json:"german_word,omitempty"`
	SpanishTranslation          string           `json:"spanish_translation,omitempty"`
	Emoji                       string           `json:"emoji,omitempty"`
	Hint                        string           `json:"hint,omitempty"`
	WordTranslations            WordTranslations `json:"word_translations"`
	CreatedAt                   time.Time        `json:"created_at"`
	UpdatedAt                   time.Time        `json:"updated_at"`
}

// CorrectValue returns the option value that counts as the right answer.
// Listening exercises are answered with the translation of the spoken word.
func (e *Exercise) CorrectValue() string {
	if e.Type == TypeListening {
		return e.SpanishTranslation
	}
	return e.CorrectAnswer
}

// IncorrectAnswers returns the non-empty wrong options in column order
func (e *Exercise) IncorrectAnswers() []string {
	var out []string
	for _, a := range []string{e.IncorrectAnswer1, e.IncorrectAnswer2, e.IncorrectAnswer3} {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// AnswerOptions returns the unshuffled option list for a multiple-choice exercise.
// Empty values are never offered.
func (e *Exercise) AnswerOptions() []string {
	var out []string
	if v := e.CorrectValue(); strings.TrimSpace(v) != "" {
		out = append(out, v)
	}
	return append(out, e.IncorrectAnswers()...)
}

// ExplanationFor returns the explanation attached to a wrong option, or "" if none
func (e *Exercise) ExplanationFor(option string) string {
	switch {
	case option == "":
		return ""
	case option == e.IncorrectAnswer1:
		return e.IncorrectAnswer1Explanation
	case option == e.IncorrectAnswer2:
		return e.IncorrectAnswer2Explanation
	case option == e.IncorrectAnswer3:
		return e.IncorrectAnswer3Explanation
	}
	return ""
}

// Validate checks that the exercise carries every field its type needs to be played
func (e *Exercise) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidExerciseShape, e.Type)
	}
	if e.Level < MinLevel || e.Level > MaxLevel {
		return fmt.Errorf("%w: level %d out of range", ErrInvalidExerciseShape, e.Level)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidExerciseShape, e.Type, field)
	}

	switch e.Type {
	case TypeFillInTheBlank:
		if strings.TrimSpace(e.CorrectAnswer) == "" {
			return missing("correct_answer")
		}
		if len(e.IncorrectAnswers()) == 0 {
			return missing("an incorrect answer")
		}
	case TypeIdentifyTheWord:
		if strings.TrimSpace(e.CorrectAnswer) == "" {
			return missing("correct_answer")
		}
		if strings.TrimSpace(e.Emoji) == "" {
			return missing("emoji")
		}
		if len(e.IncorrectAnswers()) == 0 {
			return missing("an incorrect answer")
		}
	case TypeListening:
		if strings.TrimSpace(e.GermanWord) == "" {
			return missing("german_word")
		}
		if strings.TrimSpace(e.SpanishTranslation) == "" {
			return missing("spanish_translation")
		}
		if len(e.IncorrectAnswers()) == 0 {
			return missing("an incorrect answer")
		}
	case TypeWheelOfFortune, TypeWordSearch, TypeFillInTheBlankWriting:
		if strings.TrimSpace(e.CorrectAnswer) == "" {
			return missing("correct_answer")
		}
	case TypeFreeWriting:
		if strings.TrimSpace(e.Statement) == "" {
			return missing("statement")
		}
	}

	if e.WordTranslations.State() == TranslationsInvalid {
		return fmt.Errorf("%w: word_translations: %v", ErrInvalidExerciseShape, e.WordTranslations.Err())
	}
	return nil
}

// ExerciseSummary is the compact listing used to avoid generating duplicates
type ExerciseSummary struct {
	Type               ExerciseType
	Statement          string
	CorrectAnswer      string
	GermanWord         string
	SpanishTranslation string
}

// LevelName returns the CEFR label for a game level
func LevelName(level int) string {
	names := map[int]string{1: "A1", 2: "A2", 3: "B1", 4: "B2", 5: "C1", 6: "C2"}
	if name, ok := names[level]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", level)
}
