package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNormalizeExerciseType(t *testing.T) {
	tests := []struct {
		in   string
		want ExerciseType
	}{
		{"FILL_IN_THE_BLANK", TypeFillInTheBlank},
		{"fill-in-the-blank", TypeFillInTheBlank},
		{"identify the word", TypeIdentifyTheWord},
		{"  wheel_of-fortune ", TypeWheelOfFortune},
		{"Word Search", TypeWordSearch},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeExerciseType(tt.in); got != tt.want {
				t.Errorf("NormalizeExerciseType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExerciseTypeClassification(t *testing.T) {
	tests := []struct {
		typ     ExerciseType
		bonus   bool
		scoring bool
		retry   bool
	}{
		{TypeFillInTheBlank, false, true, true},
		{TypeFillInTheBlankWriting, false, false, false},
		{TypeListening, false, true, true},
		{TypeIdentifyTheWord, false, true, true},
		{TypeWheelOfFortune, false, true, false},
		{TypeFreeWriting, true, false, false},
		{TypeWordSearch, false, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if tt.typ.IsBonus() != tt.bonus {
				t.Errorf("IsBonus() = %v, want %v", tt.typ.IsBonus(), tt.bonus)
			}
			if tt.typ.IsScoring() != tt.scoring {
				t.Errorf("IsScoring() = %v, want %v", tt.typ.IsScoring(), tt.scoring)
			}
			if tt.typ.SupportsSecondAttempt() != tt.retry {
				t.Errorf("SupportsSecondAttempt() = %v, want %v", tt.typ.SupportsSecondAttempt(), tt.retry)
			}
		})
	}
}

func TestExerciseValidate(t *testing.T) {
	tests := []struct {
		name     string
		exercise Exercise
		wantErr  bool
	}{
		{
			name: "valid fill in the blank",
			exercise: Exercise{ID: "1", Level: 1, Type: TypeFillInTheBlank, Statement: "Ich ___ müde",
				CorrectAnswer: "bin", IncorrectAnswer1: "bist"},
		},
		{
			name:     "fill in the blank without wrong options",
			exercise: Exercise{ID: "1", Level: 1, Type: TypeFillInTheBlank, CorrectAnswer: "bin"},
			wantErr:  true,
		},
		{
			name: "identify the word without emoji",
			exercise: Exercise{ID: "2", Level: 2, Type: TypeIdentifyTheWord, CorrectAnswer: "der Hund",
				IncorrectAnswer1: "die Katze"},
			wantErr: true,
		},
		{
			name: "listening without translation",
			exercise: Exercise{ID: "3", Level: 1, Type: TypeListening, GermanWord: "Haus",
				IncorrectAnswer1: "perro"},
			wantErr: true,
		},
		{
			name:     "wheel of fortune",
			exercise: Exercise{ID: "4", Level: 3, Type: TypeWheelOfFortune, CorrectAnswer: "Guten Tag"},
		},
		{
			name:     "level out of range",
			exercise: Exercise{ID: "5", Level: 7, Type: TypeWordSearch, CorrectAnswer: "Haus"},
			wantErr:  true,
		},
		{
			name:     "unknown type",
			exercise: Exercise{ID: "6", Level: 1, Type: "CROSSWORD", CorrectAnswer: "Haus"},
			wantErr:  true,
		},
		{
			name: "malformed word translations",
			exercise: Exercise{ID: "7", Level: 1, Type: TypeFillInTheBlankWriting, CorrectAnswer: "bin",
				WordTranslations: ParseWordTranslations([]byte(`[1,2]`))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.exercise.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExerciseShape) {
				t.Errorf("Validate() error = %v, want ErrInvalidExerciseShape", err)
			}
		})
	}
}

func TestAnswerOptionsSkipEmpty(t *testing.T) {
	ex := Exercise{Type: TypeListening, SpanishTranslation: "casa", CorrectAnswer: "Haus",
		IncorrectAnswer1: "perro", IncorrectAnswer2: "  ", IncorrectAnswer3: "gato"}

	got := ex.AnswerOptions()
	want := []string{"casa", "perro", "gato"}
	if len(got) != len(want) {
		t.Fatalf("AnswerOptions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AnswerOptions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExplanationFor(t *testing.T) {
	ex := Exercise{IncorrectAnswer1: "a", IncorrectAnswer1Explanation: "why a",
		IncorrectAnswer2: "b", IncorrectAnswer3: "c", IncorrectAnswer3Explanation: "why c"}

	if got := ex.ExplanationFor("c"); got != "why c" {
		t.Errorf("ExplanationFor(c) = %q", got)
	}
	if got := ex.ExplanationFor("b"); got != "" {
		t.Errorf("ExplanationFor(b) = %q, want empty", got)
	}
	if got := ex.ExplanationFor(""); got != "" {
		t.Errorf("ExplanationFor(empty) = %q, want empty", got)
	}
}

func TestParseWordTranslations(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		state TranslationsState
	}{
		{"empty", "", TranslationsAbsent},
		{"null", "null", TranslationsAbsent},
		{"empty object", "{}", TranslationsAbsent},
		{"object", `{"hund":"perro"}`, TranslationsValid},
		{"string wrapped object", `"{\"hund\":\"perro\"}"`, TranslationsValid},
		{"array", `["hund"]`, TranslationsInvalid},
		{"garbage", `{hund`, TranslationsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWordTranslations([]byte(tt.raw))
			if got.State() != tt.state {
				t.Errorf("State() = %v, want %v", got.State(), tt.state)
			}
			if tt.state == TranslationsInvalid && !errors.Is(got.Err(), ErrMalformedField) {
				t.Errorf("Err() = %v, want ErrMalformedField", got.Err())
			}
		})
	}
}

func TestWordTranslationsLookupAndJSON(t *testing.T) {
	w := NewWordTranslations(map[string]string{"hund": "perro"})
	if v, ok := w.Lookup("Hund"); !ok || v != "perro" {
		t.Errorf("Lookup(Hund) = %q, %v", v, ok)
	}

	var ex struct {
		WordTranslations WordTranslations `json:"word_translations"`
	}
	if err := json.Unmarshal([]byte(`{"word_translations": 12}`), &ex); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if ex.WordTranslations.State() != TranslationsInvalid {
		t.Errorf("State() = %v, want invalid", ex.WordTranslations.State())
	}

	out, err := json.Marshal(ex.WordTranslations)
	if err != nil || string(out) != "null" {
		t.Errorf("Marshal invalid = %s, %v; want null", out, err)
	}
}

func TestLevelProgressWithScore(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	p := ParseLevelProgress([]byte(`{"1":{"highscore":500,"date":"2026-03-01"}}`))

	if _, changed := p.WithScore(1, 400, now); changed {
		t.Error("lower score should not change progress")
	}

	next, changed := p.WithScore(1, 800, now)
	if !changed {
		t.Fatal("higher score should change progress")
	}
	if next.Highscore(1) != 800 || next.Levels()[1].Date != "2026-03-14" {
		t.Errorf("level 1 = %+v", next.Levels()[1])
	}
	if p.Highscore(1) != 500 {
		t.Error("WithScore must not mutate the receiver")
	}

	broken := ParseLevelProgress([]byte(`{"one":{}}`))
	if broken.Valid() {
		t.Fatal("non numeric key should be invalid")
	}
	fixed, changed := broken.WithScore(2, 300, now)
	if !changed || !fixed.Valid() || fixed.Highscore(2) != 300 {
		t.Errorf("WithScore on invalid progress = %+v, %v", fixed, changed)
	}
}

func TestHighestRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		want  Role
	}{
		{"none", nil, RoleUser},
		{"pro", []Role{RoleUser, RolePro}, RolePro},
		{"admin wins", []Role{RolePro, RoleAdmin, RoleUser}, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighestRole(tt.roles); got != tt.want {
				t.Errorf("HighestRole() = %v, want %v", got, tt.want)
			}
		})
	}
}
