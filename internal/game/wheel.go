package game

import (
	"strings"

	"germanclash/internal/models"
)

// WheelAlphabet holds the letters a player can guess
const WheelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜ"

// Effect is the consequence of a single in-exercise action
type Effect struct {
	// Penalty is deducted from the running score immediately
	Penalty int
	// Answer is set when the action ended the exercise
	Answer *Answer
}

// upperGerman uppercases s, spelling ß as SS the way it is written in capitals
func upperGerman(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "ß", "SS"))
}

// Wheel is the letter guessing game. Letters outside WheelAlphabet such as
// spaces and punctuation are shown from the start and never need guessing.
type Wheel struct {
	answer    string
	required  map[rune]bool
	hint      string
	guessed   map[rune]bool
	hintShown bool
	answered  bool
}

// NewWheel prepares a board for the exercise's correct answer
func NewWheel(ex *models.Exercise) *Wheel {
	w := &Wheel{
		answer:   upperGerman(ex.CorrectAnswer),
		required: make(map[rune]bool),
		hint:     strings.TrimSpace(ex.Hint),
		guessed:  make(map[rune]bool),
	}
	for _, r := range w.answer {
		if strings.ContainsRune(WheelAlphabet, r) {
			w.required[r] = true
		}
	}
	return w
}

// Guess reveals a letter. A letter that is not in the answer costs points.
func (w *Wheel) Guess(letter string) (Effect, error) {
	if w.answered {
		return Effect{}, ErrAlreadyAnswered
	}
	runes := []rune(strings.ToUpper(strings.TrimSpace(letter)))
	if len(runes) != 1 || !strings.ContainsRune(WheelAlphabet, runes[0]) {
		return Effect{}, ErrInvalidLetter
	}
	r := runes[0]
	if w.guessed[r] {
		return Effect{}, ErrAlreadyGuessed
	}
	w.guessed[r] = true

	var effect Effect
	if !w.required[r] {
		effect.Penalty = WheelWrongLetterPenalty
	}
	if w.Complete() {
		w.answered = true
		effect.Answer = &Answer{Correct: true, Outcome: PenaltyOutcome(0)}
	}
	return effect, nil
}

// Settle ends a board whose answer has no guessable letters, such as one made of
// digits and punctuation only. It returns nil while letters remain.
func (w *Wheel) Settle() *Answer {
	if w.answered || !w.Complete() {
		return nil
	}
	w.answered = true
	return &Answer{Correct: true, Outcome: PenaltyOutcome(0)}
}

// ShowHint reveals the hint once
func (w *Wheel) ShowHint() (Effect, error) {
	if w.answered {
		return Effect{}, ErrAlreadyAnswered
	}
	if w.hint == "" {
		return Effect{}, ErrNoHint
	}
	if w.hintShown {
		return Effect{}, ErrHintAlreadyShown
	}
	w.hintShown = true
	return Effect{Penalty: WheelHintPenalty}, nil
}

// Reveal gives up: every letter is shown and the exercise counts as failed
func (w *Wheel) Reveal() (Effect, error) {
	if w.answered {
		return Effect{}, ErrAlreadyAnswered
	}
	for r := range w.required {
		w.guessed[r] = true
	}
	w.answered = true
	return Effect{
		Penalty: WheelRevealPenalty,
		Answer:  &Answer{Correct: false, Outcome: PenaltyOutcome(0)},
	}, nil
}

// Complete reports whether every required letter has been guessed
func (w *Wheel) Complete() bool {
	for r := range w.required {
		if !w.guessed[r] {
			return false
		}
	}
	return true
}

// Board renders the answer with unguessed letters as underscores
func (w *Wheel) Board() string {
	var b strings.Builder
	for _, r := range w.answer {
		if w.required[r] && !w.guessed[r] {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Guessed lists the guessed letters in alphabet order
func (w *Wheel) Guessed() []string {
	var out []string
	for _, r := range WheelAlphabet {
		if w.guessed[r] {
			out = append(out, string(r))
		}
	}
	return out
}

// HintShown reports whether the hint was revealed
func (w *Wheel) HintShown() bool { return w.hintShown }

// Answered reports whether the exercise reached a terminal outcome
func (w *Wheel) Answered() bool { return w.answered }
