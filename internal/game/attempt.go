package game

import (
	"time"

	"germanclash/internal/models"
)

// Policy is what distinguishes one option-based exercise type from another
type Policy struct {
	CorrectValue  func(*models.Exercise) string
	RetryEligible bool
}

func correctAnswer(e *models.Exercise) string      { return e.CorrectAnswer }
func spanishTranslation(e *models.Exercise) string { return e.SpanishTranslation }

var policies = map[models.ExerciseType]Policy{
	models.TypeFillInTheBlank:  {CorrectValue: correctAnswer, RetryEligible: true},
	models.TypeIdentifyTheWord: {CorrectValue: correctAnswer, RetryEligible: true},
	models.TypeListening:       {CorrectValue: spanishTranslation, RetryEligible: true},
}

// PolicyFor returns the attempt policy of an option-based type
func PolicyFor(t models.ExerciseType) (Policy, bool) {
	p, ok := policies[t]
	return p, ok
}

// Attempt tracks the answers given to one option-based exercise
type Attempt struct {
	policy     Policy
	exerciseID string
	correct    string
	count      int
	wrong      map[string]bool
	start      time.Time
	answered   bool
}

// NewAttempt creates an attempt tracker for a policy
func NewAttempt(policy Policy) *Attempt {
	return &Attempt{policy: policy, wrong: make(map[string]bool)}
}

// Bind points the tracker at an exercise. State is reset only when the exercise id changes.
func (a *Attempt) Bind(ex *models.Exercise, now time.Time) {
	if ex.ID == a.exerciseID && a.exerciseID != "" {
		return
	}
	a.exerciseID = ex.ID
	a.correct = a.policy.CorrectValue(ex)
	a.count = 0
	a.wrong = make(map[string]bool)
	a.answered = false
	a.start = now
}

// Select records an option. Input is rejected once the exercise is answered or when
// the option is already known to be wrong.
func (a *Attempt) Select(option string, now time.Time) (Answer, error) {
	if a.answered {
		return Answer{}, ErrAlreadyAnswered
	}
	if a.wrong[option] {
		return Answer{}, ErrOptionRejected
	}

	elapsed := int(now.Sub(a.start) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	current := a.count + 1

	if option == a.correct {
		a.answered = true
		return Answer{Correct: true, Selected: option, Outcome: AttemptOutcome(current > 1), Elapsed: elapsed, Timed: true}, nil
	}

	a.count++
	if a.count >= 2 || !a.policy.RetryEligible {
		a.answered = true
		return Answer{Selected: option, Outcome: AttemptOutcome(a.policy.RetryEligible), Elapsed: elapsed, Timed: true}, nil
	}

	a.wrong[option] = true
	return Answer{Selected: option, Outcome: AttemptOutcome(false), Elapsed: elapsed, Timed: true}, nil
}

// ExerciseID returns the id of the bound exercise
func (a *Attempt) ExerciseID() string { return a.exerciseID }

// Count returns the number of wrong answers given so far
func (a *Attempt) Count() int { return a.count }

// Answered reports whether the exercise reached a terminal outcome
func (a *Attempt) Answered() bool { return a.answered }

// IsWrong reports whether an option was already tried and rejected
func (a *Attempt) IsWrong(option string) bool { return a.wrong[option] }

// WrongAnswers lists the rejected options in no particular order
func (a *Attempt) WrongAnswers() []string {
	out := make([]string, 0, len(a.wrong))
	for opt := range a.wrong {
		out = append(out, opt)
	}
	return out
}
