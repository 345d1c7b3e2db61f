package game

// Points awarded and deducted during a session
const (
	BaseAward            = 100
	SecondAttemptCeiling = 50
	MaxTimeDecay         = 50

	WheelWrongLetterPenalty    = 10
	WheelHintPenalty           = 5
	WheelRevealPenalty         = 50
	WordSearchWrongCellPenalty = 5
	IdentifyHintPenalty        = 5
)

// OutcomeKind tells which family of exercise produced an answer
type OutcomeKind int

const (
	// OutcomeAttempt comes from option-based exercises that may allow a retry
	OutcomeAttempt OutcomeKind = iota
	// OutcomePenalty comes from exercises that accumulate point deductions while played
	OutcomePenalty
)

// Outcome carries the category specific detail of an answer
type Outcome struct {
	Kind          OutcomeKind
	SecondAttempt bool
	Penalty       int
}

// AttemptOutcome builds the outcome of an option-based exercise
func AttemptOutcome(secondAttempt bool) Outcome {
	return Outcome{Kind: OutcomeAttempt, SecondAttempt: secondAttempt}
}

// PenaltyOutcome builds the outcome of a penalty-tracking exercise
func PenaltyOutcome(points int) Outcome {
	return Outcome{Kind: OutcomePenalty, Penalty: points}
}

// IsSecondAttempt reports whether the answer was given after a wrong first try
func (o Outcome) IsSecondAttempt() bool {
	return o.Kind == OutcomeAttempt && o.SecondAttempt
}

// Answer is the terminal or retry-pending result reported by an exercise handler
type Answer struct {
	Correct  bool
	Selected string
	Outcome  Outcome
	// Elapsed is whole seconds since the exercise became current; only meaningful when Timed
	Elapsed int
	Timed   bool
}

// Award converts an answer into points. Branches are checked in order: second
// attempt, then accumulated penalty, then elapsed time. A second attempt ignores
// any penalty.
func Award(a Answer) int {
	if !a.Correct {
		return 0
	}

	elapsed := 0
	if a.Timed && a.Elapsed > 0 {
		elapsed = a.Elapsed
	}

	switch {
	case a.Outcome.IsSecondAttempt():
		return max(0, SecondAttemptCeiling-elapsed)
	case a.Outcome.Kind == OutcomePenalty && a.Outcome.Penalty > 0:
		return max(0, BaseAward-a.Outcome.Penalty)
	case a.Timed:
		return BaseAward - min(elapsed, MaxTimeDecay)
	}
	return BaseAward
}

// ApplyPenalty deducts points from a running score, never going below zero
func ApplyPenalty(score, points int) int {
	return max(0, score-points)
}
