package game

import (
	"sort"

	"germanclash/internal/models"
)

// Snapshot is a read-only copy of a session's state. It includes the correct
// answer inside Exercise; callers decide what to reveal to the player.
type Snapshot struct {
	Phase    Phase
	Level    int
	Topic    string
	Index    int
	Total    int
	Score    int
	Exercise *models.Exercise

	// Option-based exercises
	Options      []string
	WrongAnswers []string
	Attempts     int

	// Hints
	HintShown bool
	HintUses  int

	// Wheel of fortune
	Board   string
	Guessed []string

	// Word search
	Grid       [][]string
	FoundCells []Cell
	WrongCells []Cell

	Feedback *Feedback
	Result   *Result
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Phase: s.phase,
		Level: s.level,
		Topic: s.topic,
		Index: s.index,
		Total: len(s.exercises),
		Score: s.score,
	}
	if s.feedback != nil {
		fb := *s.feedback
		snap.Feedback = &fb
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	if s.phase == PhaseComplete || s.phase == PhaseLoading {
		return snap
	}

	ex := s.current()
	snap.Exercise = ex

	if _, ok := PolicyFor(ex.Type); ok && s.attempt != nil {
		snap.Options = s.options.Options(ex)
		snap.WrongAnswers = s.attempt.WrongAnswers()
		sort.Strings(snap.WrongAnswers)
		snap.Attempts = s.attempt.Count()
		snap.HintUses = s.hintUses
		snap.HintShown = s.hintUses > 0
	}
	if s.wheel != nil {
		snap.Board = s.wheel.Board()
		snap.Guessed = s.wheel.Guessed()
		snap.HintShown = s.wheel.HintShown()
	}
	if s.search != nil {
		snap.Grid = s.search.Grid()
		snap.FoundCells = s.search.FoundCells()
		snap.WrongCells = s.search.WrongCells()
	}
	return snap
}
