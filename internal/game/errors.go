package game

import "errors"

var (
	ErrPoolEmpty         = errors.New("no exercises available for this level")
	ErrWrongPhase        = errors.New("action not allowed in the current phase")
	ErrWrongExerciseType = errors.New("action not supported by the current exercise")
	ErrAlreadyAnswered   = errors.New("exercise already answered")
	ErrOptionRejected    = errors.New("option already tried")
	ErrUnknownOption     = errors.New("option is not offered by this exercise")
	ErrInvalidLetter     = errors.New("letter is not on the board")
	ErrAlreadyGuessed    = errors.New("letter already guessed")
	ErrNoHint            = errors.New("exercise has no hint")
	ErrHintAlreadyShown  = errors.New("hint already shown")
	ErrCellOutOfRange    = errors.New("cell outside the grid")
	ErrAlreadySelected   = errors.New("cell already selected")
)
