package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"germanclash/internal/models"
)

// FillAlphabet supplies the random letters around the hidden word
const FillAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜß"

const (
	minGridSize = 8
	maxGridSize = 12
)

var directions = [8][2]int{
	{0, 1},   // right
	{1, 0},   // down
	{0, -1},  // left
	{-1, 0},  // up
	{1, 1},   // down-right
	{1, -1},  // down-left
	{-1, 1},  // up-right
	{-1, -1}, // up-left
}

// Cell addresses a grid position
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Key renders the cell as "row-col"
func (c Cell) Key() string {
	return fmt.Sprintf("%d-%d", c.Row, c.Col)
}

// Grid is a square of letters with one word hidden in it
type Grid struct {
	Size    int
	Letters [][]string
	word    map[Cell]bool
}

// Placed reports whether the word fit into the grid
func (g *Grid) Placed() bool {
	return len(g.word) > 0
}

// wordLetters strips whitespace and uppercases the answer
func wordLetters(answer string) []rune {
	var out []rune
	for _, r := range upperGerman(answer) {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}

// GridSize returns the side length used for an answer
func GridSize(answer string) int {
	return max(minGridSize, min(maxGridSize, len(wordLetters(answer))+3))
}

// GenerateGrid hides answer in a new grid. Directions are tried in random order
// with one random start each; a word that fits nowhere is left unplaced.
func GenerateGrid(answer string, rng *rand.Rand) *Grid {
	letters := wordLetters(answer)
	size := GridSize(answer)
	n := len(letters)

	cells := make([][]rune, size)
	for i := range cells {
		cells[i] = make([]rune, size)
	}
	word := make(map[Cell]bool)

	order := rng.Perm(len(directions))
	for _, idx := range order {
		if n == 0 {
			break
		}
		dr, dc := directions[idx][0], directions[idx][1]
		minRow, maxRow := bounds(dr, n, size)
		minCol, maxCol := bounds(dc, n, size)
		if minRow > maxRow || minCol > maxCol {
			continue
		}

		startRow := minRow + rng.IntN(maxRow-minRow+1)
		startCol := minCol + rng.IntN(maxCol-minCol+1)
		for i, r := range letters {
			cell := Cell{Row: startRow + dr*i, Col: startCol + dc*i}
			cells[cell.Row][cell.Col] = r
			word[cell] = true
		}
		break
	}

	fill := []rune(FillAlphabet)
	grid := &Grid{Size: size, Letters: make([][]string, size), word: word}
	for r := 0; r < size; r++ {
		grid.Letters[r] = make([]string, size)
		for c := 0; c < size; c++ {
			if cells[r][c] == 0 {
				cells[r][c] = fill[rng.IntN(len(fill))]
			}
			grid.Letters[r][c] = string(cells[r][c])
		}
	}
	return grid
}

// bounds returns the valid start range along one axis for a step of d
func bounds(d, n, size int) (int, int) {
	switch {
	case d == 0:
		return 0, size - 1
	case d > 0:
		return 0, size - n
	default:
		return n - 1, size - 1
	}
}

// WordSearch is the play state over a generated grid
type WordSearch struct {
	answer   string
	grid     *Grid
	selected map[Cell]bool
	found    int
	wrong    []Cell
	penalty  int
	answered bool
}

// NewWordSearch builds a grid for the exercise's correct answer
func NewWordSearch(ex *models.Exercise, rng *rand.Rand) *WordSearch {
	return &WordSearch{
		answer:   ex.CorrectAnswer,
		grid:     GenerateGrid(ex.CorrectAnswer, rng),
		selected: make(map[Cell]bool),
	}
}

// Select marks a cell. Cells outside the word cost points; the exercise is solved
// once every word cell has been selected, in any order.
func (s *WordSearch) Select(cell Cell) (Effect, error) {
	if s.answered {
		return Effect{}, ErrAlreadyAnswered
	}
	if cell.Row < 0 || cell.Col < 0 || cell.Row >= s.grid.Size || cell.Col >= s.grid.Size {
		return Effect{}, ErrCellOutOfRange
	}
	if s.selected[cell] {
		return Effect{}, ErrAlreadySelected
	}
	s.selected[cell] = true

	if !s.grid.word[cell] {
		s.wrong = append(s.wrong, cell)
		s.penalty += WordSearchWrongCellPenalty
		return Effect{Penalty: WordSearchWrongCellPenalty}, nil
	}

	s.found++
	if s.found == len(s.grid.word) {
		s.answered = true
		return Effect{Answer: &Answer{Correct: true, Selected: s.answer, Outcome: PenaltyOutcome(s.penalty)}}, nil
	}
	return Effect{}, nil
}

// Solve gives up and shows the word; the exercise counts as failed
func (s *WordSearch) Solve() (Effect, error) {
	if s.answered {
		return Effect{}, ErrAlreadyAnswered
	}
	s.answered = true
	return Effect{Answer: &Answer{Correct: false, Selected: s.answer, Outcome: PenaltyOutcome(0)}}, nil
}

// Grid returns the letters of the board
func (s *WordSearch) Grid() [][]string { return s.grid.Letters }

// FoundCells lists selected cells that belong to the word. Once answered the
// whole word is returned.
func (s *WordSearch) FoundCells() []Cell {
	var out []Cell
	for r := 0; r < s.grid.Size; r++ {
		for c := 0; c < s.grid.Size; c++ {
			cell := Cell{Row: r, Col: c}
			if s.grid.word[cell] && (s.selected[cell] || s.answered) {
				out = append(out, cell)
			}
		}
	}
	return out
}

// WrongCells lists selected cells outside the word in selection order
func (s *WordSearch) WrongCells() []Cell {
	out := make([]Cell, len(s.wrong))
	copy(out, s.wrong)
	return out
}

// Penalty returns the points lost to wrong cells on this exercise
func (s *WordSearch) Penalty() int { return s.penalty }

// Answered reports whether the exercise reached a terminal outcome
func (s *WordSearch) Answered() bool { return s.answered }

// String renders the grid one row per line, used in logs and tests
func (g *Grid) String() string {
	var b strings.Builder
	for _, row := range g.Letters {
		b.WriteString(strings.Join(row, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
