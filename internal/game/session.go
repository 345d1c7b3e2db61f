package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"germanclash/internal/models"
)

// MaxRegularExercises caps the number of non-bonus exercises in a session
const MaxRegularExercises = 10

// Phase is the state of a session
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhasePlaying  Phase = "playing"
	PhaseFeedback Phase = "feedback"
	PhaseComplete Phase = "complete"
)

// Pool supplies the exercises a session is assembled from
type Pool interface {
	FetchExercises(ctx context.Context, level int, topic string) ([]*models.Exercise, error)
}

// Feedback is shown after an answer until the player acknowledges it
type Feedback struct {
	Correct bool `json:"correct"`
	// Retry means the player gets a second try at the same exercise
	Retry bool `json:"retry"`
	// CorrectAnswer is only filled in once the exercise is over
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Selected      string `json:"selected,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	SecondAttempt bool   `json:"second_attempt"`
	Elapsed       *int   `json:"elapsed_seconds,omitempty"`
	Earned        *int   `json:"earned,omitempty"`
}

// Result is the final outcome of a completed session
type Result struct {
	Level     int    `json:"level"`
	Topic     string `json:"topic,omitempty"`
	Score     int    `json:"score"`
	Exercises int    `json:"exercises"`
}

// ScoreSink records the final score of a completed session
type ScoreSink interface {
	SubmitScore(ctx context.Context, level, score int) error
}

// scoreSubmitTimeout bounds a background score submission
const scoreSubmitTimeout = 10 * time.Second

// Option customises a session
type Option func(*Session)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand sets the random source used for word search grids
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithCompletion registers a callback run exactly once when the session completes
func WithCompletion(fn func(Result)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// WithScoreSink submits the final score once the session completes. Submission runs in
// the background; failures are logged and never reach the player.
func WithScoreSink(sink ScoreSink) Option {
	return func(s *Session) { s.sink = sink }
}

// Session drives one playthrough of a level. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	level     int
	topic     string
	exercises []*models.Exercise
	index     int
	score     int
	phase     Phase
	feedback  *Feedback
	result    *Result

	options  *OptionCache
	attempt  *Attempt
	wheel    *Wheel
	search   *WordSearch
	hintUses int

	now        func() time.Time
	rng        *rand.Rand
	onComplete func(Result)
	sink       ScoreSink
	completed  bool
}

// ValidExercises drops exercises that cannot be played and returns why each was dropped
func ValidExercises(pool []*models.Exercise) ([]*models.Exercise, []error) {
	var valid []*models.Exercise
	var skipped []error
	for _, ex := range pool {
		if ex == nil {
			continue
		}
		if err := ex.Validate(); err != nil {
			skipped = append(skipped, fmt.Errorf("exercise %s: %w", ex.ID, err))
			continue
		}
		valid = append(valid, ex)
	}
	return valid, skipped
}

// Assemble orders a pool into a session: bonus exercises are set aside, the rest are
// spread so equal types do not follow each other and capped at MaxRegularExercises,
// then one random bonus exercise is appended if there is any.
func Assemble(pool []*models.Exercise) []*models.Exercise {
	var regular, bonus []*models.Exercise
	for _, ex := range pool {
		if ex.Type.IsBonus() {
			bonus = append(bonus, ex)
		} else {
			regular = append(regular, ex)
		}
	}

	out := ShuffleAvoidingConsecutive(regular, func(e *models.Exercise) models.ExerciseType { return e.Type })
	if len(out) > MaxRegularExercises {
		out = out[:MaxRegularExercises]
	}
	if len(bonus) > 0 {
		out = append(out, bonus[rand.IntN(len(bonus))])
	}
	return out
}

// Start loads the pool for a level and builds a session from it. Exercises with an
// invalid shape are skipped. ErrPoolEmpty is returned when nothing playable remains.
func Start(ctx context.Context, pool Pool, level int, topic string, opts ...Option) (*Session, error) {
	fetched, err := pool.FetchExercises(ctx, level, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}

	valid, skipped := ValidExercises(fetched)
	for _, err := range skipped {
		log.Printf("Warning: skipping exercise: %v", err)
	}
	if len(valid) == 0 {
		return nil, ErrPoolEmpty
	}

	return New(level, topic, Assemble(valid), opts...)
}

// New creates a session over an already ordered exercise list
func New(level int, topic string, exercises []*models.Exercise, opts ...Option) (*Session, error) {
	if len(exercises) == 0 {
		return nil, ErrPoolEmpty
	}
	s := &Session{
		level:     level,
		topic:     topic,
		exercises: exercises,
		phase:     PhaseLoading,
		options:   NewOptionCache(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.enter()
	return s, nil
}

// enter makes the current exercise playable. A wheel with nothing to guess is
// answered straight away.
func (s *Session) enter() {
	s.bind()
	s.phase = PhasePlaying
	if s.wheel != nil {
		if a := s.wheel.Settle(); a != nil {
			s.answer(*a)
		}
	}
}

// bind prepares the per-exercise state of the current exercise
func (s *Session) bind() {
	ex := s.exercises[s.index]
	now := s.now()

	s.wheel = nil
	s.search = nil
	s.hintUses = 0

	if policy, ok := PolicyFor(ex.Type); ok {
		if s.attempt == nil {
			s.attempt = NewAttempt(policy)
		} else {
			s.attempt.policy = policy
		}
		s.attempt.Bind(ex, now)
		return
	}

	switch ex.Type {
	case models.TypeWheelOfFortune:
		s.wheel = NewWheel(ex)
	case models.TypeWordSearch:
		s.search = NewWordSearch(ex, s.rng)
	}
}

func (s *Session) current() *models.Exercise {
	return s.exercises[s.index]
}

func (s *Session) requirePlaying(types ...models.ExerciseType) error {
	if s.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if len(types) == 0 {
		return nil
	}
	cur := s.current().Type
	for _, t := range types {
		if cur == t {
			return nil
		}
	}
	return ErrWrongExerciseType
}

// answer moves the session into feedback, awarding points for a correct answer
func (s *Session) answer(a Answer) {
	ex := s.current()

	if ex.Type.SupportsSecondAttempt() && !a.Correct && !a.Outcome.IsSecondAttempt() {
		s.feedback = &Feedback{
			Retry:       true,
			Selected:    a.Selected,
			Explanation: ex.ExplanationFor(a.Selected),
		}
		s.phase = PhaseFeedback
		return
	}

	fb := &Feedback{
		Correct:       a.Correct,
		CorrectAnswer: ex.CorrectValue(),
		Selected:      a.Selected,
		SecondAttempt: a.Outcome.IsSecondAttempt(),
	}
	if a.Correct {
		earned := 0
		if ex.Type.IsScoring() {
			earned = Award(a)
			s.score += earned
		}
		fb.Earned = &earned
		if a.Timed {
			elapsed := a.Elapsed
			fb.Elapsed = &elapsed
		}
	} else {
		fb.Explanation = ex.ExplanationFor(a.Selected)
	}
	s.feedback = fb
	s.phase = PhaseFeedback
}

func (s *Session) penalize(points int) {
	if points > 0 {
		s.score = ApplyPenalty(s.score, points)
	}
}

func (s *Session) apply(effect Effect) {
	s.penalize(effect.Penalty)
	if effect.Answer != nil {
		s.answer(*effect.Answer)
	}
}

// advance moves to the next exercise or completes the session after the last one
func (s *Session) advance() {
	s.feedback = nil
	if s.index >= len(s.exercises)-1 {
		s.complete()
		return
	}
	s.index++
	s.enter()
}

func (s *Session) complete() {
	s.phase = PhaseComplete
	if s.completed {
		return
	}
	s.completed = true
	s.result = &Result{Level: s.level, Topic: s.topic, Score: s.score, Exercises: len(s.exercises)}
	if s.onComplete != nil {
		s.onComplete(*s.result)
	}
	if s.sink != nil {
		go submitScore(s.sink, *s.result)
	}
}

func submitScore(sink ScoreSink, res Result) {
	ctx, cancel := context.WithTimeout(context.Background(), scoreSubmitTimeout)
	defer cancel()
	if err := sink.SubmitScore(ctx, res.Level, res.Score); err != nil {
		log.Printf("Warning: failed to submit score %d for level %d: %v", res.Score, res.Level, err)
	}
}

// SelectOption answers an option-based exercise
func (s *Session) SelectOption(option string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeFillInTheBlank, models.TypeIdentifyTheWord, models.TypeListening); err != nil {
		return s.snapshot(), err
	}
	if !s.options.Contains(s.current(), option) {
		return s.snapshot(), ErrUnknownOption
	}
	a, err := s.attempt.Select(option, s.now())
	if err != nil {
		return s.snapshot(), err
	}
	s.answer(a)
	return s.snapshot(), nil
}

// GuessLetter plays a letter on a wheel of fortune exercise
func (s *Session) GuessLetter(letter string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeWheelOfFortune); err != nil {
		return s.snapshot(), err
	}
	effect, err := s.wheel.Guess(letter)
	if err != nil {
		return s.snapshot(), err
	}
	s.apply(effect)
	return s.snapshot(), nil
}

// UseHint shows the hint of a wheel of fortune or identify-the-word exercise.
// The wheel hint is charged once; identify-the-word hints are charged on every use.
func (s *Session) UseHint() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeWheelOfFortune, models.TypeIdentifyTheWord); err != nil {
		return s.snapshot(), err
	}

	if s.wheel != nil {
		effect, err := s.wheel.ShowHint()
		if err != nil {
			return s.snapshot(), err
		}
		s.apply(effect)
		return s.snapshot(), nil
	}

	if s.attempt.Answered() {
		return s.snapshot(), ErrAlreadyAnswered
	}
	if strings.TrimSpace(s.current().Hint) == "" {
		return s.snapshot(), ErrNoHint
	}
	s.hintUses++
	s.penalize(IdentifyHintPenalty)
	return s.snapshot(), nil
}

// Reveal gives up on a wheel of fortune exercise
func (s *Session) Reveal() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeWheelOfFortune); err != nil {
		return s.snapshot(), err
	}
	effect, err := s.wheel.Reveal()
	if err != nil {
		return s.snapshot(), err
	}
	s.apply(effect)
	return s.snapshot(), nil
}

// SelectCell picks a word search cell
func (s *Session) SelectCell(cell Cell) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeWordSearch); err != nil {
		return s.snapshot(), err
	}
	effect, err := s.search.Select(cell)
	if err != nil {
		return s.snapshot(), err
	}
	s.apply(effect)
	return s.snapshot(), nil
}

// Solve gives up on a word search exercise
func (s *Session) Solve() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeWordSearch); err != nil {
		return s.snapshot(), err
	}
	effect, err := s.search.Solve()
	if err != nil {
		return s.snapshot(), err
	}
	s.apply(effect)
	return s.snapshot(), nil
}

// Continue moves past a non-scoring exercise without judging it
func (s *Session) Continue() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlaying(models.TypeFreeWriting, models.TypeFillInTheBlankWriting); err != nil {
		return s.snapshot(), err
	}
	s.advance()
	return s.snapshot(), nil
}

// Acknowledge closes the feedback. After a retry-pending answer the same exercise
// is played again; otherwise the session advances.
func (s *Session) Acknowledge() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseFeedback {
		return s.snapshot(), ErrWrongPhase
	}
	if s.feedback != nil && s.feedback.Retry {
		s.feedback = nil
		s.phase = PhasePlaying
		return s.snapshot(), nil
	}
	s.advance()
	return s.snapshot(), nil
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Level returns the level being played
func (s *Session) Level() int { return s.level }
