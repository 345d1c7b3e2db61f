package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"germanclash/internal/llm"
	"germanclash/internal/models"
)

const (
	creativeTemperature    = 0.9
	translationTemperature = 0.2
	defaultBackfillLimit   = 4
)

var (
	ErrMissingParameters = errors.New("missing required parameters: level, topic, count")
	ErrNoValidExercises  = errors.New("no valid exercises generated")
)

// ValidationError lists why every generated exercise was rejected
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrNoValidExercises, strings.Join(e.Messages, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrNoValidExercises }

// batchSchema only pins the outer shape; items are checked one by one so a bad
// item does not sink the batch
var batchSchema = &llm.Schema{
	Name:        "exercise-batch",
	Description: "array of generated exercises",
	Definition: map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "object"},
	},
}

// Request describes a generation batch. An empty Type asks for a mixed batch.
type Request struct {
	Level int
	Topic string
	Count int
	Type  models.ExerciseType
}

// Validate checks that the request names a level, a topic and a positive count
func (r Request) Validate() error {
	if r.Level == 0 || strings.TrimSpace(r.Topic) == "" || r.Count <= 0 {
		return ErrMissingParameters
	}
	if r.Level < models.MinLevel || r.Level > models.MaxLevel {
		return fmt.Errorf("level %d out of range", r.Level)
	}
	if r.Type != "" && !r.Type.Valid() {
		return fmt.Errorf("unknown exercise type %q", r.Type)
	}
	return nil
}

// Result holds the surviving exercises and the reasons others were dropped
type Result struct {
	Exercises        []*models.Exercise `json:"exercises"`
	ValidationErrors []string           `json:"validationErrors,omitempty"`
}

// Source supplies the context the prompt is built from
type Source interface {
	TopicDescription(ctx context.Context, title string) (string, error)
	ExerciseSummaries(ctx context.Context, topic string, level, limit int) ([]models.ExerciseSummary, error)
}

// Generator produces exercises from a language model
type Generator struct {
	provider      llm.Provider
	source        Source
	maxTokens     int
	backfillLimit int
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxTokens caps the model response size
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithBackfillLimit bounds how many translation calls run at once
func WithBackfillLimit(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.backfillLimit = n
		}
	}
}

// NewGenerator creates a generator. source may be nil, in which case the prompt
// carries no topic description and no list of existing exercises.
func NewGenerator(provider llm.Provider, source Source, opts ...Option) *Generator {
	g := &Generator{
		provider:      provider,
		source:        source,
		backfillLimit: defaultBackfillLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the model for a batch, backfills missing statement translations,
// and keeps only the exercises that are playable
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	description, existing := g.promptContext(ctx, req)

	prompt := llm.UserPrompt(BuildPrompt(req, description, existing), creativeTemperature)
	prompt.MaxTokens = g.maxTokens
	resp, err := g.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating exercises: %w", err)
	}

	raw, err := ParseModelJSON(string(resp.Content))
	if err != nil {
		return nil, err
	}
	if err := llm.Validate(batchSchema, raw); err != nil {
		return nil, fmt.Errorf("model did not return a JSON array: %w", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}

	exercises := make([]*models.Exercise, len(items))
	for i, item := range items {
		exercises[i] = mapItem(item, req)
	}

	g.backfillTranslations(ctx, exercises)

	result := &Result{}
	for i, ex := range exercises {
		if !needsTranslations(ex.Type) {
			ex.WordTranslations = models.WordTranslations{}
		}
		if problems := checkExercise(ex); len(problems) > 0 {
			for _, p := range problems {
				result.ValidationErrors = append(result.ValidationErrors,
					fmt.Sprintf("Exercise %d (%s): %s", i+1, ex.Type, p))
			}
			continue
		}
		if needsTranslations(ex.Type) && ex.WordTranslations.State() != models.TranslationsValid {
			log.Printf("Warning: exercise %d (%s) has no word translations after backfill", i+1, ex.Type)
		}
		result.Exercises = append(result.Exercises, ex)
	}

	if len(result.ValidationErrors) > 0 {
		log.Printf("Filtered %d generated exercises: %v", len(exercises)-len(result.Exercises), result.ValidationErrors)
	}
	if len(result.Exercises) == 0 {
		return nil, &ValidationError{Messages: result.ValidationErrors}
	}

	log.Printf("Generated %d valid exercises for %q level %d", len(result.Exercises), req.Topic, req.Level)
	return result, nil
}

func (g *Generator) promptContext(ctx context.Context, req Request) (string, []models.ExerciseSummary) {
	if g.source == nil {
		return "", nil
	}

	description, err := g.source.TopicDescription(ctx, req.Topic)
	if err != nil {
		log.Printf("Warning: could not load topic description for %q: %v", req.Topic, err)
	}
	existing, err := g.source.ExerciseSummaries(ctx, req.Topic, req.Level, MaxExistingSummaries)
	if err != nil {
		log.Printf("Warning: could not load existing exercises for %q: %v", req.Topic, err)
	}
	return description, existing
}

// backfillTranslations fills in missing statement translations with a second,
// low temperature call per exercise. A failed call leaves the map absent.
func (g *Generator) backfillTranslations(ctx context.Context, exercises []*models.Exercise) {
	var group errgroup.Group
	group.SetLimit(g.backfillLimit)

	for _, ex := range exercises {
		if !needsTranslations(ex.Type) || ex.WordTranslations.State() == models.TranslationsValid {
			continue
		}
		group.Go(func() error {
			translations, err := g.translate(ctx, ex.Statement)
			if err != nil {
				log.Printf("Warning: word translation backfill failed: %v", err)
				return nil
			}
			ex.WordTranslations = translations
			return nil
		})
	}
	group.Wait()
}

func (g *Generator) translate(ctx context.Context, sentence string) (models.WordTranslations, error) {
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(TranslationPrompt(sentence), translationTemperature))
	if err != nil {
		return models.WordTranslations{}, err
	}
	raw, err := ParseModelJSON(string(resp.Content))
	if err != nil {
		return models.WordTranslations{}, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.WordTranslations{}, err
	}
	return NormalizeWordTranslations(v), nil
}

// mapItem copies the known fields of a model item. The requested level always wins.
func mapItem(item map[string]any, req Request) *models.Exercise {
	ex := &models.Exercise{
		Level:                       req.Level,
		Type:                        NormalizeType(str(item, "type")),
		Topic:                       str(item, "topic"),
		Statement:                   str(item, "statement"),
		CorrectAnswer:               str(item, "correct_answer"),
		IncorrectAnswer1:            str(item, "incorrect_answer_1"),
		IncorrectAnswer2:            str(item, "incorrect_answer_2"),
		IncorrectAnswer3:            str(item, "incorrect_answer_3"),
		IncorrectAnswer1Explanation: str(item, "incorrect_answer_1_explanation", "explanation_1"),
		IncorrectAnswer2Explanation: str(item, "incorrect_answer_2_explanation", "explanation_2"),
		IncorrectAnswer3Explanation: str(item, "incorrect_answer_3_explanation", "explanation_3"),
		GermanWord:                  str(item, "german_word"),
		SpanishTranslation:          str(item, "spanish_translation", "correct_answer"),
		Emoji:                       str(item, "emoji"),
		Hint:                        str(item, "hint"),
		WordTranslations:            NormalizeWordTranslations(item["word_translations"]),
	}
	if ex.Topic == "" {
		ex.Topic = req.Topic
	}
	return ex
}

// str returns the first key holding a non-null value, rendered as a string
func str(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case nil:
			continue
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func checkExercise(ex *models.Exercise) []string {
	var problems []string
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch ex.Type {
	case models.TypeIdentifyTheWord:
		if blank(ex.Emoji) {
			problems = append(problems, "Missing emoji field")
		}
		if blank(ex.Hint) {
			problems = append(problems, "Missing hint field")
		}
	case models.TypeListening:
		if blank(ex.GermanWord) {
			problems = append(problems, "Missing german_word field")
		}
		if blank(ex.SpanishTranslation) {
			problems = append(problems, "Missing spanish_translation field")
		}
	case models.TypeWheelOfFortune:
		if blank(ex.SpanishTranslation) {
			problems = append(problems, "Missing spanish_translation field")
		}
	}
	if len(problems) > 0 {
		return problems
	}

	if err := ex.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
