package service

import (
	"context"
	"errors"
	"strings"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
)

// TopicService manages grammar and vocabulary topics
type TopicService struct {
	topics *repository.TopicRepository
}

// NewTopicService creates a new topic service
func NewTopicService(db *database.DB) *TopicService {
	return &TopicService{topics: repository.NewTopicRepository(db)}
}

// ListAll returns every topic in display order
func (s *TopicService) ListAll(ctx context.Context) ([]models.Topic, error) {
	return s.topics.ListAll(ctx)
}

// ListVisible returns the topics players can pick
func (s *TopicService) ListVisible(ctx context.Context) ([]models.Topic, error) {
	return s.topics.ListVisible(ctx)
}

// Latest returns the newest topic
func (s *TopicService) Latest(ctx context.Context) (*models.Topic, error) {
	t, err := s.topics.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

// GetByTitle looks a topic up by title, ignoring case
func (s *TopicService) GetByTitle(ctx context.Context, title string) (*models.Topic, error) {
	t, err := s.topics.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

func normalizeTopic(t *models.Topic) error {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.YoutubeURL = strings.TrimSpace(t.YoutubeURL)
	t.ExplanationURL = strings.TrimSpace(t.ExplanationURL)
	if t.Title == "" {
		return errors.New("topic title is required")
	}
	return nil
}

// Create adds a topic. Titles are unique ignoring case.
func (s *TopicService) Create(ctx context.Context, t *models.Topic) error {
	if err := normalizeTopic(t); err != nil {
		return err
	}
	existing, err := s.topics.GetByTitle(ctx, t.Title)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrTopicTitleTaken
	}
	t.ID = ""
	return s.topics.Create(ctx, t)
}

// Update edits a topic
func (s *TopicService) Update(ctx context.Context, t *models.Topic) error {
	if err := normalizeTopic(t); err != nil {
		return err
	}
	existing, err := s.topics.GetByTitle(ctx, t.Title)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != t.ID {
		return ErrTopicTitleTaken
	}
	if err := s.topics.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTopicNotFound
		}
		return err
	}
	return nil
}

// Delete removes a topic
func (s *TopicService) Delete(ctx context.Context, id string) error {
	if err := s.topics.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTopicNotFound
		}
		return err
	}
	return nil
}

// Seed creates or updates topics by title and returns how many were created
func (s *TopicService) Seed(ctx context.Context, topics []models.Topic) (created int, err error) {
	for i := range topics {
		t := topics[i]
		if err := normalizeTopic(&t); err != nil {
			return created, err
		}
		isNew, err := s.topics.Upsert(ctx, &t)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
