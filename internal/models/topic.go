package models

import "time"

// Topic groups exercises around one grammar or vocabulary subject
type Topic struct {
	ID             string    `json:"id" yaml:"id,omitempty"`
	Title          string    `json:"title" yaml:"title"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	YoutubeURL     string    `json:"youtube_url,omitempty" yaml:"youtube_url,omitempty"`
	ExplanationURL string    `json:"explanation_url,omitempty" yaml:"explanation_url,omitempty"`
	IsVisible      bool      `json:"is_visible" yaml:"is_visible"`
	OrderPosition  int       `json:"order_position" yaml:"order_position"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"-"`
}

// ConfigEntry is a runtime application setting editable by admins
type ConfigEntry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
