package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"germanclash/internal/config"
)

var testSchema = &Schema{
	Name: "test-translations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"word": map[string]any{"type": "string"},
		},
		"required": []any{"word"},
	},
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10}},
		MockResponse{Content: json.RawMessage(`[1,2]`)},
	)

	resp, err := mock.Generate(context.Background(), UserPrompt("first", 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 {
		t.Fatalf("unexpected first response: %+v", resp)
	}

	resp, err = mock.Generate(context.Background(), UserPrompt("second", 0.2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `[1,2]` {
		t.Fatalf("unexpected second response: %s", resp.Content)
	}
	if mock.CallCount() != 2 || mock.Calls[1].Temperature != 0.2 {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestMockProvider_Responder(t *testing.T) {
	mock := NewMockProvider()
	mock.Responder = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}
	resp, err := mock.Generate(context.Background(), UserPrompt("hallo", 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `"hallo"` {
		t.Errorf("Content = %s", resp.Content)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr bool
	}{
		{"nil schema", nil, `not json`, false},
		{"valid", testSchema, `{"word":"Haus"}`, false},
		{"missing required", testSchema, `{"other":"x"}`, true},
		{"wrong type", testSchema, `{"word":3}`, true},
		{"not json", testSchema, `{"word":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Errorf("expected *ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, true},
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad")}, false},
		{"truncated", &ErrMaxTokensExceeded{}, false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func fastResilience(attempts int, threshold uint32) ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      attempts,
		InitialDelay:     time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		FailureThreshold: threshold,
		OpenTimeout:      time.Minute,
	}
}

func TestResilientProvider_RetriesTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
		MockResponse{Content: json.RawMessage(`[]`)},
	)
	rp := NewResilientProvider(mock, fastResilience(3, 10))

	resp, err := rp.Generate(context.Background(), UserPrompt("x", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `[]` {
		t.Errorf("Content = %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestResilientProvider_DoesNotRetryInvalidResponse(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad shape")}},
		MockResponse{Content: json.RawMessage(`[]`)},
	)
	rp := NewResilientProvider(mock, fastResilience(3, 10))

	if _, err := rp.Generate(context.Background(), UserPrompt("x", 0)); err == nil {
		t.Fatal("expected an error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestResilientProvider_OpensCircuit(t *testing.T) {
	mock := NewMockProvider()
	mock.Responder = func(Request) MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}
	}
	rp := NewResilientProvider(mock, fastResilience(1, 2))

	for i := 0; i < 2; i++ {
		if _, err := rp.Generate(context.Background(), UserPrompt("x", 0)); err == nil {
			t.Fatal("expected an error")
		}
	}
	if _, err := rp.Generate(context.Background(), UserPrompt("x", 0)); err == nil {
		t.Fatal("expected the open circuit to reject the call")
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2 once the circuit is open", mock.CallCount())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"openai without key", Config{Provider: "openai"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"mock", Config{Provider: "mock"}, false},
		{"unknown", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.LLMConfig{
		Provider:     "openai",
		OpenAIAPIKey: "key",
		OpenAIModel:  "gpt-4o-mini",
		Timeout:      time.Minute,
	})
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "key" || cfg.Timeout != time.Minute {
		t.Errorf("ConfigFrom() = %+v", cfg)
	}
}

func TestNewProviderMock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
}
