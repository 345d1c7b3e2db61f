package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoogleTTSSpeakAndCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("tl"); got != "de" {
			t.Errorf("tl = %q, want de", got)
		}
		if got := r.URL.Query().Get("q"); got != "Straße" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte("ID3-audio"))
	}))
	defer server.Close()

	tts := NewGoogleTTS(t.TempDir()).WithBaseURL(server.URL)

	for i := 0; i < 2; i++ {
		data, err := tts.Speak(context.Background(), " Straße ", Options{})
		if err != nil {
			t.Fatalf("Speak() error = %v", err)
		}
		if string(data) != "ID3-audio" {
			t.Errorf("Speak() = %q", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("endpoint called %d times, want 1 thanks to the cache", hits.Load())
	}
}

func TestGoogleTTSErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tts := NewGoogleTTS("").WithBaseURL(server.URL)
	if _, err := tts.Speak(context.Background(), "Hund", Options{}); err == nil {
		t.Error("expected an error for a 503 response")
	}
	if _, err := tts.Speak(context.Background(), "   ", Options{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

type flakySpeaker struct {
	failures int
	calls    int
}

func (f *flakySpeaker) Speak(ctx context.Context, text string, opts Options) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("speech engine not ready")
	}
	return []byte("clip"), nil
}

func TestSpeakWithRetry(t *testing.T) {
	policy := RetryPolicy{Attempts: 10, Interval: time.Millisecond}

	t.Run("recovers", func(t *testing.T) {
		speaker := &flakySpeaker{failures: 3}
		data, err := SpeakWithRetry(context.Background(), speaker, "Hund", Options{}, policy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "clip" || speaker.calls != 4 {
			t.Errorf("data=%q calls=%d", data, speaker.calls)
		}
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		speaker := &flakySpeaker{failures: 100}
		if _, err := SpeakWithRetry(context.Background(), speaker, "Hund", Options{}, policy); err == nil {
			t.Fatal("expected an error")
		}
		if speaker.calls != 10 {
			t.Errorf("calls = %d, want 10", speaker.calls)
		}
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		speaker := &flakySpeaker{failures: 100}
		_, err := SpeakWithRetry(ctx, speaker, "Hund", Options{}, RetryPolicy{Attempts: 10, Interval: time.Second})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if speaker.calls != 1 {
			t.Errorf("calls = %d, want 1", speaker.calls)
		}
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	if DefaultRetryPolicy.Attempts != 10 || DefaultRetryPolicy.Interval != 500*time.Millisecond {
		t.Errorf("DefaultRetryPolicy = %+v", DefaultRetryPolicy)
	}
}
