package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultLanguage   = "de"
	ttsRequestTimeout = 10 * time.Second
	googleTTSURL      = "https://translate.google.com/translate_tts"
)

// ErrEmptyText is returned when there is nothing to speak
var ErrEmptyText = errors.New("no text to speak")

// Options tune a single utterance
type Options struct {
	Language string
}

// Speaker turns text into an audio clip
type Speaker interface {
	Speak(ctx context.Context, text string, opts Options) ([]byte, error)
}

// GoogleTTS fetches MP3 clips from the Google Translate speech endpoint and keeps
// them in a cache directory so each word is only downloaded once
type GoogleTTS struct {
	cacheDir string
	baseURL  string
	client   *http.Client
}

// NewGoogleTTS creates a speaker caching clips under cacheDir. An empty cacheDir disables the cache.
func NewGoogleTTS(cacheDir string) *GoogleTTS {
	return &GoogleTTS{
		cacheDir: cacheDir,
		baseURL:  googleTTSURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// WithBaseURL points the speaker at another endpoint
func (s *GoogleTTS) WithBaseURL(u string) *GoogleTTS {
	s.baseURL = u
	return s
}

// Speak returns the MP3 clip for text, from the cache when possible
func (s *GoogleTTS) Speak(ctx context.Context, text string, opts Options) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	path := s.clipPath(lang, text)
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return data, nil
		}
	}

	data, err := s.fetch(ctx, lang, text)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := os.MkdirAll(s.cacheDir, 0o755); err == nil {
			// A failed write only costs a refetch next time.
			_ = os.WriteFile(path, data, 0o644)
		}
	}
	return data, nil
}

// clipPath derives the cache file name from a hash so arbitrary text is safe on disk
func (s *GoogleTTS) clipPath(lang, text string) string {
	if s.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(lang + "\x00" + strings.ToLower(text)))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_%s.mp3", lang, hex.EncodeToString(sum[:12])))
}

func (s *GoogleTTS) fetch(ctx context.Context, lang, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The endpoint refuses requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}
	return data, nil
}
