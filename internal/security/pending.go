package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"germanclash/internal/models"
)

// PendingScoreCookie holds the one score an anonymous player may carry into sign-up
const PendingScoreCookie = "pending_score"

var ErrInvalidPendingScore = errors.New("invalid pending score")

// PendingScoreSigner encodes the pending score slot as an HMAC-SHA256 signed value.
// The slot lives client side, so the signature is what stops players from inventing scores.
type PendingScoreSigner struct {
	secret []byte
}

// NewPendingScoreSigner creates a signer
func NewPendingScoreSigner(secret string) *PendingScoreSigner {
	return &PendingScoreSigner{secret: []byte(secret)}
}

func (s *PendingScoreSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode returns payload.signature
func (s *PendingScoreSigner) Encode(score models.PendingScore) (string, error) {
	raw, err := json.Marshal(score)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + s.sign(payload), nil
}

// Decode verifies and decodes a value produced by Encode
func (s *PendingScoreSigner) Decode(value string) (models.PendingScore, error) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok || payload == "" || signature == "" {
		return models.PendingScore{}, ErrInvalidPendingScore
	}
	if !hmac.Equal([]byte(s.sign(payload)), []byte(signature)) {
		return models.PendingScore{}, ErrInvalidPendingScore
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return models.PendingScore{}, ErrInvalidPendingScore
	}
	var score models.PendingScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return models.PendingScore{}, ErrInvalidPendingScore
	}
	if score.Level < 1 || score.Score < 0 {
		return models.PendingScore{}, ErrInvalidPendingScore
	}
	return score, nil
}
