package narration

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SampleToken is a signed token split into its three parts for display.
// Header and Payload are the decoded JSON; Signature stays base64url.
type SampleToken struct {
	Token     string `json:"token"`
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type sampleClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSample signs an HS256 token for the demo user. It exists only to be
// looked at; nothing in the visualization verifies it.
func IssueSample(secret []byte, subject string, now time.Time) (SampleToken, error) {
	if len(secret) == 0 {
		return SampleToken{}, fmt.Errorf("sample token: empty secret")
	}
	claims := sampleClaims{
		Name: "Demo User",
		Role: "reader",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "jwtviz-auth-server",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return SampleToken{}, fmt.Errorf("sign sample token: %w", err)
	}
	return Split(signed)
}

// Split breaks a compact JWT into its display parts without verifying it.
func Split(token string) (SampleToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return SampleToken{}, fmt.Errorf("split token: want 3 segments, got %d", len(parts))
	}
	header, err := decodeSegment(parts[0])
	if err != nil {
		return SampleToken{}, fmt.Errorf("split token header: %w", err)
	}
	payload, err := decodeSegment(parts[1])
	if err != nil {
		return SampleToken{}, fmt.Errorf("split token payload: %w", err)
	}
	return SampleToken{Token: token, Header: header, Payload: payload, Signature: parts[2]}, nil
}

func decodeSegment(seg string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return "", err
	}
	if !json.Valid(raw) {
		return "", fmt.Errorf("segment is not JSON")
	}
	return string(raw), nil
}
