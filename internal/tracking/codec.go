package tracking

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode indicates a tracking token that could not be decoded: malformed
// or tampered text, invalid structure, or missing required payload fields.
var ErrDecode = errors.New("invalid tracking token")

// shiftOffset is the fixed code point shift applied to the base64 text.
// Together with the base64 step this is reversible obfuscation, not
// encryption: anyone who knows the scheme can decode a token. It only keeps
// the payload from being casually readable in access logs.
const shiftOffset = 3

// Encode serializes a payload and obfuscates it into a tracking token:
// JSON, then base64, then every character shifted up by a fixed offset.
// The result may still need percent-encoding before use as a query value.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder

	b.Grow(len(encoded))

	for _, r := range encoded {
		b.WriteRune(r + shiftOffset)
	}

	return b.String(), nil
}

// wirePayload mirrors Payload but keeps suppressChatDomain loosely typed:
// a non-string value is treated as absent rather than rejected, matching
// how issued tokens have historically been interpreted.
type wirePayload struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	URL                string `json:"url"`
	SuppressChatDomain any    `json:"suppressChatDomain"`
}

// Decode reverses Encode and validates the payload. Any failure along the
// way, including tokens whose shifted characters fall outside the base64
// alphabet, is reported as ErrDecode.
func Decode(token string) (Payload, error) {
	if token == "" {
		return Payload{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	var b strings.Builder

	b.Grow(len(token))

	for _, r := range token {
		b.WriteRune(r - shiftOffset)
	}

	data, err := base64.StdEncoding.DecodeString(b.String())
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if wire.Name == "" || wire.Email == "" || wire.URL == "" {
		return Payload{}, fmt.Errorf("%w: missing required payload fields", ErrDecode)
	}

	p := Payload{
		Name:  wire.Name,
		Email: wire.Email,
		URL:   wire.URL,
	}

	if s, ok := wire.SuppressChatDomain.(string); ok {
		p.SuppressChatDomain = s
	}

	return p, nil
}
