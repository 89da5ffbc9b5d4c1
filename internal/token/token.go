// Package token implements the continuity capsule carried through Slack UI
// element metadata. Slack keeps no application state between interaction
// callbacks, so every button value or modal private_metadata field that needs
// to survive a round trip carries one of these tokens. A token is untrusted
// input: decode validates it fully and never consults any other store to fill
// in gaps.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Version is stamped into every encoded token so a stale control from an
// older deployment fails decode instead of being misread.
const Version = 1

// maxEncodedLen matches Slack's private_metadata size limit.
const maxEncodedLen = 3000

var (
	// ErrMalformed means the string is not a token this codec produced.
	ErrMalformed = errors.New("malformed context token")
	// ErrMissingField means the token decoded but lacks a required field.
	ErrMissingField = errors.New("context token missing required field")
)

// Token is the correlation data threaded across one review cycle. Channel
// and AssetCode are always required. ThreadTS is set once the review message
// exists; Approver is set when an approval modal is opened.
type Token struct {
	Version   int    `json:"v"`
	Channel   string `json:"channel"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	AssetCode string `json:"asset_code"`
	Approver  string `json:"approver,omitempty"`
}

// Encode serializes the token for embedding in UI metadata. The version is
// stamped here; callers never set it.
func (t Token) Encode() (string, error) {
	t.Version = Version
	if strings.TrimSpace(t.Channel) == "" {
		return "", fmt.Errorf("%w: channel", ErrMissingField)
	}
	if strings.TrimSpace(t.AssetCode) == "" {
		return "", fmt.Errorf("%w: asset_code", ErrMissingField)
	}
	out, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(out) > maxEncodedLen {
		return "", fmt.Errorf("%w: encoded token exceeds %d bytes", ErrMalformed, maxEncodedLen)
	}
	return string(out), nil
}

// Decode is the exact inverse of Encode. It fails with ErrMalformed for
// anything that is not valid serialized token data and with ErrMissingField
// when a required field is absent. It never returns partial data.
func Decode(s string) (Token, error) {
	var t Token
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if t.Version != Version {
		return Token{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, t.Version)
	}
	if strings.TrimSpace(t.Channel) == "" {
		return Token{}, fmt.Errorf("%w: channel", ErrMissingField)
	}
	if strings.TrimSpace(t.AssetCode) == "" {
		return Token{}, fmt.Errorf("%w: asset_code", ErrMissingField)
	}
	return t, nil
}
