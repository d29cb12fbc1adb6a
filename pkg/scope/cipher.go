package scope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cipher is the pluggable reversible transform applied to variables
// stored with the encrypted flag.
type Cipher interface {
	Encode(value any) (string, error)
	Decode(encoded any) (any, error)
}

// ObfuscatingCipher is the default codec: JSON plus base64. It hides
// values from casual inspection only and is not cryptographically
// secure; swap in an authenticated-encryption Cipher before storing
// actual secrets.
type ObfuscatingCipher struct{}

// NewObfuscatingCipher returns the default codec.
func NewObfuscatingCipher() *ObfuscatingCipher {
	return &ObfuscatingCipher{}
}

func (c *ObfuscatingCipher) Encode(value any) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode variable value: %w", err)
	}

	return base64.StdEncoding.EncodeToString(payload), nil
}

func (c *ObfuscatingCipher) Decode(encoded any) (any, error) {
	text, ok := encoded.(string)
	if !ok {
		return nil, fmt.Errorf("encrypted variable holds %T, expected string", encoded)
	}

	payload, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode variable value: %w", err)
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, fmt.Errorf("failed to decode variable value: %w", err)
	}

	return value, nil
}
