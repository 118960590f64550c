// Package id generates prefixed random identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixToken = "tok"
)

// Generate returns prefix-<nanoid>, e.g. "tok-V1StGXR8_Z5jdHi6B-myT".
// The nanoid part is 21 URL-safe characters.
func Generate(prefix string) (string, error) {
	if prefix == "" || strings.Contains(prefix, "-") {
		return "", fmt.Errorf("invalid id prefix %q", prefix)
	}

	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + n, nil
}

// Prefix returns the prefix of an ID produced by Generate, or "" if s has none.
func Prefix(s string) string {
	p, _, ok := strings.Cut(s, "-")
	if !ok {
		return ""
	}
	return p
}
