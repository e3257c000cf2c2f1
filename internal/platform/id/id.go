// Package id generates identifiers for ledger records and schedules.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// keyNamespace scopes deterministic composite keys to this ledger.
var keyNamespace = uuid.MustParse("9c9c5f3e-2f6b-4b11-8a48-10da5f6f44f1")

// NewID returns a random 26-character lowercase base32 identifier backed by
// a UUIDv4.
func NewID() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}

// Deterministic returns a stable identifier for the given parts. The same
// parts always produce the same identifier; any differing part produces a
// different one. Used for composite lookup keys and replaceable schedule ids.
func Deterministic(parts ...string) string {
	raw := uuid.NewSHA1(keyNamespace, []byte(strings.Join(parts, "\x1f")))
	return strings.ToLower(encoding.EncodeToString(raw[:]))
}
