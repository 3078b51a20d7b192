// Package idgen generates URL-safe identifiers.
//
// Identifiers are UUIDv4 bytes encoded as lowercase base32 (RFC 4648) without
// padding, giving 26 characters that are safe in URLs and storage keys.
package idgen

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a fresh identifier.
func New() string {
	id := uuid.New()
	return strings.ToLower(encoding.EncodeToString(id[:]))
}
