// Package filestore persists uploaded images keyed by the SHA-256 of their bytes.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is the file-store contract consumed by the cover-image flow. Storing the
// same bytes twice must yield the same hash and may return the same reference.
type Store interface {
	Store(ctx context.Context, data []byte) (hash, reference string, err error)
	Delete(ctx context.Context, reference string) error
}

func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
