package ingest

import "crypto/sha256"

// ContentHash returns the SHA-256 digest of data, used as the duplicate-
// detection key for ingested documents per spec.md §4.F.
func ContentHash(data []byte) [32]byte {
	return sha256.Sum256(data)
}
