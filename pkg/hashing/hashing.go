// Package hashing computes the dedup fingerprints used to identify font files.
// QuickHash is a fast partial-content digest suitable for same-session duplicate
// suspicion; ContentHash is the authoritative full-file dedup key.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// QuickPrefixSize bounds how much of the file participates in QuickHash.
const QuickPrefixSize = 2 * 1024 * 1024

// QuickHash digests the leading QuickPrefixSize bytes together with the total
// byte length, then re-hashes the combined value once more. Two files with the
// same quick hash are duplicate suspects, not confirmed duplicates.
func QuickHash(data []byte) string {
	prefix := data
	if len(prefix) > QuickPrefixSize {
		prefix = prefix[:QuickPrefixSize]
	}

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], xxhash.Sum64(prefix))
	binary.BigEndian.PutUint64(buf[8:], uint64(len(data)))

	var out [8]byte
	binary.BigEndian.PutUint64(out[:], xxhash.Sum64(buf[:]))
	return hex.EncodeToString(out[:])
}

// ContentHash digests the entire byte sequence. It is computed independently
// on client and server; the server value wins on mismatch.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
