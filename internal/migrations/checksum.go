package migrations

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Checksum computes the canonical checksum of a migration file's content:
// SHA-256 of the content after normalizing line endings to \n. Unlike the
// query-client generator's checksum helper, trailing whitespace within a
// line is NOT trimmed — the comparison is byte-exact after normalization.
func Checksum(content []byte) string {
	normalized := normalizeLineEndings(string(content))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
