package similarity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a hex digest of the exact content bytes. It is the
// system-wide exact-duplicate key: byte-identical content maps to the same
// digest regardless of uploader. Content is deliberately NOT normalized here,
// so only byte-identical resubmissions collide.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
