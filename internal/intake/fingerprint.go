package intake

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLen is the number of hex characters kept from the digest.
const FingerprintLen = 16

// Fingerprint derives the deduplication key of a submission from
// "email:phone:timestamp". Same inputs always give the same key.
func Fingerprint(email, phone, timestamp string) string {
	sum := sha256.Sum256([]byte(email + ":" + phone + ":" + timestamp))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}
