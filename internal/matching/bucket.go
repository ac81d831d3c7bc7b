package matching

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Salts of the independent buckets drawn per (requester, candidate) pair.
const (
	SaltLastVisit = "speedy-match-last-visit"
	SaltDistance  = "speedy-match-distance"
	SaltJitter    = "speedy-match-jitter"
)

// BucketKey is the hashed input: requester, candidate, UTC date, 4-hour slot and salt.
func BucketKey(requesterID, candidateID uint64, salt string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%d-%d-%s-%d-%s", requesterID, candidateID, now.Format(time.DateOnly), now.Hour()/4, salt)
}

// StableBucket maps the pair to [0, modulus). The value only changes when the
// UTC date or the 4-hour slot changes, so reloads keep the same order.
func StableBucket(requesterID, candidateID uint64, salt string, modulus int, now time.Time) int {
	if modulus <= 0 {
		return 0
	}
	sum := md5.Sum([]byte(BucketKey(requesterID, candidateID, salt, now)))
	// The digest is read as one big unsigned integer, the same as its hex form.
	n, _ := new(big.Int).SetString(hex.EncodeToString(sum[:]), 16)
	return int(n.Mod(n, big.NewInt(int64(modulus))).Int64())
}
