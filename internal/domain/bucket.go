package domain

import "github.com/zeebo/xxh3"

// BucketCount is the size of the bucket range used for both traffic
// eligibility and variant selection.
const BucketCount = 100

// Hash returns a stable 32-bit hash of s.
func Hash(s string) uint32 {
	return uint32(xxh3.HashString(s))
}

// Bucket maps a (user, experiment) pair onto [0, BucketCount).
// The same pair always lands in the same bucket.
func Bucket(userID, experimentID string) int {
	return int(Hash(userID+experimentID) % BucketCount)
}
