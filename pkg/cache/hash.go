package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// keyPrefix namespaces every key written by vkgraph so a shared Redis
// instance can hold other data.
const keyPrefix = "vkgraph:"

// IdentityKey returns the cache key for a resolved VK user.
func IdentityKey(userID int64) string {
	return keyPrefix + "user:" + strconv.FormatInt(userID, 10)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
