package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Blocklist remembers ID tokens presented at sign-out so the same token
// cannot open a new session until it expires on its own.
type Blocklist struct {
	cache *cache.Cache
}

// NewBlocklist creates an empty blocklist.
func NewBlocklist(cleanupInterval time.Duration) *Blocklist {
	return &Blocklist{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

// Add blocks idToken until expiresAt. Expired tokens are not stored.
func (b *Blocklist) Add(idToken string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if idToken == "" || ttl <= 0 {
		return
	}
	b.cache.Set(tokenKey(idToken), struct{}{}, ttl)
}

// Contains reports whether idToken is blocked.
func (b *Blocklist) Contains(idToken string) bool {
	_, found := b.cache.Get(tokenKey(idToken))
	return found
}

func tokenKey(idToken string) string {
	sum := sha256.Sum256([]byte(idToken))
	return hex.EncodeToString(sum[:])
}
