package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "inkwell:revoked:"

// Denylist records logged-out tokens until their natural expiry. Tokens are
// stateless otherwise, so logout needs a shared revocation record.
type Denylist struct {
	client *redis.Client
}

// NewDenylist constructs a Denylist.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistPrefix + hex.EncodeToString(sum[:])
}

// Revoke marks the token revoked for the remainder of its lifetime.
func (d *Denylist) Revoke(ctx context.Context, token string, until time.Time) error {
	if d == nil || d.client == nil {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKey(token), "1", ttl).Err()
}

// IsRevoked reports whether the token has been logged out. A redis failure
// counts as not revoked; availability wins over early revocation here.
func (d *Denylist) IsRevoked(ctx context.Context, token string) bool {
	if d == nil || d.client == nil {
		return false
	}
	n, err := d.client.Exists(ctx, denylistKey(token)).Result()
	return err == nil && n > 0
}
