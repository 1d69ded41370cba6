package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids (JTIs) in Redis until their natural
// expiry. Logout puts a token here; the auth middleware checks it on every
// request. With no Redis configured the denylist degrades to a no-op and
// logout falls back to client-side token disposal, which is what the product
// shipped with.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// NewRedisClient connects to Redis, returning nil when the address is unset
// or the server is unreachable. Callers treat a nil client as "feature off".
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return client
}

func (d *Denylist) key(jti string) string {
	return "revoked:" + jti
}

// Revoke marks a token id as dead for the remaining token lifetime.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d == nil || d.client == nil || jti == "" {
		return nil
	}

	if ttl <= 0 {
		ttl = time.Minute
	}

	return d.client.Set(ctx, d.key(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked. Lookup errors fail
// open: an unreachable denylist must not lock every user out.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) bool {
	if d == nil || d.client == nil || jti == "" {
		return false
	}

	n, err := d.client.Exists(ctx, d.key(jti)).Result()

	if err != nil {
		return false
	}

	return n > 0
}
