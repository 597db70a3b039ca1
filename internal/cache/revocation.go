package cache

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken blacklists a token ID until it would have expired anyway.
func RevokeToken(ctx context.Context, jti string, until time.Time) error {
	if client == nil {
		return fmt.Errorf("token revocation requires redis")
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, fmt.Sprintf(RevokedTokenPrefix, jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without Redis nothing is revoked.
func IsRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, fmt.Sprintf(RevokedTokenPrefix, jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
