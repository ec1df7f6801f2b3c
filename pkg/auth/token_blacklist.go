package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const blacklistPrefix = "token:blacklist:"

// KeyStore is the subset of a key/value cache the blacklist needs.
type KeyStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TokenBlacklist tracks revoked access tokens until they expire.
type TokenBlacklist struct {
	store KeyStore
}

func NewTokenBlacklist(store KeyStore) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

// Blacklist adds a token to the blacklist until its expiration
func (b *TokenBlacklist) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.store.Set(ctx, blacklistPrefix+hashToken(token), true, ttl)
}

// IsBlacklisted checks if a token is blacklisted
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	ok, err := b.store.Exists(ctx, blacklistPrefix+hashToken(token))
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return ok, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
