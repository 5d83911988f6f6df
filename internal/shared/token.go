package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Identity is the authenticated principal attached to a bearer token.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == "ADMIN"
}

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
type TokenManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, prefix string, ttl time.Duration) *TokenManager {
	if prefix == "" {
		prefix = "wimotos_token"
	}
	return &TokenManager{client: client, prefix: prefix, ttl: ttl}
}

// Mint creates a fresh token for identity and stores it with the configured TTL.
func (tm *TokenManager) Mint(ctx context.Context, identity Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("shared/token: generate: %w", err)
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("shared/token: marshal identity: %w", err)
	}
	if err := tm.client.Set(ctx, tm.key(token), payload, tm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared/token: store: %w", err)
	}
	return token, nil
}

// Lookup resolves a token back to its identity, refreshing the TTL on hit.
func (tm *TokenManager) Lookup(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrTokenInvalid
	}
	payload, err := tm.client.Get(ctx, tm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrTokenInvalid
		}
		return Identity{}, fmt.Errorf("shared/token: lookup: %w", err)
	}
	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return Identity{}, fmt.Errorf("shared/token: decode identity: %w", err)
	}
	_ = tm.client.Expire(ctx, tm.key(token), tm.ttl).Err()
	return identity, nil
}

// Revoke deletes a token. Unknown tokens are not an error.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return tm.client.Del(ctx, tm.key(token)).Err()
}

func (tm *TokenManager) key(token string) string {
	return tm.prefix + ":" + token
}

func newToken() (string, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", err
	}
	id := uuid.New()
	raw := append(id[:], entropy...)
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
