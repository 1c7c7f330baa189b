package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
)

// DefaultTokenExpiry applies when no expiry is configured
const DefaultTokenExpiry = 30 * 24 * time.Hour

// Token is a bearer token issued to a user
type Token struct {
	ID     uuid.UUID
	UserID int64
	// Plain is the presented token, only populated on creation
	Plain      string
	Hash       string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// NewToken creates a token for userID valid for ttl
func NewToken(userID int64, ttl time.Duration) *Token {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	// uuid draws from crypto/rand
	plain := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String() + uuid.New().String()))

	now := time.Now()
	return &Token{
		ID:        uuid.New(),
		UserID:    userID,
		Plain:     plain,
		Hash:      HashToken(plain),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// HashToken returns the stored form of a presented token
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Expired reports whether the token is past its expiry
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
