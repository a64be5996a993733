package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes shared by the HTTP auth handlers.
const (
	AccessTTL  = 30 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type ctxKey int

const userKey ctxKey = 1

// WithUser adds a user ID to the context
func WithUser(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, userKey, uid)
}

// UserID extracts the user ID from the context, 0 when absent
func UserID(ctx context.Context) int64 {
	v := ctx.Value(userKey)
	if v == nil {
		return 0
	}
	return v.(int64)
}

// JWT wraps a signing secret for issuing/verifying tokens
type JWT struct{ secret []byte }

// New creates a new JWT signer/verifier.
func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Sign creates a token of the given type ("access" or "refresh") for uid
func (j *JWT) Sign(uid int64, tokenType string, ttl time.Duration) (string, error) {
	if uid == 0 {
		return "", errors.New("empty uid")
	}
	claims := jwt.MapClaims{
		"user_id": uid,
		"type":    tokenType,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(j.secret)
}

// Verify checks an access token and returns the user_id claim.
// Malformed or expired tokens return an error, never a panic. Refresh
// tokens are rejected here; only the store-backed refresh flow honors them.
func (j *JWT) Verify(tok string) (int64, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, err
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return 0, errors.New("not an access token")
	}
	// json numbers decode as float64
	uid, _ := claims["user_id"].(float64)
	if uid == 0 {
		return 0, errors.New("no user_id")
	}
	return int64(uid), nil
}
