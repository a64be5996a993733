package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	j := New("secret")

	tok, err := j.Sign(42, "access", time.Minute)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	uid, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if uid != 42 {
		t.Errorf("Verify() uid = %d, want 42", uid)
	}
}

func TestVerifyRejects(t *testing.T) {
	j := New("secret")

	expired, err := j.Sign(42, "access", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	otherSecret, err := New("other").Sign(42, "access", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := j.Sign(42, "refresh", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	// alg=none must never pass, even with plausible claims
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 42,
		"type":    "access",
		"exp":     time.Now().Add(time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		tok  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"refresh token", refresh},
		{"unsigned", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := j.Verify(tt.tok); err == nil {
				t.Errorf("Verify(%q) succeeded, want error", tt.name)
			}
		})
	}
}

func TestSignRejectsZeroUID(t *testing.T) {
	if _, err := New("secret").Sign(0, "access", time.Minute); err == nil {
		t.Error("Sign(0) succeeded, want error")
	}
}

func TestContextUserID(t *testing.T) {
	ctx := context.Background()
	if got := UserID(ctx); got != 0 {
		t.Errorf("UserID(empty ctx) = %d, want 0", got)
	}
	ctx = WithUser(ctx, 7)
	if got := UserID(ctx); got != 7 {
		t.Errorf("UserID() = %d, want 7", got)
	}
}
