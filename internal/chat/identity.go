package chat

import (
	"context"
	"net/url"

	"github.com/yingjunnan/ChatBox/internal/store"
)

// Identity is the resolved sender for one connection.
type Identity struct {
	DisplayName string
	UserID      *int64 // nil for guests
	Guest       bool
}

// TokenVerifier checks an auth token and returns the user id it names.
// Malformed or expired tokens return an error, never a panic.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserDirectory resolves authenticated user ids to their records.
type UserDirectory interface {
	UserByID(ctx context.Context, id int64) (store.User, error)
}

// resolveFunc is one identity strategy: resolved identity or absence.
type resolveFunc func(ctx context.Context, q url.Values) (Identity, bool)

// resolveIdentity tries each strategy in order and takes the first success:
// a verified token wins over a plain username; with neither, resolution
// fails and the connection must be refused.
func (g *Gateway) resolveIdentity(ctx context.Context, q url.Values) (Identity, bool) {
	for _, resolve := range []resolveFunc{g.tokenIdentity, g.guestIdentity} {
		if id, ok := resolve(ctx, q); ok {
			return id, true
		}
	}
	return Identity{}, false
}

// tokenIdentity resolves a verified token to an existing user record,
// preferring the profile display name over the login username.
func (g *Gateway) tokenIdentity(ctx context.Context, q url.Values) (Identity, bool) {
	tok := q.Get("token")
	if tok == "" {
		return Identity{}, false
	}
	uid, err := g.tokens.Verify(tok)
	if err != nil {
		return Identity{}, false
	}
	u, err := g.users.UserByID(ctx, uid)
	if err != nil {
		return Identity{}, false
	}
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return Identity{DisplayName: name, UserID: &u.ID}, true
}

// guestIdentity takes the username parameter verbatim.
func (g *Gateway) guestIdentity(_ context.Context, q url.Values) (Identity, bool) {
	name := q.Get("username")
	if name == "" {
		return Identity{}, false
	}
	return Identity{DisplayName: name, Guest: true}, true
}
