package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrUsernameTaken is returned when registration hits the unique constraint.
var ErrUsernameTaken = errors.New("username taken")

// truncatePassword caps the input at bcrypt's 72-byte limit
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

const userCols = `id, username, password_hash, COALESCE(display_name, ''), COALESCE(email, ''), COALESCE(avatar_url, ''), created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a new user with a hashed password
func (p *Postgres) CreateUser(ctx context.Context, username, password, displayName, email string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, errors.New("missing username or password")
	}

	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, display_name, email)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (username) DO NOTHING
		RETURNING `+userCols+`
	`, username, string(hash), displayName, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	return u, nil
}

// UserByID fetches a user by primary key
func (p *Postgres) UserByID(ctx context.Context, id int64) (User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UserByUsername fetches a user by login name
func (p *Postgres) UserByUsername(ctx context.Context, username string) (User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, strings.TrimSpace(username))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// VerifyUser checks username + password match
func (p *Postgres) VerifyUser(ctx context.Context, username, password string) (User, error) {
	u, err := p.UserByUsername(ctx, username)
	if err != nil {
		return User{}, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), truncatePassword(password)) != nil {
		return User{}, errors.New("invalid credentials")
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields and returns the fresh row
func (p *Postgres) UpdateProfile(ctx context.Context, id int64, displayName, email, avatarURL *string) (User, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    email        = COALESCE($3, email),
		    avatar_url   = COALESCE($4, avatar_url),
		    updated_at   = NOW()
		WHERE id = $1
		RETURNING `+userCols+`
	`, id, displayName, email, avatarURL)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// SaveRefreshToken records a refresh token for later rotation
func (p *Postgres) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

// VerifyRefreshToken returns the owning user id if the token exists and is not expired
func (p *Postgres) VerifyRefreshToken(ctx context.Context, token string) (int64, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT user_id FROM refresh_tokens
		WHERE token = $1 AND expires_at > NOW()
	`, token)

	var uid int64
	if err := row.Scan(&uid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return uid, nil
}

// DeleteRefreshToken revokes a refresh token (logout)
func (p *Postgres) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}
