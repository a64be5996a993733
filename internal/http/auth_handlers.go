package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yingjunnan/ChatBox/internal/store"
	"github.com/yingjunnan/ChatBox/pkg/auth"
)

type AuthAPI struct {
	DB  *store.Postgres
	JWT *auth.JWT
}

type registerReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
type userDTO struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserDTO(u store.User) userDTO {
	return userDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

// issueTokens signs an access/refresh pair and records the refresh token
func (a *AuthAPI) issueTokens(r *http.Request, uid int64) (tokenResp, error) {
	access, err := a.JWT.Sign(uid, "access", auth.AccessTTL)
	if err != nil {
		return tokenResp{}, err
	}
	refresh, err := a.JWT.Sign(uid, "refresh", auth.RefreshTTL)
	if err != nil {
		return tokenResp{}, err
	}
	if err := a.DB.SaveRefreshToken(r.Context(), uid, refresh, time.Now().Add(auth.RefreshTTL)); err != nil {
		return tokenResp{}, err
	}
	return tokenResp{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Register handles user signup and returns a token pair
func (a *AuthAPI) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	// Basic validation
	if req.Username == "" || len(req.Password) < 8 {
		http.Error(w, "invalid username or weak password", http.StatusBadRequest)
		return
	}

	u, err := a.DB.CreateUser(r.Context(), req.Username, req.Password, req.DisplayName, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			http.Error(w, "username already in use", http.StatusConflict)
			return
		}
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	resp, err := a.issueTokens(r, u.ID)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}

// Login verifies credentials and returns a token pair
func (a *AuthAPI) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	u, err := a.DB.VerifyUser(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	resp, err := a.issueTokens(r, u.ID)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}

// Refresh exchanges a stored refresh token for a new access token
func (a *AuthAPI) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	uid, err := a.DB.VerifyRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	access, err := a.JWT.Sign(uid, "access", auth.AccessTTL)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tokenResp{AccessToken: access, RefreshToken: req.RefreshToken, TokenType: "bearer"})
}

// Logout revokes a refresh token
func (a *AuthAPI) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if err := a.DB.DeleteRefreshToken(r.Context(), req.RefreshToken); err != nil {
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile
func (a *AuthAPI) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := a.DB.UserByID(r.Context(), uid)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toUserDTO(u))
}

type updateProfileReq struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile applies partial profile changes for the authenticated user
func (a *AuthAPI) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req updateProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	u, err := a.DB.UpdateProfile(r.Context(), uid, req.DisplayName, req.Email, req.AvatarURL)
	if err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toUserDTO(u))
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
