package httpx

import (
	"net/http"

	"log/slog"

	"github.com/yingjunnan/ChatBox/internal/app"
	"github.com/yingjunnan/ChatBox/internal/chat"
	"github.com/yingjunnan/ChatBox/internal/store"
	"github.com/yingjunnan/ChatBox/pkg/auth"
	"github.com/yingjunnan/ChatBox/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, gw *chat.Gateway, db *store.Postgres) http.Handler {
	mw := NewMiddleware(cfg)

	j := auth.New(cfg.JWTSecret)
	authAPI := &AuthAPI{DB: db, JWT: j}
	roomsAPI := &RoomsAPI{DB: db, Presence: gw.Registry()}
	uploadAPI := &UploadAPI{Dir: cfg.UploadDir}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws/{room_id}", http.HandlerFunc(gw.ServeWS))

	// Auth endpoints
	mux.Handle("POST /api/auth/register", http.HandlerFunc(authAPI.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(authAPI.Login))
	mux.Handle("POST /api/auth/refresh", http.HandlerFunc(authAPI.Refresh))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authAPI.Logout))
	mux.Handle("GET /api/auth/me", mw.Auth(http.HandlerFunc(authAPI.Me)))
	mux.Handle("PUT /api/auth/profile", mw.Auth(http.HandlerFunc(authAPI.UpdateProfile)))

	// Room endpoints
	mux.Handle("POST /api/rooms", http.HandlerFunc(roomsAPI.Create))
	mux.Handle("GET /api/rooms", http.HandlerFunc(roomsAPI.List))
	mux.Handle("POST /api/rooms/join", http.HandlerFunc(roomsAPI.Join))
	mux.Handle("GET /api/rooms/{id}/messages", http.HandlerFunc(roomsAPI.Messages))

	// File upload + static serving
	mux.Handle("POST /api/upload", http.HandlerFunc(uploadAPI.Upload))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	return mw.Wrap(mux) // CORS + rate limit applied globally
}
