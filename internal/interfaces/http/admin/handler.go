package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	adminapp "github.com/fernetbarato/fernet-barato/api/internal/admin/application"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// SessionRotator stores the access token refreshed by a write.
type SessionRotator interface {
	Rotate(ctx context.Context, sessionID string, user session.User, receipt session.Receipt) (session.User, error)
}

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger       *zap.Logger
	storeService adminapp.StoreService
	sessions     SessionRotator
}

// Config provides dependencies for Handler.
type Config struct {
	Logger       *zap.Logger
	StoreService adminapp.StoreService
	Sessions     SessionRotator
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:       logger,
		storeService: cfg.StoreService,
		sessions:     cfg.Sessions,
	}
}

// Register mounts admin routes onto router. authMiddleware must run first so
// the admin check sees the signed-in session.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Use(h.requireAdmin)
	r.Post("/stores", h.storeCreateHandler())
	r.Post("/stores/{id}/price", h.priceUpdateHandler())
	r.Get("/transactions", h.transactionListHandler())
}
