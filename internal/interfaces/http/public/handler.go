package public

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *zap.Logger
	accounts       publicapp.AccountService
	storeQueries   publicapp.StoreQueryService
	feedback       publicapp.FeedbackService
	defaultNetwork string
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.Logger
	Accounts       publicapp.AccountService
	StoreQueries   publicapp.StoreQueryService
	Feedback       publicapp.FeedbackService
	DefaultNetwork string
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:         logger,
		accounts:       cfg.Accounts,
		storeQueries:   cfg.StoreQueries,
		feedback:       cfg.Feedback,
		defaultNetwork: cfg.DefaultNetwork,
	}
}

// Register mounts the versioned API routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/auth/signIn", h.signInHandler())
	r.Post("/auth/signUp", h.signUpHandler())
	r.Post("/execute", h.executeHandler())
	r.Get("/stores/preview", h.storePreviewHandler())
	r.Get("/reports/reasons", h.reportReasonsHandler())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/auth/signOut", h.signOutHandler())
		r.Get("/auth/me", h.meHandler())
		r.Get("/stores", h.storeListHandler())
		r.Get("/stores/{id}", h.storeDetailHandler())
		r.Get("/stores/{id}/prices", h.priceHistoryHandler())
		r.Post("/stores/{id}/thanks", h.thanksHandler())
		r.Post("/stores/{id}/reports", h.reportHandler())
	})
}

// RegisterCallback mounts the hosted login redirect target.
func (h *Handler) RegisterCallback(r chi.Router) {
	r.Get("/auth/callback", h.callbackHandler())
}
