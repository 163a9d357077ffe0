package common

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the signed-in session attached to a request.
type Principal struct {
	SessionID string
	User      session.User
}

// ContextWithPrincipal stores the principal into context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}

// Authenticator verifies session tokens and loads the matching session record.
type Authenticator struct {
	tokens  *session.Tokens
	storage session.Storage
	logger  *zap.Logger
}

func NewAuthenticator(tokens *session.Tokens, storage session.Storage, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, storage: storage, logger: logger}
}

// Middleware rejects requests without a valid bearer token and live session.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			WriteError(a.logger, w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			WriteError(a.logger, w, http.StatusUnauthorized, "Authorization must use the Bearer scheme")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		claims, err := a.tokens.Parse(tokenString)
		if err != nil {
			WriteError(a.logger, w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		user, ok, err := session.Load(r.Context(), a.storage, claims.Subject)
		if err != nil {
			a.logger.Error("load session", zap.String("session_id", claims.Subject), zap.Error(err))
			WriteError(a.logger, w, http.StatusInternalServerError, "Failed to load session")
			return
		}
		if !ok {
			WriteError(a.logger, w, http.StatusUnauthorized, "Session expired")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), Principal{SessionID: claims.Subject, User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
