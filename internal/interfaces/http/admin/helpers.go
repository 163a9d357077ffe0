package admin

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	adminapp "github.com/fernetbarato/fernet-barato/api/internal/admin/application"
	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// requireAdmin rejects every request whose wallet is not a contract admin.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := common.PrincipalFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Not signed in")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()
		if err := h.storeService.Authorize(ctx, principal.User); err != nil {
			common.WriteError(h.logger, w, http.StatusForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminapp.ErrForbidden):
		common.WriteError(h.logger, w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrInvalidBody), adminapp.IsRequestError(err):
		common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("admin write failed", zap.Error(err))
		common.WriteErrorDetails(h.logger, w, http.StatusInternalServerError, "Transaction failed", err.Error())
	}
}

// rotate persists a refreshed access token; failures are logged.
func (h *Handler) rotate(ctx context.Context, principal common.Principal, receipt session.Receipt) {
	if h.sessions == nil {
		return
	}
	if _, err := h.sessions.Rotate(ctx, principal.SessionID, principal.User, receipt); err != nil {
		h.logger.Warn("store refreshed access token", zap.String("session_id", principal.SessionID), zap.Error(err))
	}
}

func toTransactionResponse(tx admindomain.Transaction) transactionResponse {
	return transactionResponse{
		Entrypoint:  tx.Entrypoint,
		Strategy:    tx.Strategy,
		Attempt:     tx.Attempt,
		Network:     tx.Network,
		Wallet:      tx.Wallet,
		Calldata:    append([]string{}, tx.Calldata...),
		TxHash:      tx.TxHash,
		Error:       tx.Error,
		Succeeded:   tx.Succeeded(),
		SubmittedAt: tx.SubmittedAt,
	}
}
