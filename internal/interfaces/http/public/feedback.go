package public

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

func (h *Handler) thanksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.WriteTimeout)
		defer cancel()

		principal, _ := common.PrincipalFromContext(ctx)
		receipt, err := h.feedback.GiveThanks(ctx, principal.User, chi.URLParam(r, "id"))
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Transaction failed")
			return
		}
		h.rotate(ctx, principal, receipt)
		common.WriteJSON(h.logger, w, http.StatusOK, txResponse("Thanks sent", receipt))
	}
}

// reportDescription accepts either a free description or a preset reason with details.
func reportDescription(description, reason, details string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	reason, details = strings.TrimSpace(reason), strings.TrimSpace(details)
	if details == "" {
		return reason
	}
	if reason == "" {
		return details
	}
	return reason + ": " + details
}

func (h *Handler) reportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.WriteTimeout)
		defer cancel()

		body, err := common.ReadJSON(w, r)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		description := reportDescription(
			body.Get("description").String(),
			body.Get("reason").String(),
			body.Get("details").String(),
		)

		principal, _ := common.PrincipalFromContext(ctx)
		receipt, err := h.feedback.SubmitReport(ctx, principal.User, chi.URLParam(r, "id"), description)
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Transaction failed")
			return
		}
		h.rotate(ctx, principal, receipt)
		common.WriteJSON(h.logger, w, http.StatusOK, txResponse("Report submitted", receipt))
	}
}

func (h *Handler) reportReasonsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"reasons":   publicdomain.ReportReasons,
			"max_bytes": publicdomain.MaxReportBytes,
		})
	}
}

// rotate persists a refreshed access token; failures are logged.
func (h *Handler) rotate(ctx context.Context, principal common.Principal, receipt session.Receipt) {
	if _, err := h.accounts.Rotate(ctx, principal.SessionID, principal.User, receipt); err != nil {
		h.logger.Warn("store refreshed access token", zap.String("session_id", principal.SessionID), zap.Error(err))
	}
}
