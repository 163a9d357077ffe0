package public

import (
	"context"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
)

func credentialsFrom(body gjson.Result) publicapp.Credentials {
	return publicapp.Credentials{
		Email:    body.Get("email").String(),
		Password: body.Get("password").String(),
		Network:  body.Get("network").String(),
	}
}

func (h *Handler) signInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		body, err := common.ReadJSON(w, r)
		if err != nil {
			h.writeServiceError(w, err, http.StatusUnauthorized, "Login failed")
			return
		}

		signedIn, err := h.accounts.SignIn(ctx, credentialsFrom(body))
		if err != nil {
			h.writeServiceError(w, err, http.StatusUnauthorized, "Login failed")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toSessionResponse("Login successful", signedIn))
	}
}

func (h *Handler) signUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		body, err := common.ReadJSON(w, r)
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Registration failed")
			return
		}

		reg, err := h.accounts.SignUp(ctx, credentialsFrom(body))
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Registration failed")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, registrationResponse{
			Success: true,
			Message: "User registered successfully",
			Data: registrationData{
				Email:         reg.Email,
				WalletAddress: reg.WalletAddress,
				CreatedAt:     reg.CreatedAt,
			},
		})
	}
}

func (h *Handler) callbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		signedIn, err := h.accounts.CompleteCallback(ctx, query.Get("user_data"), query.Get("error"))
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "An error occurred during authentication")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toSessionResponse("Authentication successful", signedIn))
	}
}

func (h *Handler) signOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := common.PrincipalFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Not signed in")
			return
		}
		if err := h.accounts.SignOut(r.Context(), principal.SessionID); err != nil {
			h.logger.Error("sign out", zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Sign out failed")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"success": true, "message": "Signed out"})
	}
}

func (h *Handler) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		principal, ok := common.PrincipalFromContext(ctx)
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Not signed in")
			return
		}
		user := principal.User
		common.WriteJSON(h.logger, w, http.StatusOK, meResponse{
			WalletAddress: user.WalletAddress,
			Network:       user.Network,
			Email:         user.Email,
			IsAdmin:       h.storeQueries.IsAdmin(ctx, user),
		})
	}
}
