package public

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

func (h *Handler) storePreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		network := strings.TrimSpace(r.URL.Query().Get("network"))
		if network == "" {
			network = h.defaultNetwork
		}
		if !session.ValidNetwork(network) {
			common.WriteError(h.logger, w, http.StatusBadRequest, publicapp.ErrInvalidNetwork.Error())
			return
		}

		preview := h.storeQueries.Preview(ctx, network)
		items := make([]previewResponse, 0, len(preview))
		for _, p := range preview {
			items = append(items, previewResponse{Store: toStoreResponse(p.Store), Price: toPriceResponse(p.Price)})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": items})
	}
}

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		principal, _ := common.PrincipalFromContext(ctx)
		query := r.URL.Query()

		sortMode, err := publicdomain.ParseSortMode(query.Get("sort"))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		rank := publicapp.RankQuery{Network: principal.User.Network, Sort: sortMode}
		lat, lng := strings.TrimSpace(query.Get("lat")), strings.TrimSpace(query.Get("lng"))
		if lat != "" || lng != "" {
			origin, err := publicdomain.ParseCoordinates(lat, lng)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
				return
			}
			rank.Origin = &origin
		}

		ranked, err := h.storeQueries.Ranked(ctx, rank)
		if err != nil {
			h.writeServiceError(w, err, http.StatusBadGateway, "Failed to load stores")
			return
		}

		items := make([]rankedStoreResponse, 0, len(ranked))
		for _, store := range ranked {
			items = append(items, toRankedResponse(store))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": items})
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		principal, _ := common.PrincipalFromContext(ctx)
		user := principal.User

		view, err := h.storeQueries.Detail(ctx, user.Network, chi.URLParam(r, "id"), user.WalletAddress)
		if err != nil {
			h.writeServiceError(w, err, http.StatusBadGateway, "Failed to load store")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, storeDetailResponse{
			storeResponse: toStoreResponse(view.Store),
			Price:         toPriceResponse(view.Price),
			ThanksCount:   view.ThanksCount,
			Reports:       toReportResponses(view.Reports),
			Thanked:       view.Thanked,
		})
	}
}

func (h *Handler) priceHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		principal, _ := common.PrincipalFromContext(ctx)
		history, err := h.storeQueries.PriceHistory(ctx, principal.User.Network, chi.URLParam(r, "id"))
		if err != nil {
			h.writeServiceError(w, err, http.StatusBadGateway, "Failed to load price history")
			return
		}

		items := make([]priceResponse, 0, len(history))
		for _, p := range history {
			items = append(items, toPriceResponse(p))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"prices": items})
	}
}
