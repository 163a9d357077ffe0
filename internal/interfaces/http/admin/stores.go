package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	adminapp "github.com/fernetbarato/fernet-barato/api/internal/admin/application"
	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
)

func (h *Handler) storeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.WriteTimeout)
		defer cancel()

		var req storeCreateRequest
		if err := common.DecodeJSON(w, r, &req); err != nil {
			h.writeServiceError(w, err)
			return
		}

		principal, _ := common.PrincipalFromContext(ctx)
		receipt, err := h.storeService.AddStore(ctx, principal.User, adminapp.AddStoreCommand{
			Name:    req.Name,
			Address: req.Address,
			Hours:   req.Hours,
			URI:     req.URI,
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.rotate(ctx, principal, receipt)
		common.WriteJSON(h.logger, w, http.StatusCreated, writeResponse{Success: true, Message: "Store added", TxHash: receipt.TxHash})
	}
}

func (h *Handler) priceUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.WriteTimeout)
		defer cancel()

		// price may arrive as a JSON number or a numeric string.
		body, err := common.ReadJSON(w, r)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		principal, _ := common.PrincipalFromContext(ctx)
		receipt, err := h.storeService.UpdatePrice(ctx, principal.User, adminapp.UpdatePriceCommand{
			StoreID: chi.URLParam(r, "id"),
			Price:   body.Get("price").String(),
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.rotate(ctx, principal, receipt)
		common.WriteJSON(h.logger, w, http.StatusOK, writeResponse{Success: true, Message: "Price updated", TxHash: receipt.TxHash})
	}
}

func (h *Handler) transactionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.ReadTimeout)
		defer cancel()

		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), 20)

		principal, _ := common.PrincipalFromContext(ctx)
		txs, err := h.storeService.Transactions(ctx, principal.User, adminapp.TransactionFilter{
			Wallet: query.Get("wallet"),
			Limit:  limit,
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		items := make([]transactionResponse, 0, len(txs))
		for _, tx := range txs {
			items = append(items, toTransactionResponse(tx))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": items})
	}
}
