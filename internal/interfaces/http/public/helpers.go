package public

import (
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// writeServiceError maps application errors onto status codes. Hosted wallet
// failures use providerStatus; anything else unexpected is a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, providerStatus int, message string) {
	var cfgErr *publicapp.ConfigError
	var providerErr *publicapp.ProviderError
	switch {
	case errors.Is(err, common.ErrInvalidBody), publicapp.IsRequestError(err):
		common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
	case errors.As(err, &cfgErr):
		h.logger.Error("hosted wallet service is not configured", zap.Error(err))
		common.WriteError(h.logger, w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &providerErr):
		h.logger.Warn(message, zap.Error(err))
		common.WriteErrorDetails(h.logger, w, providerStatus, message, providerErr.Error())
	default:
		h.logger.Error(message, zap.Error(err))
		common.WriteErrorDetails(h.logger, w, http.StatusInternalServerError, message, err.Error())
	}
}

// truthy mirrors the client's notion of a present value: absent, null, false,
// zero and the empty string are all missing.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

func toStoreResponse(store publicdomain.Store) storeResponse {
	return storeResponse{
		ID:      store.ID,
		Name:    store.Name,
		Address: store.Address,
		Hours:   store.Hours,
		URI:     store.URI,
		MapsURL: store.MapsURL(),
	}
}

func toPriceResponse(p publicdomain.PriceDisplay) priceResponse {
	return priceResponse{
		StoreID:        p.StoreID,
		PriceInCents:   p.PriceInCents,
		Timestamp:      p.Timestamp,
		FormattedPrice: p.FormattedPrice,
		UpdatedLabel:   p.UpdatedLabel,
		Stale:          p.Stale,
	}
}

func toReportResponses(reports []publicdomain.Report) []reportResponse {
	result := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		result = append(result, reportResponse{
			StoreID:     report.StoreID,
			Description: report.Description,
			SubmittedAt: report.SubmittedAt,
			SubmittedBy: report.SubmittedBy,
		})
	}
	return result
}

func toRankedResponse(store publicdomain.RankedStore) rankedStoreResponse {
	return rankedStoreResponse{
		storeResponse:               toStoreResponse(store.Store),
		Price:                       toPriceResponse(store.Price),
		ThanksCount:                 store.ThanksCount,
		Reports:                     toReportResponses(store.Reports),
		PriceDifferenceFromCheapest: store.DeltaFromCheapest,
		PriceDifferencePercentage:   store.DeltaPercentage,
		DistanceKm:                  store.DistanceKm,
		Coordinates:                 store.Coordinates,
	}
}

func toSessionResponse(message string, signedIn publicapp.SignedIn) sessionResponse {
	return sessionResponse{
		Success:       true,
		Message:       message,
		AccessToken:   signedIn.User.AccessToken,
		WalletAddress: signedIn.User.WalletAddress,
		Email:         signedIn.User.Email,
		Network:       signedIn.User.Network,
		SessionToken:  signedIn.Token,
		ExpiresAt:     signedIn.ExpiresAt,
	}
}

func txResponse(message string, receipt session.Receipt) transactionResponse {
	return transactionResponse{
		Success: true,
		Message: message,
		Data:    transactionData{TxHash: receipt.TxHash, AccessToken: receipt.AccessToken},
	}
}
