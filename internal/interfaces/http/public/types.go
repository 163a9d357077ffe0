package public

import (
	"time"

	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

type sessionResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	AccessToken   string    `json:"access_token"`
	WalletAddress string    `json:"wallet_address"`
	Email         string    `json:"email,omitempty"`
	Network       string    `json:"network"`
	SessionToken  string    `json:"session_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type registrationResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    registrationData `json:"data"`
}

type registrationData struct {
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	CreatedAt     string `json:"created_at"`
}

type meResponse struct {
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
	Email         string `json:"email,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
}

type transactionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    transactionData `json:"data"`
}

type transactionData struct {
	TxHash      string `json:"txHash"`
	AccessToken string `json:"accessToken,omitempty"`
}

type storeResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
	URI     string `json:"uri"`
	MapsURL string `json:"maps_url,omitempty"`
}

type priceResponse struct {
	StoreID        string `json:"store_id"`
	PriceInCents   int64  `json:"price_in_cents"`
	Timestamp      int64  `json:"timestamp"`
	FormattedPrice string `json:"formatted_price"`
	UpdatedLabel   string `json:"updated_label"`
	Stale          bool   `json:"stale"`
}

type reportResponse struct {
	StoreID     string `json:"store_id"`
	Description string `json:"description"`
	SubmittedAt int64  `json:"submitted_at"`
	SubmittedBy string `json:"submitted_by"`
}

type previewResponse struct {
	Store storeResponse `json:"store"`
	Price priceResponse `json:"price"`
}

type rankedStoreResponse struct {
	storeResponse
	Price                       priceResponse             `json:"price"`
	ThanksCount                 uint64                    `json:"thanks_count"`
	Reports                     []reportResponse          `json:"reports"`
	PriceDifferenceFromCheapest int64                     `json:"price_difference_from_cheapest"`
	PriceDifferencePercentage   float64                   `json:"price_difference_percentage"`
	DistanceKm                  *float64                  `json:"distance_km,omitempty"`
	Coordinates                 *publicdomain.Coordinates `json:"coordinates,omitempty"`
}

type storeDetailResponse struct {
	storeResponse
	Price       priceResponse    `json:"price"`
	ThanksCount uint64           `json:"thanks_count"`
	Reports     []reportResponse `json:"reports"`
	Thanked     bool             `json:"thanked"`
}
