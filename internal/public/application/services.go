package application

import (
	"context"
	"time"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// LedgerReader abstracts read access to the price contract.
type LedgerReader interface {
	ListStores(ctx context.Context, network string) ([]domain.Store, error)
	ListCurrentPrices(ctx context.Context, network string) ([]domain.StorePrice, error)
	GetPriceHistory(ctx context.Context, network, storeID string) ([]domain.Price, error)
	HasUserThanked(ctx context.Context, network, storeID, wallet string) (bool, error)
	IsAdmin(ctx context.Context, network, wallet string) bool
	GetStoreWithPrice(ctx context.Context, network, storeID string) (domain.StoreDetails, error)
	ListStoresWithPrices(ctx context.Context, network string) ([]domain.StoreDetails, error)
}

// LedgerWriter submits community feedback on behalf of a signed-in user.
type LedgerWriter interface {
	GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error)
	SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error)
	TouchLastConnected(ctx context.Context, user session.User) (session.Receipt, error)
}

// Geocoder resolves a store to coordinates. ok is false when it cannot be located.
type Geocoder interface {
	Locate(ctx context.Context, store domain.Store) (coords domain.Coordinates, ok bool, err error)
}

// AccountProvider is the hosted wallet service.
type AccountProvider interface {
	CheckAuthConfig() error
	CheckExecConfig() error
	SignIn(ctx context.Context, network, email, password string) (session.User, error)
	SignUp(ctx context.Context, network, email, password string) (session.Registration, error)
	ExecuteCalls(ctx context.Context, user session.User, calls []domain.ContractCall) (session.Receipt, error)
}

// RankQuery selects the network, ordering and optional origin of a ranked list.
type RankQuery struct {
	Network string
	Sort    domain.SortMode
	Origin  *domain.Coordinates
}

// StoreDetailView is a single store as shown to a signed-in user.
type StoreDetailView struct {
	domain.StoreDetails
	Price   domain.PriceDisplay
	Thanked bool
}

// StoreQueryService describes read use-cases.
type StoreQueryService interface {
	Ranked(ctx context.Context, query RankQuery) ([]domain.RankedStore, error)
	Detail(ctx context.Context, network, storeID, wallet string) (StoreDetailView, error)
	Preview(ctx context.Context, network string) []domain.PreviewStore
	PriceHistory(ctx context.Context, network, storeID string) ([]domain.PriceDisplay, error)
	IsAdmin(ctx context.Context, user session.User) bool
}

// FeedbackService handles thanks and reports.
type FeedbackService interface {
	GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error)
	SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error)
}

// Credentials is a sign-in or sign-up request.
type Credentials struct {
	Email    string
	Password string
	Network  string
}

// SignedIn is a freshly created session.
type SignedIn struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
	User      session.User
}

// CallInput is one call of an execute request before compilation.
type CallInput struct {
	ContractAddress string
	Entrypoint      string
	Calldata        []codec.Value
	HasCalldata     bool
}

// ExecuteCommand is a raw execution request.
type ExecuteCommand struct {
	WalletAddress string
	AccessToken   string
	Network       string
	CallsPresent  bool
	CallsIsArray  bool
	Calls         []CallInput
}

// AccountService handles authentication, sessions and raw execution.
type AccountService interface {
	SignIn(ctx context.Context, cmd Credentials) (SignedIn, error)
	SignUp(ctx context.Context, cmd Credentials) (session.Registration, error)
	CompleteCallback(ctx context.Context, userData, errorCode string) (SignedIn, error)
	Resume(ctx context.Context, sessionID string) (session.User, bool, error)
	Rotate(ctx context.Context, sessionID string, user session.User, receipt session.Receipt) (session.User, error)
	SignOut(ctx context.Context, sessionID string) error
	Execute(ctx context.Context, cmd ExecuteCommand) (session.Receipt, error)
}
