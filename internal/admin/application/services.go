package application

import (
	"context"
	"errors"

	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// ErrForbidden is returned when the caller is not a contract administrator.
var ErrForbidden = errors.New("Admin privileges required")

// AdminChecker reports whether a wallet administers the contract.
type AdminChecker interface {
	IsAdmin(ctx context.Context, network, wallet string) bool
}

// StoreWriter submits administrator writes.
type StoreWriter interface {
	UpdatePrice(ctx context.Context, user session.User, storeID string, cents int64) (session.Receipt, error)
	AddStore(ctx context.Context, user session.User, name, address, hours, uri string) (session.Receipt, error)
}

// TransactionLog lists journaled write attempts.
type TransactionLog interface {
	Recent(ctx context.Context, wallet string, limit int) ([]admindomain.Transaction, error)
}

// AddStoreCommand contains inputs for registering a store.
type AddStoreCommand struct {
	Name    string
	Address string
	Hours   string
	URI     string
}

// UpdatePriceCommand sets the current price of a store.
type UpdatePriceCommand struct {
	StoreID string
	// Price is in currency units as sent by the client, e.g. "15500.50".
	Price string
}

// TransactionFilter narrows the journal listing.
type TransactionFilter struct {
	Wallet string
	Limit  int
}

// StoreService describes admin store use-cases.
type StoreService interface {
	Authorize(ctx context.Context, user session.User) error
	UpdatePrice(ctx context.Context, user session.User, cmd UpdatePriceCommand) (session.Receipt, error)
	AddStore(ctx context.Context, user session.User, cmd AddStoreCommand) (session.Receipt, error)
	Transactions(ctx context.Context, user session.User, filter TransactionFilter) ([]admindomain.Transaction, error)
}
