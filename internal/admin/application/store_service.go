package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// storeService implements StoreService.
type storeService struct {
	admins AdminChecker
	writer StoreWriter
	log    TransactionLog
	logger *zap.Logger
}

func NewStoreService(admins AdminChecker, writer StoreWriter, log TransactionLog, logger *zap.Logger) StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &storeService{admins: admins, writer: writer, log: log, logger: logger}
}

// Authorize fails closed: an incomplete session or a failed lookup is not an admin.
func (s *storeService) Authorize(ctx context.Context, user session.User) error {
	if !user.Complete() || !s.admins.IsAdmin(ctx, user.Network, user.WalletAddress) {
		return ErrForbidden
	}
	return nil
}

func (s *storeService) UpdatePrice(ctx context.Context, user session.User, cmd UpdatePriceCommand) (session.Receipt, error) {
	if err := s.Authorize(ctx, user); err != nil {
		return session.Receipt{}, err
	}
	storeID, err := publicdomain.ParseStoreID(cmd.StoreID)
	if err != nil {
		return session.Receipt{}, err
	}
	cents, err := admindomain.NewPriceCents(cmd.Price)
	if err != nil {
		return session.Receipt{}, err
	}

	receipt, err := s.writer.UpdatePrice(ctx, user, storeID, cents.Int64())
	if err != nil {
		return session.Receipt{}, fmt.Errorf("update price of store %s: %w", storeID, err)
	}
	s.logger.Info("price updated",
		zap.String("store_id", storeID),
		zap.Int64("cents", cents.Int64()),
		zap.String("tx_hash", receipt.TxHash),
	)
	return receipt, nil
}

func (s *storeService) AddStore(ctx context.Context, user session.User, cmd AddStoreCommand) (session.Receipt, error) {
	if err := s.Authorize(ctx, user); err != nil {
		return session.Receipt{}, err
	}
	draft, err := admindomain.NewStoreDraft(cmd.Name, cmd.Address, cmd.Hours, cmd.URI)
	if err != nil {
		return session.Receipt{}, err
	}

	receipt, err := s.writer.AddStore(ctx, user, draft.Name.String(), draft.Address.String(), draft.Hours.String(), draft.URI.String())
	if err != nil {
		return session.Receipt{}, fmt.Errorf("add store: %w", err)
	}
	s.logger.Info("store added", zap.String("name", draft.Name.String()), zap.String("tx_hash", receipt.TxHash))
	return receipt, nil
}

func (s *storeService) Transactions(ctx context.Context, user session.User, filter TransactionFilter) ([]admindomain.Transaction, error) {
	if err := s.Authorize(ctx, user); err != nil {
		return nil, err
	}
	if s.log == nil {
		return []admindomain.Transaction{}, nil
	}
	return s.log.Recent(ctx, filter.Wallet, filter.Limit)
}

// IsRequestError reports whether err is caused by invalid admin input.
func IsRequestError(err error) bool {
	for _, target := range []error{
		admindomain.ErrInvalidPrice, admindomain.ErrFieldRequired, admindomain.ErrFieldTooLong,
		publicdomain.ErrInvalidStoreID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
