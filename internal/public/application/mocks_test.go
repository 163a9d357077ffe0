package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type mockReader struct{ mock.Mock }

func (m *mockReader) ListStores(ctx context.Context, network string) ([]domain.Store, error) {
	args := m.Called(ctx, network)
	stores, _ := args.Get(0).([]domain.Store)
	return stores, args.Error(1)
}

func (m *mockReader) ListCurrentPrices(ctx context.Context, network string) ([]domain.StorePrice, error) {
	args := m.Called(ctx, network)
	prices, _ := args.Get(0).([]domain.StorePrice)
	return prices, args.Error(1)
}

func (m *mockReader) GetPriceHistory(ctx context.Context, network, storeID string) ([]domain.Price, error) {
	args := m.Called(ctx, network, storeID)
	history, _ := args.Get(0).([]domain.Price)
	return history, args.Error(1)
}

func (m *mockReader) HasUserThanked(ctx context.Context, network, storeID, wallet string) (bool, error) {
	args := m.Called(ctx, network, storeID, wallet)
	return args.Bool(0), args.Error(1)
}

func (m *mockReader) IsAdmin(ctx context.Context, network, wallet string) bool {
	return m.Called(ctx, network, wallet).Bool(0)
}

func (m *mockReader) GetStoreWithPrice(ctx context.Context, network, storeID string) (domain.StoreDetails, error) {
	args := m.Called(ctx, network, storeID)
	details, _ := args.Get(0).(domain.StoreDetails)
	return details, args.Error(1)
}

func (m *mockReader) ListStoresWithPrices(ctx context.Context, network string) ([]domain.StoreDetails, error) {
	args := m.Called(ctx, network)
	details, _ := args.Get(0).([]domain.StoreDetails)
	return details, args.Error(1)
}

type mockWriter struct{ mock.Mock }

func (m *mockWriter) GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error) {
	args := m.Called(ctx, user, storeID)
	return args.Get(0).(session.Receipt), args.Error(1)
}

func (m *mockWriter) SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error) {
	args := m.Called(ctx, user, storeID, description)
	return args.Get(0).(session.Receipt), args.Error(1)
}

func (m *mockWriter) TouchLastConnected(ctx context.Context, user session.User) (session.Receipt, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(session.Receipt), args.Error(1)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) CheckAuthConfig() error { return m.Called().Error(0) }
func (m *mockProvider) CheckExecConfig() error { return m.Called().Error(0) }

func (m *mockProvider) SignIn(ctx context.Context, network, email, password string) (session.User, error) {
	args := m.Called(ctx, network, email, password)
	return args.Get(0).(session.User), args.Error(1)
}

func (m *mockProvider) SignUp(ctx context.Context, network, email, password string) (session.Registration, error) {
	args := m.Called(ctx, network, email, password)
	return args.Get(0).(session.Registration), args.Error(1)
}

func (m *mockProvider) ExecuteCalls(ctx context.Context, user session.User, calls []domain.ContractCall) (session.Receipt, error) {
	args := m.Called(ctx, user, calls)
	return args.Get(0).(session.Receipt), args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Locate(ctx context.Context, store domain.Store) (domain.Coordinates, bool, error) {
	args := m.Called(ctx, store)
	return args.Get(0).(domain.Coordinates), args.Bool(1), args.Error(2)
}
