package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	adminapp "github.com/fernetbarato/fernet-barato/api/internal/admin/application"
	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type mockStoreService struct{ mock.Mock }

func (m *mockStoreService) Authorize(ctx context.Context, user session.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockStoreService) UpdatePrice(ctx context.Context, user session.User, cmd adminapp.UpdatePriceCommand) (session.Receipt, error) {
	args := m.Called(ctx, user, cmd)
	return args.Get(0).(session.Receipt), args.Error(1)
}

func (m *mockStoreService) AddStore(ctx context.Context, user session.User, cmd adminapp.AddStoreCommand) (session.Receipt, error) {
	args := m.Called(ctx, user, cmd)
	return args.Get(0).(session.Receipt), args.Error(1)
}

func (m *mockStoreService) Transactions(ctx context.Context, user session.User, filter adminapp.TransactionFilter) ([]admindomain.Transaction, error) {
	args := m.Called(ctx, user, filter)
	txs, _ := args.Get(0).([]admindomain.Transaction)
	return txs, args.Error(1)
}

type mockRotator struct{ mock.Mock }

func (m *mockRotator) Rotate(ctx context.Context, sessionID string, user session.User, receipt session.Receipt) (session.User, error) {
	args := m.Called(ctx, sessionID, user, receipt)
	return args.Get(0).(session.User), args.Error(1)
}

var adminUser = session.User{AccessToken: "tok", WalletAddress: "0xadmin", Network: session.NetworkSepolia}

func newRouter(t *testing.T, svc *mockStoreService, rotator *mockRotator) chi.Router {
	h := NewHandler(Config{Logger: zaptest.NewLogger(t), StoreService: svc, Sessions: rotator})
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := common.ContextWithPrincipal(r.Context(), common.Principal{SessionID: "sid", User: adminUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) { h.Register(r, auth) })
	return r
}

func serve(r chi.Router, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestNonAdminIsForbidden(t *testing.T) {
	svc := &mockStoreService{}
	svc.On("Authorize", mock.Anything, adminUser).Return(adminapp.ErrForbidden)
	r := newRouter(t, svc, &mockRotator{})

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/admin/stores"},
		{http.MethodPost, "/admin/stores/1/price"},
		{http.MethodGet, "/admin/transactions"},
	} {
		rec := serve(r, tc.method, tc.target, `{}`)
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.target)
	}
	svc.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPriceUpdateAcceptsNumberOrString(t *testing.T) {
	for _, body := range []string{`{"price":15500.5}`, `{"price":"15500.5"}`} {
		svc := &mockStoreService{}
		rotator := &mockRotator{}
		receipt := session.Receipt{TxHash: "0x1", AccessToken: "fresh"}
		svc.On("Authorize", mock.Anything, adminUser).Return(nil)
		svc.On("UpdatePrice", mock.Anything, adminUser, adminapp.UpdatePriceCommand{StoreID: "4", Price: "15500.5"}).Return(receipt, nil)
		rotator.On("Rotate", mock.Anything, "sid", adminUser, receipt).Return(adminUser, nil)

		rec := serve(newRouter(t, svc, rotator), http.MethodPost, "/admin/stores/4/price", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		rotator.AssertExpectations(t)
	}
}

func TestPriceUpdateErrors(t *testing.T) {
	svc := &mockStoreService{}
	svc.On("Authorize", mock.Anything, adminUser).Return(nil)
	svc.On("UpdatePrice", mock.Anything, adminUser, adminapp.UpdatePriceCommand{StoreID: "4", Price: "0"}).
		Return(session.Receipt{}, admindomain.ErrInvalidPrice)
	svc.On("UpdatePrice", mock.Anything, adminUser, adminapp.UpdatePriceCommand{StoreID: "4", Price: "10"}).
		Return(session.Receipt{}, errors.New("execution reverted"))
	r := newRouter(t, svc, &mockRotator{})

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/admin/stores/4/price", `{"price":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/admin/stores/4/price", `not json`).Code)

	rec := serve(r, http.MethodPost, "/admin/stores/4/price", `{"price":10}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Transaction failed", body["error"])
}

func TestStoreCreate(t *testing.T) {
	svc := &mockStoreService{}
	rotator := &mockRotator{}
	svc.On("Authorize", mock.Anything, adminUser).Return(nil)
	svc.On("AddStore", mock.Anything, adminUser, adminapp.AddStoreCommand{Name: "Dia", Address: "Calle 1"}).
		Return(session.Receipt{TxHash: "0x2"}, nil)
	rotator.On("Rotate", mock.Anything, "sid", adminUser, mock.Anything).Return(adminUser, nil)

	rec := serve(newRouter(t, svc, rotator), http.MethodPost, "/admin/stores", `{"name":"Dia","address":"Calle 1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"txHash":"0x2"`)
}

func TestTransactionList(t *testing.T) {
	svc := &mockStoreService{}
	svc.On("Authorize", mock.Anything, adminUser).Return(nil)
	svc.On("Transactions", mock.Anything, adminUser, adminapp.TransactionFilter{Wallet: "0xabc", Limit: 20}).
		Return([]admindomain.Transaction{{Entrypoint: "update_price", Strategy: "plain", Attempt: 2, TxHash: "0x3"}}, nil)

	rec := serve(newRouter(t, svc, &mockRotator{}), http.MethodGet, "/admin/transactions?wallet=0xabc&limit=-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []transactionResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.True(t, body.Items[0].Succeeded)
	assert.Equal(t, []string{}, body.Items[0].Calldata)
}
