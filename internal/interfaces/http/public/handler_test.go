package public

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
	publicdomain "github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) SignIn(ctx context.Context, cmd publicapp.Credentials) (publicapp.SignedIn, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(publicapp.SignedIn), args.Error(1)
}

func (m *mockAccounts) SignUp(ctx context.Context, cmd publicapp.Credentials) (session.Registration, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(session.Registration), args.Error(1)
}

func (m *mockAccounts) CompleteCallback(ctx context.Context, userData, errorCode string) (publicapp.SignedIn, error) {
	args := m.Called(ctx, userData, errorCode)
	return args.Get(0).(publicapp.SignedIn), args.Error(1)
}

func (m *mockAccounts) Resume(ctx context.Context, sessionID string) (session.User, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(session.User), args.Bool(1), args.Error(2)
}

func (m *mockAccounts) Rotate(ctx context.Context, sessionID string, user session.User, receipt session.Receipt) (session.User, error) {
	args := m.Called(ctx, sessionID, user, receipt)
	return args.Get(0).(session.User), args.Error(1)
}

func (m *mockAccounts) SignOut(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockAccounts) Execute(ctx context.Context, cmd publicapp.ExecuteCommand) (session.Receipt, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(session.Receipt), args.Error(1)
}

type mockStores struct{ mock.Mock }

func (m *mockStores) Ranked(ctx context.Context, query publicapp.RankQuery) ([]publicdomain.RankedStore, error) {
	args := m.Called(ctx, query)
	ranked, _ := args.Get(0).([]publicdomain.RankedStore)
	return ranked, args.Error(1)
}

func (m *mockStores) Detail(ctx context.Context, network, storeID, wallet string) (publicapp.StoreDetailView, error) {
	args := m.Called(ctx, network, storeID, wallet)
	return args.Get(0).(publicapp.StoreDetailView), args.Error(1)
}

func (m *mockStores) Preview(ctx context.Context, network string) []publicdomain.PreviewStore {
	preview, _ := m.Called(ctx, network).Get(0).([]publicdomain.PreviewStore)
	return preview
}

func (m *mockStores) PriceHistory(ctx context.Context, network, storeID string) ([]publicdomain.PriceDisplay, error) {
	args := m.Called(ctx, network, storeID)
	history, _ := args.Get(0).([]publicdomain.PriceDisplay)
	return history, args.Error(1)
}

func (m *mockStores) IsAdmin(ctx context.Context, user session.User) bool {
	return m.Called(ctx, user).Bool(0)
}

type mockFeedback struct{ mock.Mock }

func (m *mockFeedback) GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error) {
	args := m.Called(ctx, user, storeID)
	return args.Get(0).(session.Receipt), args.Error(1)
}

func (m *mockFeedback) SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error) {
	args := m.Called(ctx, user, storeID, description)
	return args.Get(0).(session.Receipt), args.Error(1)
}

var signedInUser = session.User{AccessToken: "tok", WalletAddress: "0xabc", Network: session.NetworkSepolia}

type fixture struct {
	router   chi.Router
	accounts *mockAccounts
	stores   *mockStores
	feedback *mockFeedback
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{accounts: &mockAccounts{}, stores: &mockStores{}, feedback: &mockFeedback{}}
	h := NewHandler(Config{
		Logger:         zaptest.NewLogger(t),
		Accounts:       f.accounts,
		StoreQueries:   f.stores,
		Feedback:       f.feedback,
		DefaultNetwork: session.NetworkSepolia,
	})

	fakeAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := common.ContextWithPrincipal(r.Context(), common.Principal{SessionID: "sid", User: signedInUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) { h.Register(r, fakeAuth) })
	h.RegisterCallback(r)
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authed {
		req.Header.Set("Authorization", "Bearer test")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSignInStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   map[string]any
	}{
		{name: "validation", err: publicapp.ErrInvalidEmail, status: http.StatusBadRequest, body: map[string]any{"error": "Invalid email format"}},
		{name: "network", err: publicapp.ErrInvalidNetwork, status: http.StatusBadRequest, body: map[string]any{"error": "Invalid network. Must be one of: sepolia, mainnet"}},
		{name: "config", err: &publicapp.ConfigError{Err: errors.New("CAVOS_ORG_SECRET environment variable is not configured")}, status: http.StatusInternalServerError, body: map[string]any{"error": "CAVOS_ORG_SECRET environment variable is not configured"}},
		{name: "provider", err: &publicapp.ProviderError{Err: errors.New("Invalid credentials")}, status: http.StatusUnauthorized, body: map[string]any{"error": "Login failed", "details": "Invalid credentials"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts.On("SignIn", mock.Anything, publicapp.Credentials{Email: "a@b.co", Password: "pw", Network: "polygon"}).
				Return(publicapp.SignedIn{}, tt.err)

			rec := f.do(http.MethodPost, "/api/v1/auth/signIn", `{"email":"a@b.co","password":"pw","network":"polygon"}`, false)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, decode(t, rec))
		})
	}
}

func TestSignInSuccess(t *testing.T) {
	f := newFixture(t)
	expires := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.accounts.On("SignIn", mock.Anything, mock.Anything).Return(publicapp.SignedIn{
		SessionID: "sid", Token: "jwt", ExpiresAt: expires,
		User: session.User{AccessToken: "tok", WalletAddress: "0xabc", Network: "sepolia", Email: "a@b.co"},
	}, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/signIn", `{"email":"a@b.co","password":"pw","network":"sepolia"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "tok", body["access_token"])
	assert.Equal(t, "0xabc", body["wallet_address"])
	assert.Equal(t, "jwt", body["session_token"])
	assert.Equal(t, "2025-01-02T03:04:05Z", body["expires_at"])
}

func TestSignInRejectsInvalidJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/v1/auth/signIn", `{"email":`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.accounts.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
}

func TestSignUpProviderFailureIs500(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("SignUp", mock.Anything, mock.Anything).Return(session.Registration{}, &publicapp.ProviderError{Err: errors.New("Email taken")})

	rec := f.do(http.MethodPost, "/api/v1/auth/signUp", `{"email":"a@b.co","password":"longpassword","network":"sepolia"}`, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": "Registration failed", "details": "Email taken"}, decode(t, rec))
}

func TestExecuteBuildsCommand(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("Execute", mock.Anything, mock.MatchedBy(func(cmd publicapp.ExecuteCommand) bool {
		if cmd.WalletAddress != "0xabc" || !cmd.CallsPresent || !cmd.CallsIsArray || len(cmd.Calls) != 2 {
			return false
		}
		first, second := cmd.Calls[0], cmd.Calls[1]
		return first.Entrypoint == "give_thanks" && first.HasCalldata && len(first.Calldata) == 1 &&
			codec.ShapeOf(first.Calldata[0]) == codec.ShapePlain &&
			second.Entrypoint == "update_last_connected" && second.HasCalldata && len(second.Calldata) == 0
	})).Return(session.Receipt{TxHash: "0xfeed", AccessToken: "tok2"}, nil)

	rec := f.do(http.MethodPost, "/api/v1/execute", `{
		"walletAddress": "0xabc", "accessToken": "tok", "network": "sepolia",
		"calls": [
			{"contractAddress": "0x1", "entrypoint": "give_thanks", "calldata": ["3"]},
			{"contractAddress": "0x1", "entrypoint": "update_last_connected", "calldata": []}
		]
	}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Transaction executed successfully", body["message"])
	assert.Equal(t, map[string]any{"txHash": "0xfeed", "accessToken": "tok2"}, body["data"])
}

func TestExecuteShapeFlags(t *testing.T) {
	tests := map[string]struct {
		body    string
		present bool
		array   bool
	}{
		"missing":   {body: `{"walletAddress":"0xabc"}`},
		"null":      {body: `{"calls":null}`},
		"object":    {body: `{"calls":{"a":1}}`, present: true},
		"empty arr": {body: `{"calls":[]}`, present: true, array: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.accounts.On("Execute", mock.Anything, mock.MatchedBy(func(cmd publicapp.ExecuteCommand) bool {
				return cmd.CallsPresent == tt.present && cmd.CallsIsArray == tt.array
			})).Return(session.Receipt{}, publicapp.ErrMissingExecFields)

			rec := f.do(http.MethodPost, "/api/v1/execute", tt.body, false)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			f.accounts.AssertExpectations(t)
		})
	}
}

func TestExecuteFailure(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("Execute", mock.Anything, mock.Anything).Return(session.Receipt{}, &publicapp.ProviderError{Err: errors.New("Unknown error occurred")})

	rec := f.do(http.MethodPost, "/api/v1/execute", `{"calls":[]}`, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": "Transaction failed", "details": "Unknown error occurred"}, decode(t, rec))
}

func TestCallback(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("CompleteCallback", mock.Anything, `{"a":1}`, "").Return(publicapp.SignedIn{Token: "jwt", User: signedInUser}, nil)
	f.accounts.On("CompleteCallback", mock.Anything, "", "denied").Return(publicapp.SignedIn{}, &publicapp.CallbackError{Code: "denied"})

	rec := f.do(http.MethodGet, "/auth/callback?user_data=%7B%22a%22%3A1%7D", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jwt", decode(t, rec)["session_token"])

	rec = f.do(http.MethodGet, "/auth/callback?error=denied", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Authentication failed: denied", decode(t, rec)["error"])
}

func TestStoreRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{"/api/v1/stores", "/api/v1/stores/1", "/api/v1/stores/1/prices", "/api/v1/auth/me"} {
		rec := f.do(http.MethodGet, target, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestStoreListParsesQuery(t *testing.T) {
	f := newFixture(t)
	distance := 1.5
	f.stores.On("Ranked", mock.Anything, mock.MatchedBy(func(q publicapp.RankQuery) bool {
		return q.Network == "sepolia" && q.Sort == publicdomain.SortByDistance && q.Origin != nil && q.Origin.Lat == -34.5
	})).Return([]publicdomain.RankedStore{{
		StoreDetails: publicdomain.StoreDetails{Store: publicdomain.Store{ID: "1", Name: "Dia", URI: "abc"}},
		Price:        publicdomain.PriceDisplay{StoreID: "1", PriceInCents: 1500000, FormattedPrice: "$15.000"},
		DistanceKm:   &distance,
	}}, nil)

	rec := f.do(http.MethodGet, "/api/v1/stores?sort=distance&lat=-34.5&lng=-58.9", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	stores := decode(t, rec)["stores"].([]any)
	require.Len(t, stores, 1)
	first := stores[0].(map[string]any)
	assert.Equal(t, "Dia", first["name"])
	assert.Equal(t, "https://maps.app.goo.gl/abc", first["maps_url"])
	assert.Equal(t, 1.5, first["distance_km"])
	assert.Equal(t, "$15.000", first["price"].(map[string]any)["formatted_price"])
}

func TestStoreListRejectsBadQuery(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/stores?sort=name", "", true).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/stores?lat=abc&lng=1", "", true).Code)
	f.stores.AssertNotCalled(t, "Ranked", mock.Anything, mock.Anything)
}

func TestPreviewDefaultsNetwork(t *testing.T) {
	f := newFixture(t)
	f.stores.On("Preview", mock.Anything, "sepolia").Return([]publicdomain.PreviewStore{})

	rec := f.do(http.MethodGet, "/api/v1/stores/preview", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["stores"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/stores/preview?network=polygon", "", false).Code)
}

func TestReportComposesReasonAndRotatesToken(t *testing.T) {
	f := newFixture(t)
	receipt := session.Receipt{TxHash: "0x9", AccessToken: "fresh"}
	f.feedback.On("SubmitReport", mock.Anything, signedInUser, "7", "Otro: cerrado").Return(receipt, nil)
	f.accounts.On("Rotate", mock.Anything, "sid", signedInUser, receipt).Return(signedInUser.WithAccessToken("fresh"), nil)

	rec := f.do(http.MethodPost, "/api/v1/stores/7/reports", `{"reason":"Otro","details":"cerrado"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	f.accounts.AssertExpectations(t)
}

func TestReportValidationIs400(t *testing.T) {
	f := newFixture(t)
	f.feedback.On("SubmitReport", mock.Anything, signedInUser, "7", "").Return(session.Receipt{}, publicdomain.ErrEmptyReport)

	rec := f.do(http.MethodPost, "/api/v1/stores/7/reports", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.accounts.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.stores.On("IsAdmin", mock.Anything, signedInUser).Return(true)

	rec := f.do(http.MethodGet, "/api/v1/auth/me", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_admin"])
}
