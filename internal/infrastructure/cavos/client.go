// Package cavos is a client for the Cavos hosted wallet service: email
// sign-in, sign-up and sponsored execution of contract calls.
package cavos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// DefaultBaseURL is the public Cavos API.
const DefaultBaseURL = "https://services.cavos.xyz"

const (
	loginPath    = "/api/v1/external/auth/login"
	registerPath = "/api/v1/external/auth/register"
	executePath  = "/api/v1/external/execute"
)

var (
	// ErrMissingOrgSecret is returned when no organisation secret is configured.
	ErrMissingOrgSecret = errors.New("CAVOS_ORG_SECRET environment variable is not configured")

	// ErrMissingAppID is returned when no application id is configured.
	ErrMissingAppID = errors.New("CAVOS_APP_ID environment variable is not configured")

	// ErrMalformedResponse is returned when a success response lacks required fields.
	ErrMalformedResponse = errors.New("cavos: malformed response")
)

// APIError is a failure reported by the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("cavos: status %d: %s", e.Status, e.Message)
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	AppID      string
	OrgSecret  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Cavos API.
type Client struct {
	baseURL    string
	appID      string
	orgSecret  string
	httpClient *http.Client
}

// NewClient creates a client. Missing credentials are reported per call so
// the API can still serve read-only routes.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		appID:      strings.TrimSpace(cfg.AppID),
		orgSecret:  strings.TrimSpace(cfg.OrgSecret),
		httpClient: httpClient,
	}
}

// CheckAuthConfig reports missing credentials for sign-in and sign-up.
func (c *Client) CheckAuthConfig() error {
	if c.orgSecret == "" {
		return ErrMissingOrgSecret
	}
	if c.appID == "" {
		return ErrMissingAppID
	}
	return nil
}

// CheckExecConfig reports missing credentials for execution.
func (c *Client) CheckExecConfig() error {
	if c.appID == "" {
		return ErrMissingAppID
	}
	return nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Network  string `json:"network"`
	AppID    string `json:"app_id"`
}

type executeRequest struct {
	Address string                `json:"address"`
	Network string                `json:"network"`
	Calls   []domain.ContractCall `json:"calls"`
	AppID   string                `json:"app_id"`
}

// SignIn exchanges email credentials for a wallet session.
func (c *Client) SignIn(ctx context.Context, network, email, password string) (session.User, error) {
	if err := c.CheckAuthConfig(); err != nil {
		return session.User{}, err
	}

	body, err := c.post(ctx, loginPath, c.orgSecret, credentialsRequest{
		Email: email, Password: password, Network: network, AppID: c.appID,
	})
	if err != nil {
		return session.User{}, err
	}

	user := session.User{
		AccessToken:   first(body, "data.authData.accessToken", "data.access_token", "authData.accessToken"),
		WalletAddress: first(body, "data.wallet.address", "data.wallet_address", "wallet.address"),
		Network:       first(body, "data.wallet.network", "data.network"),
		Email:         first(body, "data.email", "email"),
	}
	if user.Network == "" {
		user.Network = network
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.AccessToken == "" || user.WalletAddress == "" {
		return session.User{}, fmt.Errorf("%w: sign-in without token or wallet", ErrMalformedResponse)
	}
	return user, nil
}

// SignUp registers a new account and its wallet.
func (c *Client) SignUp(ctx context.Context, network, email, password string) (session.Registration, error) {
	if err := c.CheckAuthConfig(); err != nil {
		return session.Registration{}, err
	}

	body, err := c.post(ctx, registerPath, c.orgSecret, credentialsRequest{
		Email: email, Password: password, Network: network, AppID: c.appID,
	})
	if err != nil {
		return session.Registration{}, err
	}

	reg := session.Registration{
		Email:         first(body, "data.email", "email"),
		WalletAddress: first(body, "data.wallet.address", "data.wallet_address", "wallet.address"),
		CreatedAt:     first(body, "data.created_at", "created_at"),
	}
	if reg.WalletAddress == "" {
		return session.Registration{}, fmt.Errorf("%w: sign-up without wallet", ErrMalformedResponse)
	}
	if reg.Email == "" {
		reg.Email = email
	}
	return reg, nil
}

// ExecuteCalls submits calls from user's wallet. The receipt carries the
// refreshed access token when the service rotates it.
func (c *Client) ExecuteCalls(ctx context.Context, user session.User, calls []domain.ContractCall) (session.Receipt, error) {
	if err := c.CheckExecConfig(); err != nil {
		return session.Receipt{}, err
	}

	body, err := c.post(ctx, executePath, user.AccessToken, executeRequest{
		Address: user.WalletAddress,
		Network: user.Network,
		Calls:   calls,
		AppID:   c.appID,
	})
	if err != nil {
		return session.Receipt{}, err
	}

	if msg := errorMessage(body); msg != "" {
		return session.Receipt{}, &APIError{Message: msg}
	}
	receipt := session.Receipt{
		TxHash:      first(body, "txHash", "data.txHash", "result.txHash", "transaction_hash"),
		AccessToken: first(body, "accessToken", "data.accessToken", "data.authData.accessToken"),
	}
	if receipt.TxHash == "" {
		return session.Receipt{}, fmt.Errorf("%w: execution without transaction hash", ErrMalformedResponse)
	}
	return receipt, nil
}

func (c *Client) post(ctx context.Context, path, bearer string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := errorMessage(body)
		if msg == "" && gjson.ValidBytes(body) {
			msg = first(body, "message")
		}
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}
	return body, nil
}

// errorMessage extracts the service's error text, which may be a string or an object.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	errField := gjson.GetBytes(body, "error")
	switch {
	case errField.Type == gjson.String && errField.String() != "":
		return errField.String()
	case errField.IsObject():
		if msg := errField.Get("message").String(); msg != "" {
			return msg
		}
		return errField.Raw
	case errField.Type == gjson.True:
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			return msg
		}
		return "Unknown error occurred"
	}
	if gjson.GetBytes(body, "success").Type == gjson.False {
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			return msg
		}
		return "Unknown error occurred"
	}
	return ""
}

func first(body []byte, paths ...string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(body, p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
