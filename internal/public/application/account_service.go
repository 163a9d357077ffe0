package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/metrics"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// touchTimeout bounds the background update_last_connected write.
const touchTimeout = 30 * time.Second

// AccountConfig wires an AccountService.
type AccountConfig struct {
	Provider AccountProvider
	Writer   LedgerWriter
	Storage  session.Storage
	Tokens   *session.Tokens
	Logger   *zap.Logger
	// Async runs fire-and-forget work. Defaults to a new goroutine.
	Async func(func())
}

type accountService struct {
	provider AccountProvider
	writer   LedgerWriter
	storage  session.Storage
	tokens   *session.Tokens
	logger   *zap.Logger
	async    func(func())
}

// NewAccountService creates the account use-cases.
func NewAccountService(cfg AccountConfig) AccountService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	async := cfg.Async
	if async == nil {
		async = func(f func()) { go f() }
	}
	return &accountService{
		provider: cfg.Provider,
		writer:   cfg.Writer,
		storage:  cfg.Storage,
		tokens:   cfg.Tokens,
		logger:   logger,
		async:    async,
	}
}

// validateCredentials checks a request in the order clients expect errors:
// missing fields, server credentials, email, password, network.
func (s *accountService) validateCredentials(cmd Credentials, signUp bool) error {
	if cmd.Email == "" || cmd.Password == "" || cmd.Network == "" {
		return ErrMissingCredentials
	}
	if err := s.provider.CheckAuthConfig(); err != nil {
		return &ConfigError{Err: err}
	}
	if !emailPattern.MatchString(cmd.Email) {
		return ErrInvalidEmail
	}
	if signUp && utf8.RuneCountInString(cmd.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !session.ValidNetwork(cmd.Network) {
		return ErrInvalidNetwork
	}
	return nil
}

func (s *accountService) SignIn(ctx context.Context, cmd Credentials) (SignedIn, error) {
	if err := s.validateCredentials(cmd, false); err != nil {
		return SignedIn{}, err
	}

	user, err := s.provider.SignIn(ctx, cmd.Network, cmd.Email, cmd.Password)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("sign_in_failed").Inc()
		return SignedIn{}, &ProviderError{Err: err}
	}
	signedIn, err := s.open(ctx, user)
	if err != nil {
		return SignedIn{}, err
	}
	metrics.SessionEvents.WithLabelValues("sign_in").Inc()
	return signedIn, nil
}

func (s *accountService) SignUp(ctx context.Context, cmd Credentials) (session.Registration, error) {
	if err := s.validateCredentials(cmd, true); err != nil {
		return session.Registration{}, err
	}

	reg, err := s.provider.SignUp(ctx, cmd.Network, cmd.Email, cmd.Password)
	if err != nil {
		return session.Registration{}, &ProviderError{Err: err}
	}
	metrics.SessionEvents.WithLabelValues("sign_up").Inc()
	return reg, nil
}

// CompleteCallback finishes a hosted login redirect and records the
// connection on the contract in the background.
func (s *accountService) CompleteCallback(ctx context.Context, userData, errorCode string) (SignedIn, error) {
	if errorCode != "" {
		return SignedIn{}, &CallbackError{Code: errorCode}
	}
	if strings.TrimSpace(userData) == "" {
		return SignedIn{}, ErrNoAuthData
	}
	userData = unescapeUserData(userData)
	if !gjson.Valid(userData) {
		return SignedIn{}, ErrMalformedCallback
	}

	parsed := gjson.Parse(userData)
	user := session.User{
		AccessToken:   parsed.Get("authData.accessToken").String(),
		WalletAddress: parsed.Get("wallet.address").String(),
		Network:       parsed.Get("wallet.network").String(),
		Email:         parsed.Get("email").String(),
	}
	if user.Network == "" {
		user.Network = session.NetworkSepolia
	}
	if user.AccessToken == "" || user.WalletAddress == "" {
		return SignedIn{}, ErrMalformedCallback
	}
	if !session.ValidNetwork(user.Network) {
		return SignedIn{}, ErrInvalidNetwork
	}

	signedIn, err := s.open(ctx, user)
	if err != nil {
		return SignedIn{}, err
	}
	metrics.SessionEvents.WithLabelValues("callback").Inc()

	s.async(func() { s.touchLastConnected(user) })
	return signedIn, nil
}

// unescapeUserData undoes the extra percent-encoding the hosted redirect
// applies. Text that is already JSON is left alone.
func unescapeUserData(raw string) string {
	if gjson.Valid(raw) {
		return raw
	}
	if unescaped, err := url.QueryUnescape(raw); err == nil && gjson.Valid(unescaped) {
		return unescaped
	}
	return raw
}

func (s *accountService) touchLastConnected(user session.User) {
	if s.writer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()

	if _, err := s.writer.TouchLastConnected(ctx, user); err != nil {
		s.logger.Warn("failed to record last connection",
			zap.String("wallet", user.WalletAddress),
			zap.Error(err),
		)
	}
}

func (s *accountService) open(ctx context.Context, user session.User) (SignedIn, error) {
	id := session.NewID()
	if err := session.Save(ctx, s.storage, id, &user); err != nil {
		return SignedIn{}, err
	}
	token, expiresAt, err := s.tokens.Issue(id, user)
	if err != nil {
		return SignedIn{}, fmt.Errorf("issue session token: %w", err)
	}
	return SignedIn{SessionID: id, Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *accountService) Resume(ctx context.Context, sessionID string) (session.User, bool, error) {
	return session.Load(ctx, s.storage, sessionID)
}

// Rotate stores the access token returned with a write receipt.
func (s *accountService) Rotate(ctx context.Context, sessionID string, user session.User, receipt session.Receipt) (session.User, error) {
	next := user.WithAccessToken(receipt.AccessToken)
	if next.AccessToken == user.AccessToken {
		return user, nil
	}
	if err := session.Save(ctx, s.storage, sessionID, &next); err != nil {
		return user, err
	}
	metrics.SessionEvents.WithLabelValues("rotate").Inc()
	return next, nil
}

func (s *accountService) SignOut(ctx context.Context, sessionID string) error {
	if err := session.Save(ctx, s.storage, sessionID, nil); err != nil {
		return err
	}
	metrics.SessionEvents.WithLabelValues("sign_out").Inc()
	return nil
}

// Execute validates and compiles a raw execute request, then submits it.
func (s *accountService) Execute(ctx context.Context, cmd ExecuteCommand) (session.Receipt, error) {
	if cmd.WalletAddress == "" || !cmd.CallsPresent || cmd.AccessToken == "" || cmd.Network == "" {
		return session.Receipt{}, ErrMissingExecFields
	}
	if err := s.provider.CheckExecConfig(); err != nil {
		return session.Receipt{}, &ConfigError{Err: err}
	}
	if !session.ValidNetwork(cmd.Network) {
		return session.Receipt{}, ErrInvalidNetwork
	}
	if !cmd.CallsIsArray {
		return session.Receipt{}, ErrCallsNotArray
	}

	calls, err := compileCalls(cmd.Calls)
	if err != nil {
		return session.Receipt{}, err
	}

	user := session.User{AccessToken: cmd.AccessToken, WalletAddress: cmd.WalletAddress, Network: cmd.Network}
	receipt, err := s.provider.ExecuteCalls(ctx, user, calls)
	if err != nil {
		return session.Receipt{}, &ProviderError{Err: err}
	}
	return receipt, nil
}

func compileCalls(inputs []CallInput) ([]domain.ContractCall, error) {
	for i, in := range inputs {
		if in.ContractAddress == "" || in.Entrypoint == "" || !in.HasCalldata {
			return nil, &InvalidCallError{Index: i}
		}
	}

	calls := make([]domain.ContractCall, 0, len(inputs))
	for i, in := range inputs {
		calldata := make([]string, 0, len(in.Calldata))
		for _, v := range in.Calldata {
			felts, err := codec.Flatten(v)
			if err != nil {
				return nil, &InvalidCallError{Index: i, Reason: err}
			}
			calldata = append(calldata, felts...)
		}
		calls = append(calls, domain.ContractCall{
			ContractAddress: in.ContractAddress,
			Entrypoint:      in.Entrypoint,
			Calldata:        calldata,
		})
	}
	return calls, nil
}

// IsRequestError reports whether err is caused by the client's input.
func IsRequestError(err error) bool {
	var callErr *InvalidCallError
	var cbErr *CallbackError
	switch {
	case errors.As(err, &callErr), errors.As(err, &cbErr):
		return true
	}
	for _, target := range []error{
		ErrMissingCredentials, ErrInvalidEmail, ErrPasswordTooShort, ErrInvalidNetwork,
		ErrMissingExecFields, ErrCallsNotArray, ErrNoAuthData, ErrMalformedCallback,
		domain.ErrInvalidStoreID, domain.ErrEmptyReport, domain.ErrReportTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
