package application

import (
	"errors"
	"fmt"
)

// Request errors. Their text is returned to clients verbatim.
var (
	ErrMissingCredentials = errors.New("Missing required fields: email, password, network")
	ErrInvalidEmail       = errors.New("Invalid email format")
	ErrPasswordTooShort   = errors.New("Password must be at least 8 characters long")
	ErrInvalidNetwork     = errors.New("Invalid network. Must be one of: sepolia, mainnet")
	ErrMissingExecFields  = errors.New("Missing required fields: walletAddress, calls, accessToken, network")
	ErrCallsNotArray      = errors.New("Calls must be an array")
	ErrNoAuthData         = errors.New("No authentication data received")
	ErrMalformedCallback  = errors.New("An error occurred during authentication")
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

// ConfigError reports a missing server-side credential.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderError wraps a failure of the hosted wallet service.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// InvalidCallError reports a malformed call in an execute request.
type InvalidCallError struct {
	Index  int
	Reason error
}

func (e *InvalidCallError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("Invalid calldata at index %d: %v", e.Index, e.Reason)
	}
	return fmt.Sprintf("Invalid call at index %d. Must have contractAddress, entrypoint, and calldata", e.Index)
}

func (e *InvalidCallError) Unwrap() error { return e.Reason }

// CallbackError reports an error code returned by the hosted login page.
type CallbackError struct {
	Code string
}

func (e *CallbackError) Error() string {
	return "Authentication failed: " + e.Code
}
