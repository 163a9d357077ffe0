package common

import "time"

const (
	// MaxRequestBody limits JSON request bodies.
	MaxRequestBody = 1 << 20
	// ReadTimeout bounds handlers that only read the contract.
	ReadTimeout = 20 * time.Second
	// WriteTimeout bounds handlers that submit a transaction.
	WriteTimeout = 60 * time.Second
)
