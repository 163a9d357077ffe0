package admin

import "time"

type storeCreateRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
	URI     string `json:"uri"`
}

type writeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TxHash  string `json:"txHash"`
}

type transactionResponse struct {
	Entrypoint  string    `json:"entrypoint"`
	Strategy    string    `json:"strategy"`
	Attempt     int       `json:"attempt"`
	Network     string    `json:"network"`
	Wallet      string    `json:"wallet"`
	Calldata    []string  `json:"calldata"`
	TxHash      string    `json:"txHash,omitempty"`
	Error       string    `json:"error,omitempty"`
	Succeeded   bool      `json:"succeeded"`
	SubmittedAt time.Time `json:"submittedAt"`
}
