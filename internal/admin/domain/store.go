package domain

import "time"

// StoreDraft is a store about to be registered on the contract.
type StoreDraft struct {
	Name    ShortText
	Address ShortText
	Hours   ShortText
	URI     ShortText
}

// NewStoreDraft validates the fields of a new store.
func NewStoreDraft(name, address, hours, uri string) (StoreDraft, error) {
	n, err := NewShortText("name", name, true)
	if err != nil {
		return StoreDraft{}, err
	}
	a, err := NewShortText("address", address, true)
	if err != nil {
		return StoreDraft{}, err
	}
	h, err := NewShortText("hours", hours, false)
	if err != nil {
		return StoreDraft{}, err
	}
	u, err := NewShortText("uri", uri, false)
	if err != nil {
		return StoreDraft{}, err
	}
	return StoreDraft{Name: n, Address: a, Hours: h, URI: u}, nil
}

// Transaction is one journaled write attempt.
type Transaction struct {
	Entrypoint  string
	Strategy    string
	Attempt     int
	Network     string
	Wallet      string
	Calldata    []string
	TxHash      string
	Error       string
	SubmittedAt time.Time
}

// Succeeded reports whether the attempt produced a transaction hash.
func (t Transaction) Succeeded() bool {
	return t.TxHash != "" && t.Error == ""
}
