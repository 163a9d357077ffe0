package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/starknet"
)

// SessionDocument is a stored session record.
type SessionDocument struct {
	ID        string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// TransactionDocument records one write attempt sent to the execution service.
type TransactionDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Entrypoint  string             `bson:"entrypoint"`
	Strategy    string             `bson:"strategy"`
	Attempt     int                `bson:"attempt"`
	Network     string             `bson:"network"`
	Wallet      string             `bson:"wallet"`
	Calldata    []string           `bson:"calldata"`
	TxHash      string             `bson:"txHash,omitempty"`
	Error       string             `bson:"error,omitempty"`
	SubmittedAt time.Time          `bson:"submittedAt"`
}

func newTransactionDocument(entry starknet.JournalEntry) TransactionDocument {
	calldata := entry.Calldata
	if calldata == nil {
		calldata = []string{}
	}
	return TransactionDocument{
		Entrypoint:  entry.Entrypoint,
		Strategy:    entry.Strategy,
		Attempt:     entry.Attempt,
		Network:     entry.Network,
		Wallet:      entry.Wallet,
		Calldata:    calldata,
		TxHash:      entry.TxHash,
		Error:       entry.Error,
		SubmittedAt: entry.SubmittedAt,
	}
}

func mapTransactionDocument(doc TransactionDocument) admindomain.Transaction {
	return admindomain.Transaction{
		Entrypoint:  doc.Entrypoint,
		Strategy:    doc.Strategy,
		Attempt:     doc.Attempt,
		Network:     doc.Network,
		Wallet:      doc.Wallet,
		Calldata:    doc.Calldata,
		TxHash:      doc.TxHash,
		Error:       doc.Error,
		SubmittedAt: doc.SubmittedAt,
	}
}
