package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/starknet"
)

// TransactionRepository journals contract writes in MongoDB.
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new Mongo-backed write journal.
func NewTransactionRepository(db *mongo.Database, collectionName string) *TransactionRepository {
	return &TransactionRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup index used by Recent.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "wallet", Value: 1}, {Key: "submittedAt", Value: -1}},
		Options: options.Index().SetName("wallet_submitted"),
	})
	return err
}

// Record stores one write attempt.
func (r *TransactionRepository) Record(ctx context.Context, entry starknet.JournalEntry) error {
	_, err := r.collection.InsertOne(ctx, newTransactionDocument(entry))
	return err
}

// Recent returns the latest attempts, newest first, optionally for one wallet.
func (r *TransactionRepository) Recent(ctx context.Context, wallet string, limit int) ([]admindomain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	filter := bson.M{}
	if w := strings.TrimSpace(wallet); w != "" {
		filter["wallet"] = w
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]admindomain.Transaction, 0, limit)
	for cursor.Next(ctx) {
		var doc TransactionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, mapTransactionDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
