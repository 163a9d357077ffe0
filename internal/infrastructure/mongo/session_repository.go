package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// SessionRepository implements session.Storage using MongoDB. Records expire
// through a TTL index on expiresAt.
type SessionRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewSessionRepository creates a new Mongo-backed session store.
func NewSessionRepository(db *mongo.Database, collectionName string, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{
		collection: db.Collection(collectionName),
		ttl:        ttl,
		now:        time.Now,
	}
}

// EnsureIndexes creates the expiry index.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("session_expiry"),
	})
	return err
}

func (r *SessionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	filter := bson.M{"_id": key, "expiresAt": bson.M{"$gt": r.now().UTC()}}

	var doc SessionDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Payload, nil
}

func (r *SessionRepository) Put(ctx context.Context, key string, value []byte) error {
	now := r.now().UTC()
	update := bson.M{
		"$set": bson.M{
			"payload":   value,
			"updatedAt": now,
			"expiresAt": now.Add(r.ttl),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts)
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}
