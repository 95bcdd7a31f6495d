package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmakart/cart-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a pooled connection and verifies it with a ping before
// handing the database back, so a bad URI fails at startup rather than on
// the first cart read.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(database), nil
}

type cartDocument struct {
	ID        string            `bson:"_id"`
	Items     []domain.CartLine `bson:"items"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// MongoSnapshotStore persists one cart document per cart id.
type MongoSnapshotStore struct {
	collection *mongo.Collection
}

func NewMongoSnapshotStore(db *mongo.Database) *MongoSnapshotStore {
	return &MongoSnapshotStore{collection: db.Collection("carts")}
}

func (m *MongoSnapshotStore) Load(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": cartID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}
	return doc.Items, nil
}

func (m *MongoSnapshotStore) Save(ctx context.Context, cartID string, lines []domain.CartLine) error {
	update := bson.M{"$set": bson.M{
		"items":      lines,
		"updated_at": time.Now(),
	}}

	opts := options.Update().SetUpsert(true)
	_, err := m.collection.UpdateOne(ctx, bson.M{"_id": cartID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart snapshot: %w", err)
	}
	return nil
}

func (m *MongoSnapshotStore) Delete(ctx context.Context, cartID string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": cartID}); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}
