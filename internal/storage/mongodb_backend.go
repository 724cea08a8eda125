package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slidecast-go/internal/deck"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend implements deck storage on MongoDB.
type MongoBackend struct {
	uri    string
	dbName string
	client *mongo.Client
}

type mongoDeck struct {
	ID         string     `bson:"_id"`
	Topic      string     `bson:"topic"`
	Model      string     `bson:"model"`
	CreatedAt  time.Time  `bson:"created_at"`
	SlideCount int        `bson:"slide_count"`
	Deck       *deck.Deck `bson:"deck"`
}

// NewMongoBackend creates a MongoDB storage backend. The connection is
// established in Initialize.
func NewMongoBackend(uri, dbName string) *MongoBackend {
	if dbName == "" {
		dbName = "slidecast"
	}
	return &MongoBackend{uri: uri, dbName: dbName}
}

func (m *MongoBackend) decks() *mongo.Collection {
	return m.client.Database(m.dbName).Collection("decks")
}

func (m *MongoBackend) usage() *mongo.Collection {
	return m.client.Database(m.dbName).Collection("usage_stats")
}

func (m *MongoBackend) Initialize(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	m.client = client
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	_, err = m.decks().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

func (m *MongoBackend) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoBackend) Health(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoBackend) SaveDeck(ctx context.Context, d *deck.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}
	doc := mongoDeck{
		ID:         d.ID,
		Topic:      d.Topic,
		Model:      d.Model,
		CreatedAt:  d.CreatedAt,
		SlideCount: len(d.Slides),
		Deck:       d,
	}
	_, err := m.decks().InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return &ErrConflict{Key: d.ID}
	}
	return err
}

func (m *MongoBackend) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	var doc mongoDeck
	err := m.decks().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	return doc.Deck, nil
}

func (m *MongoBackend) ListDecks(ctx context.Context) ([]deck.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"deck": 0})
	cursor, err := m.decks().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []deck.Summary
	for cursor.Next(ctx) {
		var doc mongoDeck
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, deck.Summary{
			ID:         doc.ID,
			Topic:      doc.Topic,
			Model:      doc.Model,
			CreatedAt:  doc.CreatedAt,
			SlideCount: doc.SlideCount,
		})
	}
	return out, cursor.Err()
}

func (m *MongoBackend) DeleteDeck(ctx context.Context, id string) error {
	res, err := m.decks().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

// Usage stats operations

func (m *MongoBackend) IncrementUsage(ctx context.Context, key string, field string, delta int64) error {
	_, err := m.usage().UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"fields." + field: delta}},
		options.Update().SetUpsert(true))
	return err
}

type mongoUsage struct {
	ID     string           `bson:"_id"`
	Fields map[string]int64 `bson:"fields"`
}

func (m *MongoBackend) GetUsage(ctx context.Context, key string) (map[string]int64, error) {
	var doc mongoUsage
	err := m.usage().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]int64{}, nil
		}
		return nil, err
	}
	if doc.Fields == nil {
		doc.Fields = map[string]int64{}
	}
	return doc.Fields, nil
}

func (m *MongoBackend) ResetUsage(ctx context.Context, key string) error {
	_, err := m.usage().DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoBackend) ListUsage(ctx context.Context) (map[string]map[string]int64, error) {
	cursor, err := m.usage().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]map[string]int64)
	for cursor.Next(ctx) {
		var doc mongoUsage
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Fields == nil {
			doc.Fields = map[string]int64{}
		}
		out[doc.ID] = doc.Fields
	}
	return out, cursor.Err()
}
