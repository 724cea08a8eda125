package storage

import (
	"context"

	"slidecast-go/internal/deck"
)

// Backend defines the interface for deck persistence implementations.
type Backend interface {
	// Initialize sets up the storage backend
	Initialize(ctx context.Context) error

	// Close closes the storage backend
	Close() error

	// Health checks if the storage backend is healthy
	Health(ctx context.Context) error

	// Deck operations. Decks are immutable: SaveDeck never overwrites
	// an existing id.
	SaveDeck(ctx context.Context, d *deck.Deck) error
	GetDeck(ctx context.Context, id string) (*deck.Deck, error)
	ListDecks(ctx context.Context) ([]deck.Summary, error)
	DeleteDeck(ctx context.Context, id string) error

	// Usage stats operations
	IncrementUsage(ctx context.Context, key string, field string, delta int64) error
	GetUsage(ctx context.Context, key string) (map[string]int64, error)
	ResetUsage(ctx context.Context, key string) error
	ListUsage(ctx context.Context) (map[string]map[string]int64, error)
}

// ErrNotFound is returned when a deck id is not found
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return "deck not found: " + e.Key
}

// ErrConflict is returned when saving a deck whose id already exists
type ErrConflict struct {
	Key string
}

func (e *ErrConflict) Error() string {
	return "deck already exists: " + e.Key
}
