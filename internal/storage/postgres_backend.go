package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slidecast-go/internal/deck"
	"slidecast-go/internal/migrations"

	"github.com/lib/pq"
)

// PostgresBackend implements deck storage on PostgreSQL. The full deck
// document is a JSONB payload; listing columns are denormalized so the
// index never loads image bytes.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend creates a PostgreSQL storage backend
func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &PostgresBackend{db: db}, nil
}

// Initialize pings the database and applies pending migrations.
func (p *PostgresBackend) Initialize(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return migrations.PostgresUp(p.db)
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

func (p *PostgresBackend) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresBackend) SaveDeck(ctx context.Context, d *deck.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO decks (id, topic, model, created_at, slide_count, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Topic, d.Model, d.CreatedAt, len(d.Slides), payload)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return &ErrConflict{Key: d.ID}
		}
		return err
	}
	return nil
}

func (p *PostgresBackend) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM decks WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	var d deck.Deck
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("corrupted deck %s: %w", id, err)
	}
	return &d, nil
}

func (p *PostgresBackend) ListDecks(ctx context.Context) ([]deck.Summary, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, topic, model, created_at, slide_count FROM decks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []deck.Summary
	for rows.Next() {
		var s deck.Summary
		if err := rows.Scan(&s.ID, &s.Topic, &s.Model, &s.CreatedAt, &s.SlideCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PostgresBackend) DeleteDeck(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

// Usage stats operations

func (p *PostgresBackend) IncrementUsage(ctx context.Context, key string, field string, delta int64) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO usage_stats (key, field, value) VALUES ($1, $2, $3)
		 ON CONFLICT (key, field) DO UPDATE SET value = usage_stats.value + EXCLUDED.value`,
		key, field, delta)
	return err
}

func (p *PostgresBackend) GetUsage(ctx context.Context, key string) (map[string]int64, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT field, value FROM usage_stats WHERE key = $1`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var field string
		var value int64
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		out[field] = value
	}
	return out, rows.Err()
}

func (p *PostgresBackend) ResetUsage(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM usage_stats WHERE key = $1`, key)
	return err
}

func (p *PostgresBackend) ListUsage(ctx context.Context) (map[string]map[string]int64, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key, field, value FROM usage_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]int64)
	for rows.Next() {
		var key, field string
		var value int64
		if err := rows.Scan(&key, &field, &value); err != nil {
			return nil, err
		}
		if out[key] == nil {
			out[key] = make(map[string]int64)
		}
		out[key][field] = value
	}
	return out, rows.Err()
}
