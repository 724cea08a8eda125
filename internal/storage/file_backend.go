package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"slidecast-go/internal/deck"
)

// FileBackend implements deck storage using local JSON files. Decks
// live one file per id under <base>/decks; usage counters are a single
// JSON document rewritten on change.
type FileBackend struct {
	baseDir string
	mu      sync.RWMutex
	usage   map[string]map[string]int64
}

// NewFileBackend creates a new file-based storage backend
func NewFileBackend(baseDir string) *FileBackend {
	return &FileBackend{
		baseDir: baseDir,
		usage:   make(map[string]map[string]int64),
	}
}

func (f *FileBackend) decksDir() string { return filepath.Join(f.baseDir, "decks") }
func (f *FileBackend) usagePath() string { return filepath.Join(f.baseDir, "usage.json") }
func (f *FileBackend) deckPath(id string) string {
	return filepath.Join(f.decksDir(), id+".json")
}

func (f *FileBackend) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(f.decksDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", f.decksDir(), err)
	}
	if err := f.loadUsage(); err != nil {
		return fmt.Errorf("failed to load usage data: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.saveUsageLocked()
}

func (f *FileBackend) Health(ctx context.Context) error {
	_, err := os.Stat(f.baseDir)
	return err
}

func (f *FileBackend) SaveDeck(ctx context.Context, d *deck.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if !validDeckID(d.ID) {
		return fmt.Errorf("invalid deck id %q", d.ID)
	}
	path := f.deckPath(d.ID)
	if _, err := os.Stat(path); err == nil {
		return &ErrConflict{Key: d.ID}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	return writeFileAtomic(path, data)
}

func (f *FileBackend) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	if !validDeckID(id) {
		return nil, &ErrNotFound{Key: id}
	}
	data, err := os.ReadFile(f.deckPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	var d deck.Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("corrupted deck file for %s: %w", id, err)
	}
	return &d, nil
}

func (f *FileBackend) ListDecks(ctx context.Context) ([]deck.Summary, error) {
	entries, err := os.ReadDir(f.decksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []deck.Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		d, err := f.GetDeck(ctx, id)
		if err != nil {
			// skip unreadable files rather than failing the whole listing
			continue
		}
		out = append(out, d.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *FileBackend) DeleteDeck(ctx context.Context, id string) error {
	if !validDeckID(id) {
		return &ErrNotFound{Key: id}
	}
	if err := os.Remove(f.deckPath(id)); err != nil {
		if os.IsNotExist(err) {
			return &ErrNotFound{Key: id}
		}
		return err
	}
	return nil
}

// Usage stats operations

func (f *FileBackend) IncrementUsage(ctx context.Context, key string, field string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usage[key] == nil {
		f.usage[key] = make(map[string]int64)
	}
	f.usage[key][field] += delta
	return f.saveUsageLocked()
}

func (f *FileBackend) GetUsage(ctx context.Context, key string) (map[string]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fields, ok := f.usage[key]
	if !ok {
		return map[string]int64{}, nil
	}
	out := make(map[string]int64, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (f *FileBackend) ResetUsage(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.usage, key)
	return f.saveUsageLocked()
}

func (f *FileBackend) ListUsage(ctx context.Context) (map[string]map[string]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]map[string]int64, len(f.usage))
	for key, fields := range f.usage {
		cp := make(map[string]int64, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		out[key] = cp
	}
	return out, nil
}

func (f *FileBackend) loadUsage() error {
	data, err := os.ReadFile(f.usagePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return json.Unmarshal(data, &f.usage)
}

func (f *FileBackend) saveUsageLocked() error {
	data, err := json.MarshalIndent(f.usage, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.usagePath(), data)
}

// writeFileAtomic writes via a temp file plus rename so a crash never
// leaves a half-written document behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// validDeckID rejects ids that could escape the decks directory.
func validDeckID(id string) bool {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return false
	}
	return true
}
