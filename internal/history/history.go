// Package history keeps the newest-first log of past evaluations and mirrors
// it into a storage.KV after every change.
package history

import (
	"context"
	"encoding/json"
	"sync"

	"go-chi-calculator/internal/storage"

	"go.uber.org/zap"
)

// StorageKey is the KV key the serialized history lives under.
const StorageKey = "calc_history"

// DefaultLimit caps the history when no explicit limit is configured.
const DefaultLimit = 100

// Item is one evaluation record.
type Item struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  int64  `json:"ts"` // epoch milliseconds
}

// Store is an ordered, newest-first sequence of Items.
// A Store without a KV backend lives only in memory.
type Store struct {
	mu     sync.RWMutex
	items  []Item
	kv     storage.KV
	limit  int
	logger *zap.Logger
}

type Option func(*Store)

// WithLimit caps the number of retained items. Zero or a negative value
// disables the cap.
func WithLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty store backed by kv (which may be nil).
// Call Load to pull previously persisted items.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		limit:  DefaultLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory items with whatever the backend holds.
// Missing, unreadable or malformed data leaves the store empty.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if s.kv == nil {
		return
	}

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("history load failed", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding malformed history", zap.Error(err))
		return
	}

	s.items = s.trim(items)
	s.logger.Debug("history loaded", zap.Int("items", len(s.items)))
}

// Append puts item at the front and drops the oldest items beyond the limit.
func (s *Store) Append(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.items)+1)
	items = append(items, item)
	items = append(items, s.items...)
	s.items = s.trim(items)

	s.persist(ctx)
}

// Clear removes every item.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the history, newest first.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Get looks an item up by id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (s *Store) trim(items []Item) []Item {
	if s.limit > 0 && len(items) > s.limit {
		return items[:s.limit]
	}
	return items
}

// persist writes the full sequence. Failures are logged and otherwise
// ignored: the in-memory copy stays authoritative. The write outlives a
// cancelled ctx so memory and storage never drift apart. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}

	items := s.items
	if items == nil {
		items = []Item{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("history encode failed", zap.Error(err))
		return
	}

	if err := s.kv.Set(context.WithoutCancel(ctx), StorageKey, string(b)); err != nil {
		s.logger.Warn("history persist failed", zap.Error(err))
	}
}
