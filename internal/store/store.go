// Package store keeps the saved drawings in memory and mirrors every change
// to a single JSON-encoded entry in a key-value backend.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

type Store struct {
	kv       KV
	key      string
	log      *slog.Logger
	mu       sync.RWMutex
	drawings []Drawing
}

func New(kv KV, key string) *Store {
	return &Store{
		kv:  kv,
		key: key,
		log: slog.With("component", "store"),
	}
}

// Load replaces the in-memory collection with the persisted one. An absent
// entry or malformed JSON yields an empty collection; only backend read
// failures are returned.
func (s *Store) Load() error {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return fmt.Errorf("load drawings: %w", err)
	}

	var loaded []Drawing
	if ok {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.log.Warn("stored drawings are malformed, starting empty", "key", s.key, "err", err)
			loaded = nil
		}
	}
	loaded = dedupe(loaded)

	s.mu.Lock()
	s.drawings = loaded
	s.mu.Unlock()

	s.log.Info("drawings loaded", "count", len(loaded))
	return nil
}

// dedupe keeps the last record for each id, at the position of the first.
func dedupe(in []Drawing) []Drawing {
	out := make([]Drawing, 0, len(in))
	index := make(map[int64]int, len(in))
	for _, d := range in {
		if i, seen := index[d.ID]; seen {
			out[i] = d
			continue
		}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	return out
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []Drawing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Drawing, len(s.drawings))
	copy(out, s.drawings)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drawings)
}

func (s *Store) Get(id int64) (Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.drawings[i], nil
	}
	return Drawing{}, fmt.Errorf("get %d: %w", id, ErrNotFound)
}

// MaxID returns the largest stored id, or 0 when empty.
func (s *Store) MaxID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, d := range s.drawings {
		if d.ID > max {
			max = d.ID
		}
	}
	return max
}

// Save inserts d, or replaces the record with the same id in place, then
// rewrites the persisted entry. It returns the new collection size. The
// in-memory collection is only updated once the write succeeds.
func (s *Store) Save(d Drawing) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Drawing, len(s.drawings), len(s.drawings)+1)
	copy(next, s.drawings)
	if i := s.indexOf(d.ID); i >= 0 {
		next[i] = d
	} else {
		next = append(next, d)
	}

	if err := s.persist(next); err != nil {
		return len(s.drawings), err
	}
	s.drawings = next
	s.log.Info("drawing saved", "id", d.ID, "total", len(next))
	return len(next), nil
}

// Delete removes the record with id. Deleting an unknown id is a no-op and
// does not touch the backend.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]Drawing, 0, len(s.drawings)-1)
	next = append(next, s.drawings[:i]...)
	next = append(next, s.drawings[i+1:]...)

	if err := s.persist(next); err != nil {
		return err
	}
	s.drawings = next
	s.log.Info("drawing deleted", "id", id, "total", len(next))
	return nil
}

func (s *Store) indexOf(id int64) int {
	for i, d := range s.drawings {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(drawings []Drawing) error {
	data, err := json.Marshal(drawings)
	if err != nil {
		return fmt.Errorf("encode drawings: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		s.log.Error("persist drawings failed", "err", err)
		return fmt.Errorf("persist drawings: %w", err)
	}
	return nil
}
