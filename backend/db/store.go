package db

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"iter"
	"time"

	"pdfvault/backend/vaulterr"
	"pdfvault/shared/constants"
)

// record is implemented by the entry types a Store can hold.
type record[T any] interface {
	key() string

	// assign returns a copy of the record with its id set, and its creation
	// time set if it was empty.
	assign(id string, created time.Time) T
}

// Store is an in-memory keyed collection of entries. Each Store has its own
// id space: an id minted by one Store is unknown to every other Store.
type Store[T record[T]] struct {
	name  string
	items *shardedMap[T]
	now   func() time.Time
}

func newStore[T record[T]](name string) *Store[T] {
	return &Store[T]{
		name:  name,
		items: newShardedMap[T](),
		now:   time.Now,
	}
}

// Put inserts entry and returns its id. An entry without an id gets a fresh
// random one; an entry with an id replaces whatever is stored under it.
func (s *Store[T]) Put(entry T) (string, error) {
	if id := entry.key(); len(id) > 0 {
		s.items.Store(id, entry.assign(id, s.now()))
		return id, nil
	}

	for {
		id, err := newID()
		if err != nil {
			return "", fmt.Errorf("%w: generating id: %v", vaulterr.InternalError, err)
		}

		// Ensure the id isn't already being used in the store
		if s.items.StoreIfAbsent(id, entry.assign(id, s.now())) {
			return id, nil
		}
	}
}

// Replace overwrites an existing entry in place. Unlike Put it never
// recreates an entry that was deleted in the meantime.
func (s *Store[T]) Replace(entry T) error {
	id := entry.key()
	if !s.items.StoreIfPresent(id, entry) {
		return fmt.Errorf("%w: %s file %q", vaulterr.NotFoundError, s.name, id)
	}

	return nil
}

func (s *Store[T]) Get(id string) (T, error) {
	entry, ok := s.items.Load(id)
	if !ok {
		var empty T
		return empty, fmt.Errorf("%w: %s file %q", vaulterr.NotFoundError, s.name, id)
	}

	return entry, nil
}

func (s *Store[T]) Delete(id string) error {
	if !s.items.Delete(id) {
		return fmt.Errorf("%w: %s file %q", vaulterr.NotFoundError, s.name, id)
	}

	return nil
}

func (s *Store[T]) Exists(id string) bool {
	_, ok := s.items.Load(id)
	return ok
}

// List returns a sequence of the entries accepted by match (all entries if
// match is nil). The sequence can be ranged over repeatedly; each pass
// re-reads the current contents.
func (s *Store[T]) List(match func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, entry := range s.items.All() {
			if match != nil && !match(entry) {
				continue
			}

			if !yield(entry) {
				return
			}
		}
	}
}

func (s *Store[T]) Len() int {
	return s.items.Len()
}

func newID() (string, error) {
	b := make([]byte, constants.FileIDSize)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
