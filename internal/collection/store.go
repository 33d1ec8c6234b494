package collection

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelog/internal/models"
	"reelog/internal/storage"
)

// Command is one element of the closed set of collection mutations.
type Command interface {
	isCommand()
}

// Add inserts an item at the front of the collection (newest first).
type Add struct {
	Item models.MediaItem
}

// Update replaces the item with a matching ID. No-op when absent.
type Update struct {
	Item models.MediaItem
}

// Remove deletes the item with a matching ID. No-op when absent.
type Remove struct {
	ID string
}

// ReplaceAll overwrites the whole collection (import, clear).
type ReplaceAll struct {
	Items []models.MediaItem
}

func (Add) isCommand()        {}
func (Update) isCommand()     {}
func (Remove) isCommand()     {}
func (ReplaceAll) isCommand() {}

// apply is the pure transition function: it never mutates its input slice.
func apply(items []models.MediaItem, cmd Command) []models.MediaItem {
	switch c := cmd.(type) {
	case Add:
		next := make([]models.MediaItem, 0, len(items)+1)
		next = append(next, c.Item)
		return append(next, items...)
	case Update:
		next := make([]models.MediaItem, len(items))
		copy(next, items)
		for i := range next {
			if next[i].ID == c.Item.ID {
				next[i] = c.Item
				break
			}
		}
		return next
	case Remove:
		next := make([]models.MediaItem, 0, len(items))
		for _, item := range items {
			if item.ID != c.ID {
				next = append(next, item)
			}
		}
		return next
	case ReplaceAll:
		next := make([]models.MediaItem, len(c.Items))
		copy(next, c.Items)
		return next
	default:
		return items
	}
}

// Subscriber receives a snapshot of the collection after every mutation.
type Subscriber func(items []models.MediaItem)

// Store is the single source of truth for the tracked collection. All
// mutations go through Dispatch and are persisted to the KV store; a failed
// write is logged and swallowed, the in-memory state stays authoritative.
type Store struct {
	mu          sync.RWMutex
	items       []models.MediaItem
	kv          storage.KV
	logger      *logrus.Logger
	subscribers []Subscriber
}

// NewStore creates a store backed by kv and loads any persisted collection.
// A missing or unreadable stored value starts the collection empty.
func NewStore(kv storage.KV, logger *logrus.Logger) *Store {
	s := &Store{kv: kv, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.kv.Get(storage.KeyCollection)
	if err != nil {
		if err != storage.ErrNotFound {
			s.logger.WithError(err).Error("Failed to load collection, starting empty")
		}
		return
	}

	var items []models.MediaItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.WithError(err).Error("Failed to parse stored collection, starting empty")
		return
	}

	s.items = items
	s.logger.WithField("items", len(items)).Info("Collection loaded")
}

// Dispatch applies a command, persists the result and notifies subscribers.
func (s *Store) Dispatch(cmd Command) {
	s.mu.Lock()
	s.items = apply(s.items, cmd)
	snapshot := make([]models.MediaItem, len(s.items))
	copy(snapshot, s.items)
	s.persist(snapshot)
	s.mu.Unlock()

	for _, fn := range s.subscribers {
		fn(snapshot)
	}
}

func (s *Store) persist(items []models.MediaItem) {
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.WithError(err).Error("Failed to serialize collection")
		return
	}
	if err := s.kv.Set(storage.KeyCollection, string(data)); err != nil {
		s.logger.WithError(err).Error("Failed to persist collection")
	}
}

// Subscribe registers a callback invoked after every applied command.
// Not safe to call concurrently with Dispatch; register during setup.
func (s *Store) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

// Items returns a snapshot copy of the collection in stored order.
func (s *Store) Items() []models.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]models.MediaItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

// Find returns the item with the given ID.
func (s *Store) Find(id string) (models.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.MediaItem{}, false
}

// FindByExternalID returns the first item tracking the given metadata id.
// Callers use this as the "already tracked" check before adding.
func (s *Store) FindByExternalID(externalID int64) (models.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ExternalID == externalID {
			return item, true
		}
	}
	return models.MediaItem{}, false
}

// NewItem builds a fresh MediaItem with a generated id and creation time.
func NewItem(externalID int64, mediaType models.MediaType, title string, posterPath, releaseDate *string, status models.Status) models.MediaItem {
	return models.MediaItem{
		ID:          uuid.NewString(),
		ExternalID:  externalID,
		Type:        mediaType,
		Title:       title,
		PosterPath:  posterPath,
		ReleaseDate: releaseDate,
		Status:      status,
		AddedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
