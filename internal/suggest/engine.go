package suggest

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"reelog/internal/models"
	"reelog/internal/storage"
)

// lockDuration is how long a pick stays fixed once made.
const lockDuration = 24 * time.Hour

var (
	// ErrNoCandidates means no unwatched movie exists to pick from.
	ErrNoCandidates = errors.New("suggest: no candidates")
	// ErrNoAlternatives means a reroll found nothing besides the current pick.
	ErrNoAlternatives = errors.New("suggest: no alternatives")
	// ErrNotLocked means a reroll was requested without an active pick.
	ErrNotLocked = errors.New("suggest: no active suggestion")
	// ErrRerollUsed means the single allowed reroll was already spent.
	ErrRerollUsed = errors.New("suggest: reroll already used")
)

// Clock supplies wall-clock time; injected so tests can move time forward.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// Picker returns a uniform random index in [0, n). Injected for tests.
type Picker func(n int) int

// ItemSource is the slice of the collection store the engine needs.
type ItemSource interface {
	Items() []models.MediaItem
	Find(id string) (models.MediaItem, bool)
}

// Result is the outcome of a suggest or reroll call.
type Result struct {
	Item   models.MediaItem
	Record models.SuggestionRecord
	// Reused is true when an existing unexpired pick was returned unchanged.
	Reused bool
}

// Engine implements the daily pick with a single reroll. The pick is locked
// for 24 hours; expiry is computed lazily against the clock at call time,
// never by a timer.
type Engine struct {
	mu     sync.Mutex
	source ItemSource
	kv     storage.KV
	clock  Clock
	pick   Picker
	logger *logrus.Logger

	// in-memory record stays authoritative when persistence fails
	record *models.SuggestionRecord
	loaded bool
}

// NewEngine creates an engine reading candidates from source and persisting
// its record through kv.
func NewEngine(source ItemSource, kv storage.KV, clock Clock, pick Picker, logger *logrus.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if pick == nil {
		pick = rand.Intn
	}
	return &Engine{
		source: source,
		kv:     kv,
		clock:  clock,
		pick:   pick,
		logger: logger,
	}
}

// candidates are all movie-type items not yet watched, minus excludeID.
func (e *Engine) candidates(excludeID string) []models.MediaItem {
	var pool []models.MediaItem
	for _, item := range e.source.Items() {
		if item.Type != models.MediaTypeMovie || item.Status == models.StatusWatched {
			continue
		}
		if excludeID != "" && item.ID == excludeID {
			continue
		}
		pool = append(pool, item)
	}
	return pool
}

func (e *Engine) loadRecord() {
	if e.loaded {
		return
	}
	e.loaded = true

	raw, err := e.kv.Get(storage.KeySuggestion)
	if err != nil {
		if err != storage.ErrNotFound {
			e.logger.WithError(err).Error("Failed to load suggestion record")
		}
		return
	}

	var record models.SuggestionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		e.logger.WithError(err).Error("Failed to parse suggestion record, discarding")
		return
	}
	e.record = &record
}

func (e *Engine) persistRecord() {
	data, err := json.Marshal(e.record)
	if err != nil {
		e.logger.WithError(err).Error("Failed to serialize suggestion record")
		return
	}
	if err := e.kv.Set(storage.KeySuggestion, string(data)); err != nil {
		e.logger.WithError(err).Error("Failed to persist suggestion record")
	}
}

// locked reports whether the current record holds an unexpired pick.
func (e *Engine) locked() bool {
	if e.record == nil {
		return false
	}
	age := e.clock.Now().UnixMilli() - e.record.PickedAt
	return age < lockDuration.Milliseconds()
}

// Suggest returns the active pick, or makes a new one when none is locked.
// An empty candidate pool takes precedence over the lock: once every movie
// is watched there is nothing to suggest, even if a pick is still locked.
func (e *Engine) Suggest() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadRecord()

	pool := e.candidates("")
	if len(pool) == 0 {
		return Result{}, ErrNoCandidates
	}

	if e.locked() {
		if item, ok := e.source.Find(e.record.PickedItemID); ok {
			return Result{Item: item, Record: *e.record, Reused: true}, nil
		}
		// Pick was removed from the collection; fall through to a fresh pick.
	}

	item := pool[e.pick(len(pool))]
	e.record = &models.SuggestionRecord{
		PickedItemID: item.ID,
		PickedAt:     e.clock.Now().UnixMilli(),
		RerollCount:  0,
	}
	e.persistRecord()

	e.logger.WithFields(logrus.Fields{
		"title": item.Title,
		"pool":  len(pool),
	}).Info("New suggestion picked")

	return Result{Item: item, Record: *e.record}, nil
}

// Reroll swaps the locked pick for a different candidate. Allowed once per
// lock; the 24h window is not reset.
func (e *Engine) Reroll() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadRecord()

	if !e.locked() {
		return Result{}, ErrNotLocked
	}
	if e.record.RerollCount >= 1 {
		return Result{}, ErrRerollUsed
	}

	pool := e.candidates(e.record.PickedItemID)
	if len(pool) == 0 {
		return Result{}, ErrNoAlternatives
	}

	item := pool[e.pick(len(pool))]
	e.record = &models.SuggestionRecord{
		PickedItemID: item.ID,
		PickedAt:     e.record.PickedAt,
		RerollCount:  e.record.RerollCount + 1,
	}
	e.persistRecord()

	e.logger.WithField("title", item.Title).Info("Suggestion rerolled")

	return Result{Item: item, Record: *e.record}, nil
}
