package collection

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelog/internal/models"
	"reelog/internal/storage"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testItem(externalID int64, title string) models.MediaItem {
	return NewItem(externalID, models.MediaTypeMovie, title, nil, nil, models.StatusWatchlist)
}

func TestAddThenFind(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())

	item := testItem(550, "Fight Club")
	store.Dispatch(Add{Item: item})

	found, ok := store.Find(item.ID)
	require.True(t, ok)
	assert.Equal(t, item, found)
	assert.Len(t, store.Items(), 1)
}

func TestAddInsertsAtFront(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())

	first := testItem(1, "First")
	second := testItem(2, "Second")
	store.Dispatch(Add{Item: first})
	store.Dispatch(Add{Item: second})

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Second", items[0].Title)
	assert.Equal(t, "First", items[1].Title)
}

func TestUpdateAbsentIDIsNoOp(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())
	store.Dispatch(Add{Item: testItem(1, "Kept")})
	before := store.Items()

	ghost := testItem(2, "Ghost")
	ghost.ID = "missing"
	store.Dispatch(Update{Item: ghost})

	assert.Equal(t, before, store.Items())
}

func TestRemoveAbsentIDIsNoOp(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())
	store.Dispatch(Add{Item: testItem(1, "Kept")})
	before := store.Items()

	store.Dispatch(Remove{ID: "missing"})

	assert.Equal(t, before, store.Items())
}

func TestUpdateReplacesMatchingID(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())
	item := testItem(1, "Before")
	store.Dispatch(Add{Item: item})

	item.Status = models.StatusWatched
	rating := 4
	item.Rating = &rating
	store.Dispatch(Update{Item: item})

	found, ok := store.Find(item.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusWatched, found.Status)
	require.NotNil(t, found.Rating)
	assert.Equal(t, 4, *found.Rating)
	assert.Len(t, store.Items(), 1)
}

func TestReplaceAllClears(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())
	store.Dispatch(Add{Item: testItem(1, "One")})
	store.Dispatch(Add{Item: testItem(2, "Two")})

	store.Dispatch(ReplaceAll{})

	assert.Empty(t, store.Items())
}

func TestMutationsPersist(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv, testLogger())

	item := testItem(550, "Fight Club")
	store.Dispatch(Add{Item: item})

	raw, err := kv.Get(storage.KeyCollection)
	require.NoError(t, err)

	var persisted []models.MediaItem
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, item, persisted[0])
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv, testLogger())

	kv.FailWrites = errors.New("quota exceeded")
	store.Dispatch(Add{Item: testItem(1, "Still Here")})

	assert.Len(t, store.Items(), 1)
	_, err := kv.Get(storage.KeyCollection)
	assert.Equal(t, storage.ErrNotFound, err)
}

func TestLoadMalformedValueStartsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(storage.KeyCollection, "not json at all"))

	store := NewStore(kv, testLogger())

	assert.Empty(t, store.Items())
}

func TestLoadRestoresCollection(t *testing.T) {
	kv := storage.NewMemoryKV()
	first := NewStore(kv, testLogger())
	item := testItem(550, "Fight Club")
	first.Dispatch(Add{Item: item})

	second := NewStore(kv, testLogger())

	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, item, items[0])
}

func TestSubscribersNotifiedPerMutation(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), testLogger())

	var calls int
	var lastLen int
	store.Subscribe(func(items []models.MediaItem) {
		calls++
		lastLen = len(items)
	})

	store.Dispatch(Add{Item: testItem(1, "One")})
	store.Dispatch(Add{Item: testItem(2, "Two")})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lastLen)
}
