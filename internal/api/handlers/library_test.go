package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelog/internal/collection"
	"reelog/internal/models"
	"reelog/internal/storage"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newLibraryRouter(store *collection.Store) *mux.Router {
	handler := NewLibraryHandler(store, testLogger())
	router := mux.NewRouter()
	router.HandleFunc("/api/library", handler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/library", handler.Add).Methods(http.MethodPost)
	router.HandleFunc("/api/library", handler.Clear).Methods(http.MethodDelete)
	router.HandleFunc("/api/library/stats", handler.Stats).Methods(http.MethodGet)
	router.HandleFunc("/api/library/export", handler.Export).Methods(http.MethodGet)
	router.HandleFunc("/api/library/import", handler.Import).Methods(http.MethodPost)
	router.HandleFunc("/api/library/{id}", handler.Update).Methods(http.MethodPatch)
	router.HandleFunc("/api/library/{id}", handler.Remove).Methods(http.MethodDelete)
	return router
}

func doRequest(router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func seedItem(store *collection.Store, externalID int64, mediaType models.MediaType, title string, status models.Status) models.MediaItem {
	item := collection.NewItem(externalID, mediaType, title, nil, nil, status)
	store.Dispatch(collection.Add{Item: item})
	return item
}

func TestAddCreatesItem(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPost, "/api/library",
		`{"externalId": 550, "mediaType": "movie", "title": "Fight Club", "status": "watchlist"}`)

	require.Equal(t, http.StatusCreated, resp.Code)

	var created models.MediaItem
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(550), created.ExternalID)
	assert.NotEmpty(t, created.AddedAt)
	assert.Len(t, store.Items(), 1)
}

func TestAddDuplicateExternalIDConflicts(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 550, models.MediaTypeMovie, "Fight Club", models.StatusWatched)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPost, "/api/library",
		`{"externalId": 550, "mediaType": "movie", "title": "Fight Club", "status": "watchlist"}`)

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Len(t, store.Items(), 1)
}

func TestAddValidatesBody(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	router := newLibraryRouter(store)

	cases := []string{
		`{"mediaType": "movie", "title": "No ID", "status": "watchlist"}`,
		`{"externalId": 1, "mediaType": "movie", "status": "watchlist"}`,
		`{"externalId": 1, "mediaType": "book", "title": "X", "status": "watchlist"}`,
		`{"externalId": 1, "mediaType": "movie", "title": "X", "status": "paused"}`,
		`not json`,
	}
	for _, body := range cases {
		resp := doRequest(router, http.MethodPost, "/api/library", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
	}
	assert.Empty(t, store.Items())
}

func TestUpdateStatusAndRating(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	item := seedItem(store, 550, models.MediaTypeMovie, "Fight Club", models.StatusWatchlist)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPatch, "/api/library/"+item.ID,
		`{"status": "watched", "rating": 5}`)
	require.Equal(t, http.StatusOK, resp.Code)

	updated, ok := store.Find(item.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusWatched, updated.Status)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5, *updated.Rating)
	assert.Equal(t, item.AddedAt, updated.AddedAt)

	// Rating 0 clears it.
	resp = doRequest(router, http.MethodPatch, "/api/library/"+item.ID, `{"rating": 0}`)
	require.Equal(t, http.StatusOK, resp.Code)

	updated, _ = store.Find(item.ID)
	assert.Nil(t, updated.Rating)
}

func TestUpdateRejectsOutOfRangeRating(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	item := seedItem(store, 550, models.MediaTypeMovie, "Fight Club", models.StatusWatchlist)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPatch, "/api/library/"+item.ID, `{"rating": 6}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateMissingItem(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPatch, "/api/library/nope", `{"status": "watched"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	item := seedItem(store, 550, models.MediaTypeMovie, "Fight Club", models.StatusWatchlist)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodDelete, "/api/library/"+item.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, store.Items())

	resp = doRequest(router, http.MethodDelete, "/api/library/"+item.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestListAppliesFiltersSearchAndSort(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 1, models.MediaTypeMovie, "Heat", models.StatusWatched)
	seedItem(store, 2, models.MediaTypeSeries, "The Wire", models.StatusWatched)
	seedItem(store, 3, models.MediaTypeSeries, "Chernobyl", models.StatusWatched)
	seedItem(store, 4, models.MediaTypeSeries, "Severance", models.StatusWatchlist)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodGet, "/api/library?status=watched&type=series&sort=title-asc", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Items []models.MediaItem `json:"items"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 2, body.Total)
	assert.Equal(t, "Chernobyl", body.Items[0].Title)
	assert.Equal(t, "The Wire", body.Items[1].Title)

	resp = doRequest(router, http.MethodGet, "/api/library?q=wir", "")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "The Wire", body.Items[0].Title)
}

func TestListRejectsUnknownFilter(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	router := newLibraryRouter(store)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/library?status=paused", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/library?sort=newest", "").Code)
}

func TestStats(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 1, models.MediaTypeMovie, "Heat", models.StatusWatched)
	seedItem(store, 2, models.MediaTypeSeries, "The Wire", models.StatusWatchlist)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodGet, "/api/library/stats", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var counts collection.Counts
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &counts))
	assert.Equal(t, collection.Counts{Total: 2, Watched: 1, Watchlist: 1, Movies: 1, Series: 1}, counts)
}

func TestExportEndpoint(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 1, models.MediaTypeMovie, "Heat", models.StatusWatched)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodGet, "/api/library/export?format=csv&type=movies", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "media-tracker-movies.csv")
	assert.True(t, strings.HasPrefix(resp.Body.String(), "title,type,status,rating,releaseDate,addedAt"))

	resp = doRequest(router, http.MethodGet, "/api/library/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportEndpoint(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 1, models.MediaTypeMovie, "Heat", models.StatusWatched)
	router := newLibraryRouter(store)

	payload := `[
		{"id": "x1", "externalId": 1, "mediaType": "movie", "title": "Heat", "status": "watched", "rating": null, "addedAt": "t"},
		{"id": "x2", "externalId": 2, "mediaType": "series", "title": "The Wire", "status": "watchlist", "rating": null, "addedAt": "t"}
	]`

	resp := doRequest(router, http.MethodPost, "/api/library/import", payload)
	require.Equal(t, http.StatusOK, resp.Code)

	var report struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, store.Items(), 2)
}

func TestImportEndpointRejectsMalformedPayload(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodPost, "/api/library/import", `{"not": "an array"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, store.Items())
}

func TestClearEmptiesLibrary(t *testing.T) {
	store := collection.NewStore(storage.NewMemoryKV(), testLogger())
	seedItem(store, 1, models.MediaTypeMovie, "Heat", models.StatusWatched)
	router := newLibraryRouter(store)

	resp := doRequest(router, http.MethodDelete, "/api/library", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, store.Items())
}
