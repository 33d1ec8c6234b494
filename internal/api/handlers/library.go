package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"reelog/internal/collection"
	"reelog/internal/models"
	"reelog/internal/transfer"
)

// maxImportBytes caps the accepted import payload size.
const maxImportBytes = 10 << 20

// LibraryHandler handles the tracked-collection endpoints.
type LibraryHandler struct {
	store  *collection.Store
	logger *logrus.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(store *collection.Store, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{store: store, logger: logger}
}

// List handles GET /api/library with optional status/type/q/sort parameters.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	statusFilter := models.StatusFilterAll
	if v := query.Get("status"); v != "" {
		statusFilter = models.StatusFilter(v)
		if statusFilter != models.StatusFilterWatched && statusFilter != models.StatusFilterWatchlist && statusFilter != models.StatusFilterAll {
			respondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	typeFilter := models.TypeFilterAll
	if v := query.Get("type"); v != "" {
		typeFilter = models.TypeFilter(v)
		if typeFilter != models.TypeFilterMovie && typeFilter != models.TypeFilterSeries && typeFilter != models.TypeFilterAll {
			respondError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
	}

	items := h.store.Items()
	items = collection.FilterByStatus(items, statusFilter)
	items = collection.FilterByType(items, typeFilter)
	items = collection.SearchByTitle(items, query.Get("q"))

	if v := query.Get("sort"); v != "" {
		key := models.SortKey(v)
		switch key {
		case models.SortTitleAsc, models.SortTitleDesc, models.SortRatingAsc, models.SortRatingDesc:
			items = collection.Sort(items, key)
		default:
			respondError(w, http.StatusBadRequest, "invalid sort key")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// addRequest is the POST /api/library body.
type addRequest struct {
	ExternalID  int64   `json:"externalId"`
	MediaType   string  `json:"mediaType"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	Status      string  `json:"status"`
}

// Add handles POST /api/library. Adding an externalId that is already
// tracked answers 409 with the existing entry; the store itself does not
// enforce uniqueness.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body addRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.ExternalID <= 0 {
		respondError(w, http.StatusBadRequest, "externalId is required")
		return
	}
	if body.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	mediaType := models.MediaType(body.MediaType)
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeSeries {
		respondError(w, http.StatusBadRequest, "mediaType must be movie or series")
		return
	}
	status := models.Status(body.Status)
	if status != models.StatusWatched && status != models.StatusWatchlist {
		respondError(w, http.StatusBadRequest, "status must be watched or watchlist")
		return
	}

	if existing, ok := h.store.FindByExternalID(body.ExternalID); ok {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "already tracked",
			"item":  existing,
		})
		return
	}

	item := collection.NewItem(body.ExternalID, mediaType, body.Title, body.PosterPath, body.ReleaseDate, status)
	h.store.Dispatch(collection.Add{Item: item})

	respondJSON(w, http.StatusCreated, item)
}

// updateRequest is the PATCH /api/library/{id} body. A rating of 0 clears
// the rating.
type updateRequest struct {
	Status *string `json:"status"`
	Rating *int    `json:"rating"`
}

// Update handles PATCH /api/library/{id}: status toggle and rating changes.
func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.Find(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}

	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Status != nil {
		status := models.Status(*body.Status)
		if status != models.StatusWatched && status != models.StatusWatchlist {
			respondError(w, http.StatusBadRequest, "status must be watched or watchlist")
			return
		}
		item.Status = status
	}

	if body.Rating != nil {
		switch {
		case *body.Rating == 0:
			item.Rating = nil
		case *body.Rating >= 1 && *body.Rating <= 5:
			rating := *body.Rating
			item.Rating = &rating
		default:
			respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}
	}

	h.store.Dispatch(collection.Update{Item: item})
	respondJSON(w, http.StatusOK, item)
}

// Remove handles DELETE /api/library/{id}. Removing an absent id is benign.
func (h *LibraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(collection.Remove{ID: mux.Vars(r)["id"]})
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/library: removes every tracked item.
func (h *LibraryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(collection.ReplaceAll{})
	h.logger.Info("Library cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/library/stats
func (h *LibraryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, collection.AggregateCounts(h.store.Items()))
}

// Export handles GET /api/library/export?format=&type= and answers a
// downloadable file.
func (h *LibraryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := models.ExportJSON
	if v := r.URL.Query().Get("format"); v != "" {
		format = models.ExportFormat(v)
		if format != models.ExportJSON && format != models.ExportCSV {
			respondError(w, http.StatusBadRequest, "format must be json or csv")
			return
		}
	}

	filter := models.ExportAll
	if v := r.URL.Query().Get("type"); v != "" {
		filter = models.ExportFilter(v)
		if filter != models.ExportAll && filter != models.ExportMovies && filter != models.ExportSeries {
			respondError(w, http.StatusBadRequest, "type must be all, movies or series")
			return
		}
	}

	data, err := transfer.Export(h.store.Items(), format, filter)
	if err != nil {
		h.logger.WithError(err).Error("Export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "application/json"
	if format == models.ExportCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.Filename(format, filter)+`"`)
	w.Write(data)
}

// Import handles POST /api/library/import: validates the payload and merges
// it, skipping externalIds that are already tracked.
func (h *LibraryHandler) Import(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	items, err := transfer.Import(payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := transfer.Merge(h.store, items)
	h.logger.WithFields(logrus.Fields{
		"imported": report.Imported,
		"skipped":  report.Skipped,
	}).Info("Library import finished")

	respondJSON(w, http.StatusOK, report)
}
