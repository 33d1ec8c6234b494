package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"reelog/internal/collection"
	"reelog/internal/models"
)

// ErrNotArray means the payload's top-level value is not a JSON array.
var ErrNotArray = errors.New("invalid file format: expected array")

// rawItem mirrors MediaItem with pointer fields so missing and wrongly typed
// values are told apart from zero values during validation.
type rawItem struct {
	ID          *string      `json:"id"`
	ExternalID  *json.Number `json:"externalId"`
	Type        *string      `json:"mediaType"`
	Title       *string      `json:"title"`
	PosterPath  *string      `json:"posterPath"`
	ReleaseDate *string      `json:"releaseDate"`
	Status      *string      `json:"status"`
	Rating      *float64     `json:"rating"`
	AddedAt     *string      `json:"addedAt"`
}

func (r rawItem) validate() error {
	if r.ID == nil || r.Title == nil || r.AddedAt == nil {
		return errors.New("missing required fields")
	}
	if r.ExternalID == nil {
		return errors.New("missing externalId")
	}
	if _, err := r.ExternalID.Int64(); err != nil {
		return errors.New("externalId must be an integer")
	}
	if r.Type == nil || (*r.Type != string(models.MediaTypeMovie) && *r.Type != string(models.MediaTypeSeries)) {
		return errors.New("mediaType must be movie or series")
	}
	if r.Status == nil || (*r.Status != string(models.StatusWatched) && *r.Status != string(models.StatusWatchlist)) {
		return errors.New("status must be watched or watchlist")
	}
	if r.Rating != nil && *r.Rating != math.Trunc(*r.Rating) {
		return errors.New("rating must be null or an integer")
	}
	return nil
}

func (r rawItem) toItem() models.MediaItem {
	externalID, _ := r.ExternalID.Int64()
	item := models.MediaItem{
		ID:          *r.ID,
		ExternalID:  externalID,
		Type:        models.MediaType(*r.Type),
		Title:       *r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		Status:      models.Status(*r.Status),
		AddedAt:     *r.AddedAt,
	}
	if r.Rating != nil {
		rating := int(*r.Rating)
		item.Rating = &rating
	}
	return item
}

// Import parses and validates an exported JSON payload. Validation is
// all-or-nothing: any malformed element rejects the whole payload. The
// returned items are not written anywhere; merging is the caller's job.
func Import(payload []byte) ([]models.MediaItem, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(payload, &elements); err != nil {
		return nil, ErrNotArray
	}

	items := make([]models.MediaItem, 0, len(elements))
	for i, element := range elements {
		var raw rawItem
		if err := json.Unmarshal(element, &raw); err != nil {
			return nil, fmt.Errorf("invalid file structure: item %d: %w", i, err)
		}
		if err := raw.validate(); err != nil {
			return nil, fmt.Errorf("invalid file structure: item %d: %w", i, err)
		}
		items = append(items, raw.toItem())
	}

	return items, nil
}

// MergeReport counts the outcome of an import merge.
type MergeReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Merge inserts validated items whose externalId is not yet tracked and
// reports how many were added versus skipped as duplicates. Existing items
// are never overwritten or removed.
func Merge(store *collection.Store, items []models.MediaItem) MergeReport {
	existing := store.Items()

	externalIDs := make(map[int64]struct{}, len(existing))
	ids := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		externalIDs[item.ExternalID] = struct{}{}
		ids[item.ID] = struct{}{}
	}

	var report MergeReport
	for _, item := range items {
		if _, dup := externalIDs[item.ExternalID]; dup {
			report.Skipped++
			continue
		}
		// An id clash with a live item gets a fresh id; the externalId is
		// what identifies the title across files.
		if _, taken := ids[item.ID]; taken {
			item.ID = uuid.NewString()
		}
		store.Dispatch(collection.Add{Item: item})
		externalIDs[item.ExternalID] = struct{}{}
		ids[item.ID] = struct{}{}
		report.Imported++
	}

	return report
}
