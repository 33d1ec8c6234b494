package collection

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"reelog/internal/models"
)

// View projections: pure functions over a collection snapshot. None of them
// mutate their input.

// FilterByStatus keeps items matching the status filter.
func FilterByStatus(items []models.MediaItem, filter models.StatusFilter) []models.MediaItem {
	if filter == models.StatusFilterAll {
		return items
	}
	filtered := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if string(item.Status) == string(filter) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// FilterByType keeps items matching the media-type filter. Composes with
// FilterByStatus as a logical AND.
func FilterByType(items []models.MediaItem, filter models.TypeFilter) []models.MediaItem {
	if filter == models.TypeFilterAll {
		return items
	}
	filtered := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if string(item.Type) == string(filter) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SearchByTitle keeps items whose title contains the query, case-insensitive.
// A blank query returns the input unchanged.
func SearchByTitle(items []models.MediaItem, query string) []models.MediaItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	query = strings.ToLower(query)
	filtered := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), query) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// ratingValue maps a missing rating below the valid 1-5 range so unrated
// items always sort after rated ones on rating-desc.
func ratingValue(item models.MediaItem) int {
	if item.Rating == nil {
		return -1
	}
	return *item.Rating
}

// Sort returns a sorted copy of items. Title ordering is locale-aware and
// case-insensitive; ties keep their relative input order.
func Sort(items []models.MediaItem, key models.SortKey) []models.MediaItem {
	sorted := make([]models.MediaItem, len(items))
	copy(sorted, items)

	titles := collate.New(language.Und, collate.IgnoreCase)

	sort.SliceStable(sorted, func(i, j int) bool {
		switch key {
		case models.SortTitleDesc:
			return titles.CompareString(sorted[i].Title, sorted[j].Title) > 0
		case models.SortRatingDesc:
			return ratingValue(sorted[i]) > ratingValue(sorted[j])
		case models.SortRatingAsc:
			return ratingValue(sorted[i]) < ratingValue(sorted[j])
		default: // title-asc
			return titles.CompareString(sorted[i].Title, sorted[j].Title) < 0
		}
	})

	return sorted
}

// Counts holds the aggregate pass-counts over a collection snapshot.
type Counts struct {
	Total     int `json:"total"`
	Watched   int `json:"watched"`
	Watchlist int `json:"watchlist"`
	Movies    int `json:"movies"`
	Series    int `json:"series"`
}

// AggregateCounts recomputes the counts in one pass.
func AggregateCounts(items []models.MediaItem) Counts {
	counts := Counts{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case models.StatusWatched:
			counts.Watched++
		case models.StatusWatchlist:
			counts.Watchlist++
		}

		switch item.Type {
		case models.MediaTypeMovie:
			counts.Movies++
		case models.MediaTypeSeries:
			counts.Series++
		}
	}
	return counts
}
