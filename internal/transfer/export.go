package transfer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"reelog/internal/models"
)

// csvHeader is the fixed export column order.
const csvHeader = "title,type,status,rating,releaseDate,addedAt"

// filterByExportType keeps only the requested media type.
func filterByExportType(items []models.MediaItem, filter models.ExportFilter) []models.MediaItem {
	if filter == models.ExportAll {
		return items
	}
	want := models.MediaTypeMovie
	if filter == models.ExportSeries {
		want = models.MediaTypeSeries
	}
	filtered := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Type == want {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Export serializes the collection, filtered by media type first. JSON is the
// pretty-printed full records; CSV is the fixed header plus one row per item.
func Export(items []models.MediaItem, format models.ExportFormat, filter models.ExportFilter) ([]byte, error) {
	filtered := filterByExportType(items, filter)
	if filtered == nil {
		filtered = []models.MediaItem{}
	}

	switch format {
	case models.ExportJSON:
		data, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize collection: %w", err)
		}
		return data, nil
	case models.ExportCSV:
		return exportCSV(filtered), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// exportCSV writes the fixed header and one row per item. Only the title is
// quote-escaped; commas are not expected in the other fields.
func exportCSV(items []models.MediaItem) []byte {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, csvHeader)

	for _, item := range items {
		rating := ""
		if item.Rating != nil {
			rating = strconv.Itoa(*item.Rating)
		}
		releaseDate := ""
		if item.ReleaseDate != nil {
			releaseDate = *item.ReleaseDate
		}
		title := `"` + strings.ReplaceAll(item.Title, `"`, `""`) + `"`

		lines = append(lines, strings.Join([]string{
			title,
			string(item.Type),
			string(item.Status),
			rating,
			releaseDate,
			item.AddedAt,
		}, ","))
	}

	return []byte(strings.Join(lines, "\n"))
}

// Filename suggests a download name for an export.
func Filename(format models.ExportFormat, filter models.ExportFilter) string {
	return fmt.Sprintf("media-tracker-%s.%s", filter, format)
}
