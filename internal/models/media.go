package models

// MediaItem represents one tracked movie or series entry
type MediaItem struct {
	ID          string    `json:"id"`         // process-unique, owned by the collection store
	ExternalID  int64     `json:"externalId"` // metadata service id, dedup key on import
	Type        MediaType `json:"mediaType"`
	Title       string    `json:"title"`
	PosterPath  *string   `json:"posterPath"`  // opaque path fragment, no validation
	ReleaseDate *string   `json:"releaseDate"` // ISO-8601 date, only used for year/sorting
	Status      Status    `json:"status"`
	Rating      *int      `json:"rating"` // 1-5, user-assigned
	AddedAt     string    `json:"addedAt"`
}

// SuggestionRecord is the persisted daily-pick state
type SuggestionRecord struct {
	PickedItemID string `json:"id"`
	PickedAt     int64  `json:"at"` // epoch millis
	RerollCount  int    `json:"rerollCount"`
}
