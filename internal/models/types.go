package models

// MediaType represents the type of media (movie or series)
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// Status represents the tracking status of a media item
type Status string

const (
	StatusWatched   Status = "watched"
	StatusWatchlist Status = "watchlist"
)

// StatusFilter selects items by tracking status in list views
type StatusFilter string

const (
	StatusFilterAll       StatusFilter = "all"
	StatusFilterWatched   StatusFilter = "watched"
	StatusFilterWatchlist StatusFilter = "watchlist"
)

// TypeFilter selects items by media type in list views
type TypeFilter string

const (
	TypeFilterAll    TypeFilter = "all"
	TypeFilterMovie  TypeFilter = "movie"
	TypeFilterSeries TypeFilter = "series"
)

// SortKey identifies an ordering for list views
type SortKey string

const (
	SortTitleAsc   SortKey = "title-asc"
	SortTitleDesc  SortKey = "title-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortRatingAsc  SortKey = "rating-asc"
)

// ExportFormat identifies a serialization format for exports
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportFilter restricts an export to one media type
type ExportFilter string

const (
	ExportAll    ExportFilter = "all"
	ExportMovies ExportFilter = "movies"
	ExportSeries ExportFilter = "series"
)
