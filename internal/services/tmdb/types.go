package tmdb

import "reelog/internal/models"

// Upstream response shapes. Only the fields the application reads are mapped.

type resultsPage struct {
	Results      []mediaResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type mediaResult struct {
	ID           int64    `json:"id"`
	MediaType    string   `json:"media_type"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	PosterPath   *string  `json:"poster_path"`
	ReleaseDate  *string  `json:"release_date"`
	FirstAirDate *string  `json:"first_air_date"`
	VoteAverage  *float64 `json:"vote_average"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type crewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

type castMember struct {
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

type credits struct {
	Cast []castMember `json:"cast"`
	Crew []crewMember `json:"crew"`
}

type movieDetail struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	PosterPath   *string  `json:"poster_path"`
	BackdropPath *string  `json:"backdrop_path"`
	ReleaseDate  *string  `json:"release_date"`
	Overview     *string  `json:"overview"`
	Runtime      *int     `json:"runtime"`
	VoteAverage  *float64 `json:"vote_average"`
	Genres       []Genre  `json:"genres"`
	Credits      *credits `json:"credits"`
}

type tvDetail struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	PosterPath     *string  `json:"poster_path"`
	BackdropPath   *string  `json:"backdrop_path"`
	FirstAirDate   *string  `json:"first_air_date"`
	Overview       *string  `json:"overview"`
	EpisodeRunTime []int    `json:"episode_run_time"`
	VoteAverage    *float64 `json:"vote_average"`
	Genres         []Genre  `json:"genres"`
	CreatedBy      []struct {
		Name string `json:"name"`
	} `json:"created_by"`
}

type providerEntry struct {
	ProviderName string  `json:"provider_name"`
	LogoPath     *string `json:"logo_path"`
}

type providerRegion struct {
	Link     string          `json:"link"`
	Flatrate []providerEntry `json:"flatrate"`
	Rent     []providerEntry `json:"rent"`
	Buy      []providerEntry `json:"buy"`
}

type providersResponse struct {
	Results map[string]providerRegion `json:"results"`
}

// Normalized shapes handed to the HTTP layer.

// Item is a normalized listing entry (search, trending, discover).
type Item struct {
	ExternalID  int64            `json:"externalId"`
	Type        models.MediaType `json:"mediaType"`
	Title       string           `json:"title"`
	PosterPath  *string          `json:"posterPath"`
	ReleaseDate *string          `json:"releaseDate"`
	VoteAverage *float64         `json:"voteAverage"`
}

// Genre is one metadata-service genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Detail is a normalized movie or series detail page.
type Detail struct {
	ExternalID   int64            `json:"externalId"`
	Type         models.MediaType `json:"mediaType"`
	Title        string           `json:"title"`
	PosterPath   *string          `json:"posterPath"`
	BackdropPath *string          `json:"backdropPath"`
	ReleaseDate  *string          `json:"releaseDate"`
	Overview     *string          `json:"overview"`
	Runtime      *int             `json:"runtime"`
	Genres       []string         `json:"genres"`
	VoteAverage  *float64         `json:"voteAverage"`
	Creators     []string         `json:"creators"`
}

// CastCredit is one cast row on the movie bundle.
type CastCredit struct {
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profilePath"`
}

// Provider is one watch-provider entry.
type Provider struct {
	Name     string  `json:"name"`
	LogoPath *string `json:"logoPath"`
}

// Providers groups the watch options for one region.
type Providers struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// MovieBundle is the full movie page payload: detail plus credits,
// recommendations and watch providers.
type MovieBundle struct {
	Detail          Detail       `json:"detail"`
	Cast            []CastCredit `json:"cast"`
	Recommendations []Item       `json:"recommendations"`
	Providers       *Providers   `json:"providers"`
}

// Latest pairs the newest movie and series listings.
type Latest struct {
	Movies []Item `json:"movies"`
	Series []Item `json:"series"`
}
