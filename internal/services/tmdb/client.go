package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"reelog/internal/config"
	"reelog/internal/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// StatusError is an upstream non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB API error: %d %s", e.StatusCode, e.Body)
}

// Client handles communication with the TMDB API. Requests are never retried;
// a failed fetch surfaces immediately to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new TMDB API client. Stable listings (genres, trending,
// popular, top rated) are cached for the configured TTL.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Client{
		apiKey:     cfg.TMDBAPIKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// doRequest performs a GET against the TMDB API and decodes the JSON body.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	fullURL := c.baseURL + path + "?" + query.Encode()
	c.logger.WithField("path", path).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// cachedPage fetches a results page through the TTL cache.
func (c *Client) cachedPage(ctx context.Context, cacheKey, path string, query url.Values, normalize func(resultsPage) []Item) ([]Item, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Item), nil
	}

	var page resultsPage
	if err := c.doRequest(ctx, path, query, &page); err != nil {
		return nil, err
	}

	items := normalize(page)
	c.cache.SetDefault(cacheKey, items)
	return items, nil
}

// normalizeMulti maps a mixed movie/tv page, dropping person results.
func normalizeMulti(page resultsPage) []Item {
	items := make([]Item, 0, len(page.Results))
	for _, result := range page.Results {
		switch result.MediaType {
		case "movie":
			items = append(items, Item{
				ExternalID:  result.ID,
				Type:        models.MediaTypeMovie,
				Title:       result.Title,
				PosterPath:  result.PosterPath,
				ReleaseDate: result.ReleaseDate,
				VoteAverage: result.VoteAverage,
			})
		case "tv":
			items = append(items, Item{
				ExternalID:  result.ID,
				Type:        models.MediaTypeSeries,
				Title:       result.Name,
				PosterPath:  result.PosterPath,
				ReleaseDate: result.FirstAirDate,
				VoteAverage: result.VoteAverage,
			})
		}
	}
	return items
}

// normalizeMovies maps a movie-only page.
func normalizeMovies(page resultsPage) []Item {
	items := make([]Item, 0, len(page.Results))
	for _, result := range page.Results {
		items = append(items, Item{
			ExternalID:  result.ID,
			Type:        models.MediaTypeMovie,
			Title:       result.Title,
			PosterPath:  result.PosterPath,
			ReleaseDate: result.ReleaseDate,
			VoteAverage: result.VoteAverage,
		})
	}
	return items
}

// normalizeSeries maps a tv-only page.
func normalizeSeries(page resultsPage) []Item {
	items := make([]Item, 0, len(page.Results))
	for _, result := range page.Results {
		items = append(items, Item{
			ExternalID:  result.ID,
			Type:        models.MediaTypeSeries,
			Title:       result.Name,
			PosterPath:  result.PosterPath,
			ReleaseDate: result.FirstAirDate,
			VoteAverage: result.VoteAverage,
		})
	}
	return items
}

// Search queries movies and series by title. Person matches are dropped.
// A blank query returns an empty result without calling upstream.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	if query == "" {
		return []Item{}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	var page resultsPage
	if err := c.doRequest(ctx, "/search/multi", params, &page); err != nil {
		return nil, err
	}
	return normalizeMulti(page), nil
}

// Trending returns this week's trending movies and series.
func (c *Client) Trending(ctx context.Context) ([]Item, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	return c.cachedPage(ctx, "trending", "/trending/all/week", params, normalizeMulti)
}

// DiscoverParams narrows a movie discovery query.
type DiscoverParams struct {
	WithGenres         string
	PrimaryReleaseYear string
	VoteAverageGTE     string
	SortBy             string
}

// DiscoverMovies runs a filtered movie discovery query.
func (c *Client) DiscoverMovies(ctx context.Context, p DiscoverParams) ([]Item, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}

	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("sort_by", sortBy)
	params.Set("page", "1")
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	if p.WithGenres != "" {
		params.Set("with_genres", p.WithGenres)
	}
	if p.PrimaryReleaseYear != "" {
		params.Set("primary_release_year", p.PrimaryReleaseYear)
	}
	if p.VoteAverageGTE != "" {
		params.Set("vote_average.gte", p.VoteAverageGTE)
	}

	var page resultsPage
	if err := c.doRequest(ctx, "/discover/movie", params, &page); err != nil {
		return nil, err
	}
	return normalizeMovies(page), nil
}

// MovieGenres returns the movie genre list.
func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	if cached, found := c.cache.Get("genres"); found {
		return cached.([]Genre), nil
	}

	params := url.Values{}
	params.Set("language", "en-US")

	var list genreList
	if err := c.doRequest(ctx, "/genre/movie/list", params, &list); err != nil {
		return nil, err
	}

	c.cache.SetDefault("genres", list.Genres)
	return list.Genres, nil
}

// Latest returns movies now playing and series currently on the air.
func (c *Client) Latest(ctx context.Context) (*Latest, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", "1")

	var moviePage resultsPage
	if err := c.doRequest(ctx, "/movie/now_playing", params, &moviePage); err != nil {
		return nil, err
	}

	params = url.Values{}
	params.Set("language", "en-US")
	params.Set("page", "1")

	var tvPage resultsPage
	if err := c.doRequest(ctx, "/tv/on_the_air", params, &tvPage); err != nil {
		return nil, err
	}

	return &Latest{
		Movies: normalizeMovies(moviePage),
		Series: normalizeSeries(tvPage),
	}, nil
}

// Popular returns the current popular movies.
func (c *Client) Popular(ctx context.Context) ([]Item, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", "1")
	return c.cachedPage(ctx, "popular", "/movie/popular", params, normalizeMovies)
}

// TopRated returns the top rated movies.
func (c *Client) TopRated(ctx context.Context) ([]Item, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", "1")
	return c.cachedPage(ctx, "top_rated", "/movie/top_rated", params, normalizeMovies)
}

// MovieDetails fetches one movie with credits appended and normalizes it,
// listing directors as the creators.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Detail, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var detail movieDetail
	if err := c.doRequest(ctx, "/movie/"+strconv.FormatInt(id, 10), params, &detail); err != nil {
		return nil, err
	}

	var directors []string
	if detail.Credits != nil {
		for _, member := range detail.Credits.Crew {
			if member.Job == "Director" {
				directors = append(directors, member.Name)
			}
		}
	}

	genres := make([]string, 0, len(detail.Genres))
	for _, genre := range detail.Genres {
		genres = append(genres, genre.Name)
	}

	return &Detail{
		ExternalID:   detail.ID,
		Type:         models.MediaTypeMovie,
		Title:        detail.Title,
		PosterPath:   detail.PosterPath,
		BackdropPath: detail.BackdropPath,
		ReleaseDate:  detail.ReleaseDate,
		Overview:     detail.Overview,
		Runtime:      detail.Runtime,
		Genres:       genres,
		VoteAverage:  detail.VoteAverage,
		Creators:     directors,
	}, nil
}

// TVDetails fetches one series and normalizes it, using the first episode
// runtime and the series creators.
func (c *Client) TVDetails(ctx context.Context, id int64) (*Detail, error) {
	var detail tvDetail
	if err := c.doRequest(ctx, "/tv/"+strconv.FormatInt(id, 10), nil, &detail); err != nil {
		return nil, err
	}

	var runtime *int
	if len(detail.EpisodeRunTime) > 0 {
		runtime = &detail.EpisodeRunTime[0]
	}

	genres := make([]string, 0, len(detail.Genres))
	for _, genre := range detail.Genres {
		genres = append(genres, genre.Name)
	}

	creators := make([]string, 0, len(detail.CreatedBy))
	for _, creator := range detail.CreatedBy {
		creators = append(creators, creator.Name)
	}

	return &Detail{
		ExternalID:   detail.ID,
		Type:         models.MediaTypeSeries,
		Title:        detail.Name,
		PosterPath:   detail.PosterPath,
		BackdropPath: detail.BackdropPath,
		ReleaseDate:  detail.FirstAirDate,
		Overview:     detail.Overview,
		Runtime:      runtime,
		Genres:       genres,
		VoteAverage:  detail.VoteAverage,
		Creators:     creators,
	}, nil
}

// MediaDetails resolves an id that may be a movie or a series: the movie
// lookup is tried first and a 404 falls through to the series lookup.
func (c *Client) MediaDetails(ctx context.Context, id int64) (*Detail, error) {
	detail, err := c.MovieDetails(ctx, id)
	if err == nil {
		return detail, nil
	}
	if statusErr, ok := err.(*StatusError); !ok || statusErr.StatusCode != http.StatusNotFound {
		return nil, err
	}
	return c.TVDetails(ctx, id)
}

// MovieBundle fetches the full movie page: detail, cast, recommendations and
// US watch providers. Recommendation and provider failures are logged and
// leave their section empty rather than failing the page.
func (c *Client) MovieBundle(ctx context.Context, id int64) (*MovieBundle, error) {
	detail, err := c.MovieDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	bundle := &MovieBundle{Detail: *detail}

	idPath := strconv.FormatInt(id, 10)

	var creditsResp credits
	if err := c.doRequest(ctx, "/movie/"+idPath+"/credits", nil, &creditsResp); err != nil {
		c.logger.WithError(err).Warn("Failed to fetch movie credits")
	} else {
		cast := creditsResp.Cast
		if len(cast) > 12 {
			cast = cast[:12]
		}
		for _, member := range cast {
			bundle.Cast = append(bundle.Cast, CastCredit{
				Name:        member.Name,
				Character:   member.Character,
				ProfilePath: member.ProfilePath,
			})
		}
	}

	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", "1")
	var recs resultsPage
	if err := c.doRequest(ctx, "/movie/"+idPath+"/recommendations", params, &recs); err != nil {
		c.logger.WithError(err).Warn("Failed to fetch movie recommendations")
	} else {
		bundle.Recommendations = normalizeMovies(recs)
	}

	var providers providersResponse
	if err := c.doRequest(ctx, "/movie/"+idPath+"/watch/providers", nil, &providers); err != nil {
		c.logger.WithError(err).Warn("Failed to fetch watch providers")
	} else if region, ok := providers.Results["US"]; ok {
		bundle.Providers = &Providers{
			Link:     region.Link,
			Flatrate: normalizeProviders(region.Flatrate),
			Rent:     normalizeProviders(region.Rent),
			Buy:      normalizeProviders(region.Buy),
		}
	}

	return bundle, nil
}

func normalizeProviders(entries []providerEntry) []Provider {
	providers := make([]Provider, 0, len(entries))
	for _, entry := range entries {
		providers = append(providers, Provider{
			Name:     entry.ProviderName,
			LogoPath: entry.LogoPath,
		})
	}
	return providers
}

// RandomMovie picks one movie from a random page of popular discovery
// results, mirroring a "surprise me" browse.
func (c *Client) RandomMovie(ctx context.Context) (*Item, error) {
	page := rand.Intn(500) + 1

	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(page))

	var results resultsPage
	if err := c.doRequest(ctx, "/discover/movie", params, &results); err != nil {
		return nil, err
	}

	items := normalizeMovies(results)
	if len(items) == 0 {
		return nil, fmt.Errorf("no movies on discover page %d", page)
	}

	item := items[rand.Intn(len(items))]
	return &item, nil
}
