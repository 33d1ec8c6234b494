package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"reelog/internal/services/tmdb"
)

// metadataService is the slice of the TMDB client the proxy handlers use.
type metadataService interface {
	Search(ctx context.Context, query string) ([]tmdb.Item, error)
	Trending(ctx context.Context) ([]tmdb.Item, error)
	DiscoverMovies(ctx context.Context, p tmdb.DiscoverParams) ([]tmdb.Item, error)
	MovieGenres(ctx context.Context) ([]tmdb.Genre, error)
	Latest(ctx context.Context) (*tmdb.Latest, error)
	Popular(ctx context.Context) ([]tmdb.Item, error)
	TopRated(ctx context.Context) ([]tmdb.Item, error)
	MediaDetails(ctx context.Context, id int64) (*tmdb.Detail, error)
	MovieBundle(ctx context.Context, id int64) (*tmdb.MovieBundle, error)
	RandomMovie(ctx context.Context) (*tmdb.Item, error)
}

var _ metadataService = (*tmdb.Client)(nil)

// MetadataHandler proxies and normalizes metadata-service requests.
type MetadataHandler struct {
	service metadataService
	logger  *logrus.Logger
}

// NewMetadataHandler creates a new metadata proxy handler
func NewMetadataHandler(service metadataService, logger *logrus.Logger) *MetadataHandler {
	return &MetadataHandler{service: service, logger: logger}
}

// upstreamError maps client failures onto proxy responses: upstream non-2xx
// answers become 502, everything else 500.
func (h *MetadataHandler) upstreamError(w http.ResponseWriter, err error, action string) {
	h.logger.WithError(err).Error("Metadata request failed")
	if _, ok := err.(*tmdb.StatusError); ok {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to "+action)
}

// Search handles GET /api/search?q=
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.upstreamError(w, err, "search")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Trending handles GET /api/trending
func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Trending(r.Context())
	if err != nil {
		h.upstreamError(w, err, "fetch trending")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Discover handles GET /api/discover with optional filter parameters.
func (h *MetadataHandler) Discover(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	results, err := h.service.DiscoverMovies(r.Context(), tmdb.DiscoverParams{
		WithGenres:         query.Get("with_genres"),
		PrimaryReleaseYear: query.Get("primary_release_year"),
		VoteAverageGTE:     query.Get("vote_average_gte"),
		SortBy:             query.Get("sort_by"),
	})
	if err != nil {
		h.upstreamError(w, err, "discover movies")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Genres handles GET /api/genres
func (h *MetadataHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.MovieGenres(r.Context())
	if err != nil {
		h.upstreamError(w, err, "fetch genres")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"genres": genres})
}

// Latest handles GET /api/latest
func (h *MetadataHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.Latest(r.Context())
	if err != nil {
		h.upstreamError(w, err, "fetch latest")
		return
	}
	respondJSON(w, http.StatusOK, latest)
}

// Popular handles GET /api/popular
func (h *MetadataHandler) Popular(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Popular(r.Context())
	if err != nil {
		h.upstreamError(w, err, "fetch popular")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// TopRated handles GET /api/top-rated
func (h *MetadataHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.TopRated(r.Context())
	if err != nil {
		h.upstreamError(w, err, "fetch top rated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Random handles GET /api/random
func (h *MetadataHandler) Random(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.RandomMovie(r.Context())
	if err != nil {
		h.upstreamError(w, err, "pick a random movie")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// MediaDetail handles GET /api/media/{id}: the id may belong to a movie or
// a series, resolved movie-first.
func (h *MetadataHandler) MediaDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	detail, err := h.service.MediaDetails(r.Context(), id)
	if err != nil {
		if statusErr, ok := err.(*tmdb.StatusError); ok && statusErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "media not found")
			return
		}
		h.upstreamError(w, err, "fetch media detail")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// MovieDetail handles GET /api/movie/{id}: the full movie page with credits,
// recommendations and watch providers.
func (h *MetadataHandler) MovieDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	bundle, err := h.service.MovieBundle(r.Context(), id)
	if err != nil {
		if statusErr, ok := err.(*tmdb.StatusError); ok && statusErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "movie not found")
			return
		}
		h.upstreamError(w, err, "fetch movie detail")
		return
	}
	respondJSON(w, http.StatusOK, bundle)
}
