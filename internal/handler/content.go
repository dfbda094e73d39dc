package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kanade/shortform/internal/client/tmdb"
	"github.com/kanade/shortform/internal/domain"
)

// ContentSearcher is the TMDb surface the content handler consumes.
type ContentSearcher interface {
	Search(ctx context.Context, query, mediaType string, page int) (*tmdb.SearchResult, error)
	Details(ctx context.Context, id int64, mediaType string) (*tmdb.ContentDetails, error)
	SeasonEpisodes(ctx context.Context, tvID int64, seasonNumber int) (*tmdb.SeasonEpisodes, error)
}

// ContentHandler proxies content metadata lookups to TMDb.
type ContentHandler struct {
	tmdb ContentSearcher
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(searcher ContentSearcher) *ContentHandler {
	return &ContentHandler{tmdb: searcher}
}

// Search searches TV shows, movies, or both.
func (h *ContentHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return &domain.ValidationError{Field: "query", Message: "a search query is required"}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	results, err := h.tmdb.Search(c.Request().Context(), query, c.QueryParam("type"), page)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, results)
}

// Autocomplete returns title suggestions for a partial query.
func (h *ContentHandler) Autocomplete(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return &domain.ValidationError{Field: "query", Message: "a search query is required"}
	}

	results, err := h.tmdb.Search(c.Request().Context(), query, "multi", 1)
	if err != nil {
		return err
	}

	suggestions := make([]string, 0, 10)
	for _, item := range results.Results {
		if item.Title == "" {
			continue
		}
		suggestions = append(suggestions, item.Title)
		if len(suggestions) == 10 {
			break
		}
	}
	return JSON(c, http.StatusOK, suggestions)
}

// Details fetches the full detail view of one TV show or movie.
func (h *ContentHandler) Details(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return &domain.ValidationError{Field: "id", Message: "must be a numeric content id"}
	}

	details, err := h.tmdb.Details(c.Request().Context(), id, c.QueryParam("type"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, details)
}

// SeasonEpisodes fetches the episode list for one season of a TV show.
func (h *ContentHandler) SeasonEpisodes(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return &domain.ValidationError{Field: "id", Message: "must be a numeric content id"}
	}
	seasonNumber, err := strconv.Atoi(c.Param("seasonNumber"))
	if err != nil {
		return &domain.ValidationError{Field: "seasonNumber", Message: "must be a number"}
	}

	episodes, err := h.tmdb.SeasonEpisodes(c.Request().Context(), id, seasonNumber)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, episodes)
}
