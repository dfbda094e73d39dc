package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kanade/shortform/internal/client/youtube"
	"github.com/kanade/shortform/internal/domain"
)

// ClipSearcher is the YouTube discovery surface the handler consumes.
type ClipSearcher interface {
	SearchClips(ctx context.Context, query string, maxResults int) ([]youtube.Clip, error)
	GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

// YouTubeClipsHandler proxies clip discovery to the YouTube Data API.
type YouTubeClipsHandler struct {
	yt ClipSearcher
}

// NewYouTubeClipsHandler creates a new YouTubeClipsHandler.
func NewYouTubeClipsHandler(searcher ClipSearcher) *YouTubeClipsHandler {
	return &YouTubeClipsHandler{yt: searcher}
}

// Search finds existing short clips related to a show or movie.
func (h *YouTubeClipsHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return &domain.ValidationError{Field: "query", Message: "a search query is required"}
	}

	maxResults, _ := strconv.Atoi(c.QueryParam("maxResults"))

	clips, err := h.yt.SearchClips(c.Request().Context(), query, maxResults)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]any{"items": clips})
}

// Details fetches metadata for one YouTube video.
func (h *YouTubeClipsHandler) Details(c echo.Context) error {
	details, err := h.yt.GetVideoDetails(c.Request().Context(), c.Param("videoId"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, details)
}
