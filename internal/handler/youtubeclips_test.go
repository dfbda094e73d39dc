package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade/shortform/internal/client/youtube"
)

type stubClipSearcher struct {
	query      string
	maxResults int
	videoID    string
	err        error
}

func (s *stubClipSearcher) SearchClips(ctx context.Context, query string, maxResults int) ([]youtube.Clip, error) {
	s.query = query
	s.maxResults = maxResults
	if s.err != nil {
		return nil, s.err
	}
	return []youtube.Clip{
		{VideoID: "v1", Title: "Best moments"},
		{VideoID: "v2", Title: "Funny scene"},
	}, nil
}

func (s *stubClipSearcher) GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error) {
	s.videoID = videoID
	if s.err != nil {
		return nil, s.err
	}
	return &youtube.VideoDetails{VideoID: videoID, Title: "Best moments"}, nil
}

func newYouTubeClipsFixture(t *testing.T, searcher *stubClipSearcher) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler

	h := NewYouTubeClipsHandler(searcher)
	e.GET("/api/youtube-clips/search", h.Search)
	e.GET("/api/youtube-clips/:videoId", h.Details)
	return e
}

func TestYouTubeClipsHandler_Search(t *testing.T) {
	searcher := &stubClipSearcher{}
	e := newYouTubeClipsFixture(t, searcher)

	rec := getRequest(e, "/api/youtube-clips/search?query=breaking+bad&maxResults=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "breaking bad", searcher.query)
	assert.Equal(t, 5, searcher.maxResults)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Len(t, data["items"], 2)
}

func TestYouTubeClipsHandler_SearchRequiresQuery(t *testing.T) {
	e := newYouTubeClipsFixture(t, &stubClipSearcher{})

	rec := getRequest(e, "/api/youtube-clips/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestYouTubeClipsHandler_SearchUpstreamFailure(t *testing.T) {
	e := newYouTubeClipsFixture(t, &stubClipSearcher{err: fmt.Errorf("quota exceeded")})

	rec := getRequest(e, "/api/youtube-clips/search?query=breaking")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestYouTubeClipsHandler_Details(t *testing.T) {
	searcher := &stubClipSearcher{}
	e := newYouTubeClipsFixture(t, searcher)

	rec := getRequest(e, "/api/youtube-clips/v1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", searcher.videoID)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, "v1", data["videoId"])
}
