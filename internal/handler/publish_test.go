package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade/shortform/internal/client/tiktok"
	"github.com/kanade/shortform/internal/client/youtube"
	"github.com/kanade/shortform/internal/service"
)

type stubYouTube struct{}

func (stubYouTube) UploadVideo(ctx context.Context, video io.Reader, meta youtube.UploadMetadata, accessToken string) (*youtube.UploadResult, error) {
	if _, err := io.Copy(io.Discard, video); err != nil {
		return nil, err
	}
	return &youtube.UploadResult{VideoID: "yt123", URL: "https://youtube.com/shorts/yt123"}, nil
}

type stubTikTok struct{}

func (stubTikTok) AuthURL() string {
	return "https://www.tiktok.com/v2/auth/authorize/?client_key=key"
}

func (stubTikTok) ExchangeCode(ctx context.Context, code string) (*tiktok.TokenResponse, error) {
	return &tiktok.TokenResponse{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (stubTikTok) UploadVideo(ctx context.Context, video io.Reader, size int64, caption, accessToken string) (*tiktok.UploadResult, error) {
	return &tiktok.UploadResult{VideoID: "tt123", ShareURL: "https://tiktok.com/@user/video/tt123"}, nil
}

type publishFixture struct {
	e         *echo.Echo
	artifacts *stubArtifacts
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()

	artifacts := &stubArtifacts{data: make(map[string][]byte)}
	publish := service.NewPublishService(artifacts, stubYouTube{}, stubTikTok{}, service.PublishConfig{
		YouTubeClientID:     "client-id",
		YouTubeClientSecret: "client-secret",
		BackendURL:          "http://localhost:5000",
	})

	e := echo.New()
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	h := NewPublishHandler(publish)
	e.GET("/api/upload/youtube/auth-url", h.YouTubeAuthURL)
	e.GET("/api/upload/youtube/callback", h.YouTubeCallback)
	e.POST("/api/upload/youtube", h.PublishYouTube)
	e.GET("/api/upload/tiktok/auth-url", h.TikTokAuthURL)
	e.GET("/api/upload/tiktok/callback", h.TikTokCallback)
	e.POST("/api/upload/tiktok", h.PublishTikTok)

	return &publishFixture{e: e, artifacts: artifacts}
}

func (f *publishFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestPublishHandler_YouTubeAuthURL(t *testing.T) {
	f := newPublishFixture(t)

	rec := f.do(http.MethodGet, "/api/upload/youtube/auth-url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Contains(t, data["authUrl"], "accounts.google.com")
	assert.Contains(t, data["authUrl"], "client-id")
}

func TestPublishHandler_TikTokAuthURL(t *testing.T) {
	f := newPublishFixture(t)

	rec := f.do(http.MethodGet, "/api/upload/tiktok/auth-url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Contains(t, data["authUrl"], "tiktok.com")
}

func TestPublishHandler_TikTokCallback(t *testing.T) {
	f := newPublishFixture(t)

	rec := f.do(http.MethodGet, "/api/upload/tiktok/callback?code=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, "at", data["accessToken"])
	assert.Equal(t, "rt", data["refreshToken"])
}

func TestPublishHandler_CallbackMissingCode(t *testing.T) {
	f := newPublishFixture(t)

	for _, path := range []string{
		"/api/upload/youtube/callback",
		"/api/upload/tiktok/callback",
	} {
		rec := f.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "invalid_input", env.Error.Code)
	}
}

func TestPublishHandler_PublishYouTube(t *testing.T) {
	f := newPublishFixture(t)
	require.NoError(t, f.artifacts.Save(context.Background(), "clip1", strings.NewReader("video data")))

	body := `{"clipId": "clip1", "title": "My Clip", "accessToken": "token"}`
	rec := f.do(http.MethodPost, "/api/upload/youtube", body)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "yt123", data["videoId"])
	assert.Equal(t, "https://youtube.com/shorts/yt123", data["url"])
}

func TestPublishHandler_PublishYouTubeValidation(t *testing.T) {
	f := newPublishFixture(t)

	body := `{"clipId": "clip1", "title": "My Clip"}`
	rec := f.do(http.MethodPost, "/api/upload/youtube", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestPublishHandler_PublishYouTubeUnknownClip(t *testing.T) {
	f := newPublishFixture(t)

	body := `{"clipId": "missing", "title": "My Clip", "accessToken": "token"}`
	rec := f.do(http.MethodPost, "/api/upload/youtube", body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestPublishHandler_PublishTikTok(t *testing.T) {
	f := newPublishFixture(t)
	require.NoError(t, f.artifacts.Save(context.Background(), "clip1", strings.NewReader("video data")))

	body := `{"clipId": "clip1", "caption": "check this out", "hashtags": ["fyp"], "accessToken": "token"}`
	rec := f.do(http.MethodPost, "/api/upload/tiktok", body)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "tt123", data["videoId"])
	assert.Equal(t, "https://tiktok.com/@user/video/tt123", data["shareUrl"])
}
