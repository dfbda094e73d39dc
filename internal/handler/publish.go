package handler

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kanade/shortform/internal/domain"
	"github.com/kanade/shortform/internal/service"
)

// PublishHandler handles platform OAuth and clip publishing endpoints.
type PublishHandler struct {
	publish *service.PublishService
}

// NewPublishHandler creates a new PublishHandler.
func NewPublishHandler(publish *service.PublishService) *PublishHandler {
	return &PublishHandler{publish: publish}
}

// YouTubeAuthURL returns the Google OAuth consent URL for upload scopes.
func (h *PublishHandler) YouTubeAuthURL(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]string{
		"authUrl": h.publish.YouTubeAuthURL(generateState()),
	})
}

// YouTubeCallback exchanges the authorization code for provider tokens.
// Tokens are returned to the caller and not stored server-side.
func (h *PublishHandler) YouTubeCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: missing code parameter", domain.ErrInvalidInput)
	}

	tokens, err := h.publish.YouTubeCallback(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, tokens)
}

// TikTokAuthURL returns the TikTok OAuth consent URL.
func (h *PublishHandler) TikTokAuthURL(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]string{
		"authUrl": h.publish.TikTokAuthURL(),
	})
}

// TikTokCallback exchanges the authorization code for provider tokens.
func (h *PublishHandler) TikTokCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: missing code parameter", domain.ErrInvalidInput)
	}

	tokens, err := h.publish.TikTokCallback(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, tokens)
}

// YouTubePublishRequest is the body for publishing a clip to YouTube Shorts.
type YouTubePublishRequest struct {
	ClipID      string   `json:"clipId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	AccessToken string   `json:"accessToken" validate:"required"`
}

// PublishYouTube uploads a finished clip to YouTube Shorts.
func (h *PublishHandler) PublishYouTube(c echo.Context) error {
	var req YouTubePublishRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.publish.PublishToYouTube(c.Request().Context(), service.YouTubePublishParams{
		ClipID:      req.ClipID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]any{
		"success": true,
		"videoId": result.VideoID,
		"url":     result.URL,
	})
}

// TikTokPublishRequest is the body for publishing a clip to TikTok.
type TikTokPublishRequest struct {
	ClipID      string   `json:"clipId" validate:"required"`
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	AccessToken string   `json:"accessToken" validate:"required"`
}

// PublishTikTok uploads a finished clip to TikTok.
func (h *PublishHandler) PublishTikTok(c echo.Context) error {
	var req TikTokPublishRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.publish.PublishToTikTok(c.Request().Context(), service.TikTokPublishParams{
		ClipID:      req.ClipID,
		Caption:     req.Caption,
		Hashtags:    req.Hashtags,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]any{
		"success":  true,
		"videoId":  result.VideoID,
		"shareUrl": result.ShareURL,
	})
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}
