package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kanade/shortform/internal/domain"
	"github.com/kanade/shortform/internal/service"
)

// allowedUploadExts is the extension allow-list for user-uploaded videos.
var allowedUploadExts = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

// ClipHandler handles clip creation, status, and delivery endpoints.
type ClipHandler struct {
	clips         *service.ClipService
	maxUploadSize int64
}

// NewClipHandler creates a new ClipHandler. maxUploadSize caps uploaded
// video files in bytes.
func NewClipHandler(clips *service.ClipService, maxUploadSize int64) *ClipHandler {
	return &ClipHandler{clips: clips, maxUploadSize: maxUploadSize}
}

// CreateClipRequest is the body for a catalog-sourced clip.
type CreateClipRequest struct {
	ContentID     json.Number `json:"contentId" validate:"required"`
	ContentType   string      `json:"contentType"`
	Season        int         `json:"season"`
	Episode       int         `json:"episode"`
	Length        int         `json:"length" validate:"required,gt=0"`
	ClipType      string      `json:"clipType"`
	Hashtags      []string    `json:"hashtags"`
	StartTime     float64     `json:"startTime"`
	CustomCaption string      `json:"customCaption"`
}

// Create accepts a catalog clip request and responds before processing
// starts. Clients poll the status endpoint with the returned clip id.
func (h *ClipHandler) Create(c echo.Context) error {
	var req CreateClipRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.clips.CreateClip(service.CreateClipParams{
		ContentID:     req.ContentID,
		ContentType:   req.ContentType,
		Season:        req.Season,
		Episode:       req.Episode,
		Length:        req.Length,
		ClipType:      req.ClipType,
		Hashtags:      req.Hashtags,
		StartTime:     req.StartTime,
		CustomCaption: req.CustomCaption,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusAccepted, map[string]any{
		"clipId":  job.ID,
		"status":  job.Status,
		"message": "Clip creation started",
	})
}

// Upload accepts a user video plus shaping parameters as a multipart form
// and responds before processing starts.
func (h *ClipHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return &domain.ValidationError{Field: "video", Message: "a video file is required"}
	}
	if fileHeader.Size > h.maxUploadSize {
		return &domain.ValidationError{
			Field:   "video",
			Message: fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxUploadSize),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		return &domain.ValidationError{
			Field:   "video",
			Message: "invalid file type, only mp4, avi, mov, and mkv are allowed",
		}
	}

	length, err := strconv.Atoi(c.FormValue("length"))
	if err != nil || length <= 0 {
		return &domain.ValidationError{Field: "length", Message: "a positive length in seconds is required"}
	}

	var hashtags []string
	if raw := c.FormValue("hashtags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &hashtags); err != nil {
			return &domain.ValidationError{Field: "hashtags", Message: "must be a JSON array of strings"}
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	job, err := h.clips.UploadClip(service.UploadClipParams{
		Length:      length,
		AddCaptions: c.FormValue("addCaptions") == "true",
		Hashtags:    hashtags,
		CustomText:  c.FormValue("customText"),
		Ext:         ext,
	}, file)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusAccepted, map[string]any{
		"clipId":  job.ID,
		"status":  job.Status,
		"message": "Video upload successful, processing started",
	})
}

// Status returns the current job record verbatim.
func (h *ClipHandler) Status(c echo.Context) error {
	job, err := h.clips.Status(c.Param("clipId"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}

// Download streams the finished clip. A completed job whose artifact is
// missing from storage gets an explicit plain-text notice instead of media,
// so clients can tell the difference.
func (h *ClipHandler) Download(c echo.Context) error {
	clipID := c.Param("clipId")

	dl, err := h.clips.Download(c.Request().Context(), clipID)
	if err != nil {
		return err
	}

	if dl.Missing {
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="clip-%s-missing.txt"`, clipID))
		notice := fmt.Sprintf(
			"Clip %s finished processing but its video file is not available in storage.\n"+
				"Reported video URL: %s\n"+
				"Please create a new clip request.\n",
			clipID, dl.Job.VideoURL)
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(notice))
	}
	defer dl.Artifact.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="clip-%s.mp4"`, clipID))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(dl.Size, 10))
	return c.Stream(http.StatusOK, "video/mp4", dl.Artifact)
}

// UserClips lists clips for a user. Jobs have no owner association, so the
// list is always empty.
func (h *ClipHandler) UserClips(c echo.Context) error {
	return JSON(c, http.StatusOK, h.clips.UserClips(c.Param("userId")))
}
