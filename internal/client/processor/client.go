// Package processor talks to the external video-processing service that
// performs the actual clip extraction, vertical crop, and caption burn-in.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"
)

// ClipRequest is the payload for a catalog-sourced clip.
type ClipRequest struct {
	ClipID        string      `json:"clipId"`
	ContentID     json.Number `json:"contentId"`
	ContentType   string      `json:"contentType,omitempty"`
	Season        int         `json:"season,omitempty"`
	Episode       int         `json:"episode,omitempty"`
	Length        int         `json:"length"`
	ClipType      string      `json:"clipType,omitempty"`
	Hashtags      []string    `json:"hashtags,omitempty"`
	StartTime     float64     `json:"startTime,omitempty"`
	CustomCaption string      `json:"customCaption,omitempty"`
}

// UploadRequest is the payload for a user-uploaded video. VideoPath points
// at the staged upload on the local filesystem.
type UploadRequest struct {
	ClipID      string
	VideoPath   string
	Length      int
	AddCaptions bool
	Hashtags    []string
	CustomText  string
}

// Result describes a finished processing run.
type Result struct {
	ClipID   string `json:"clipId"`
	Status   string `json:"status"`
	VideoURL string `json:"videoUrl"`
	Message  string `json:"message,omitempty"`
}

// Client is an HTTP client for the processing service. Processing can take
// minutes, so the client carries one long timeout for the whole exchange.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a processor client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// CreateClip asks the processing service to produce a clip from catalog
// content. The request blocks until the service finishes or the timeout
// elapses.
func (c *Client) CreateClip(ctx context.Context, clipReq ClipRequest) (*Result, error) {
	body, err := json.Marshal(clipReq)
	if err != nil {
		return nil, fmt.Errorf("marshal clip request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/process/create-clip", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// ProcessUpload streams a staged upload plus its shaping parameters to the
// processing service as a multipart form. The form body is produced through
// a pipe so the video streams from disk into the request; uploads run to
// hundreds of megabytes and must never be buffered whole.
func (c *Client) ProcessUpload(ctx context.Context, upReq UploadRequest) (*Result, error) {
	file, err := os.Open(upReq.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}

	hashtags, err := json.Marshal(upReq.Hashtags)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("marshal hashtags: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer file.Close()
		pw.CloseWithError(writeUploadForm(mw, file, upReq, string(hashtags)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/process/uploaded-video", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

func writeUploadForm(mw *multipart.Writer, video io.Reader, upReq UploadRequest, hashtags string) error {
	part, err := mw.CreateFormFile("video", "video.mp4")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return fmt.Errorf("copy upload into form: %w", err)
	}

	fields := map[string]string{
		"clipId":      upReq.ClipID,
		"length":      strconv.Itoa(upReq.Length),
		"addCaptions": strconv.FormatBool(upReq.AddCaptions),
		"hashtags":    hashtags,
		"customText":  upReq.CustomText,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("processor returned status %d: %s", resp.StatusCode, body)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
