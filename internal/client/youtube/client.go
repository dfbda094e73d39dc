// Package youtube wraps the YouTube Data API v3 for clip discovery and the
// upload endpoint for publishing finished Shorts.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	apiBaseURL    = "https://www.googleapis.com/youtube/v3"
	uploadBaseURL = "https://www.googleapis.com/upload/youtube/v3"

	// Entertainment category.
	uploadCategoryID = "24"

	maxTitleLength = 100
)

// Client talks to the YouTube Data API. The API key covers read-only
// discovery; uploads use the caller-supplied OAuth access token.
type Client struct {
	httpClient *http.Client
	apiURL     string
	uploadURL  string
	apiKey     string
}

// New creates a YouTube client.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiURL:     apiBaseURL,
		uploadURL:  uploadBaseURL,
		apiKey:     apiKey,
	}
}

// SetBaseURLs overrides the API endpoints. Used by tests.
func (c *Client) SetBaseURLs(api, upload string) {
	c.apiURL = api
	c.uploadURL = upload
}

// Clip is one search result mapped for the frontend.
type Clip struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	EmbedURL     string `json:"embedUrl"`
	WatchURL     string `json:"watchUrl"`
}

// SearchClips finds short clips related to the query. Results are limited
// to videos under four minutes.
func (c *Client) SearchClips(ctx context.Context, query string, maxResults int) ([]Clip, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query+" clip short")
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("videoDuration", "short")
	params.Set("order", "relevance")

	var raw struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet snippet `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}

	clips := make([]Clip, 0, len(raw.Items))
	for _, item := range raw.Items {
		clips = append(clips, Clip{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			EmbedURL:     "https://www.youtube.com/embed/" + item.ID.VideoID,
			WatchURL:     "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}
	return clips, nil
}

type snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   struct {
		High struct {
			URL string `json:"url"`
		} `json:"high"`
	} `json:"thumbnails"`
}

// VideoDetails is the detail view of one video.
type VideoDetails struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	ViewCount   string `json:"viewCount"`
	LikeCount   string `json:"likeCount"`
	Thumbnail   string `json:"thumbnail"`
	EmbedURL    string `json:"embedUrl"`
	WatchURL    string `json:"watchUrl"`
}

// GetVideoDetails fetches snippet, duration, and statistics for a video.
func (c *Client) GetVideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("id", videoID)
	params.Set("part", "snippet,contentDetails,statistics")

	var raw struct {
		Items []struct {
			ID             string  `json:"id"`
			Snippet        snippet `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
			Statistics struct {
				ViewCount string `json:"viewCount"`
				LikeCount string `json:"likeCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/videos", params, &raw); err != nil {
		return nil, err
	}
	if len(raw.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	v := raw.Items[0]
	return &VideoDetails{
		VideoID:     v.ID,
		Title:       v.Snippet.Title,
		Description: v.Snippet.Description,
		Duration:    v.ContentDetails.Duration,
		ViewCount:   v.Statistics.ViewCount,
		LikeCount:   v.Statistics.LikeCount,
		Thumbnail:   v.Snippet.Thumbnails.High.URL,
		EmbedURL:    "https://www.youtube.com/embed/" + v.ID,
		WatchURL:    "https://www.youtube.com/watch?v=" + v.ID,
	}, nil
}

// UploadMetadata describes the published Short.
type UploadMetadata struct {
	Title       string
	Description string
	Tags        []string
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
}

// UploadVideo publishes the video stream to YouTube as a public Short via
// the multipart upload endpoint, authenticated with the caller's OAuth
// access token. The request body is produced through a pipe so the video
// streams into the upload instead of being buffered in memory.
func (c *Client) UploadVideo(ctx context.Context, video io.Reader, meta UploadMetadata, accessToken string) (*UploadResult, error) {
	title := meta.Title
	if len(title) > maxTitleLength {
		// Truncate on a rune boundary so a multi-byte title never turns
		// into invalid UTF-8.
		cut := maxTitleLength
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}

	metadata := map[string]any{
		"snippet": map[string]any{
			"title":       title,
			"description": meta.Description + "\n\n#Shorts",
			"tags":        meta.Tags,
			"categoryId":  uploadCategoryID,
		},
		"status": map[string]any{
			"privacyStatus":           "public",
			"selfDeclaredMadeForKids": false,
		},
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal upload metadata: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeRelatedBody(mw, metaJSON, video))
	}()

	uploadURL := c.uploadURL + "/videos?" + url.Values{
		"uploadType": {"multipart"},
		"part":       {"snippet,status"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("youtube upload returned status %d: %s", resp.StatusCode, body)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return &UploadResult{
		VideoID: uploaded.ID,
		URL:     "https://youtube.com/shorts/" + uploaded.ID,
	}, nil
}

func writeRelatedBody(mw *multipart.Writer, metaJSON []byte, video io.Reader) error {
	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return fmt.Errorf("write metadata part: %w", err)
	}

	videoPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"video/mp4"},
	})
	if err != nil {
		return fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(videoPart, video); err != nil {
		return fmt.Errorf("copy video into request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
