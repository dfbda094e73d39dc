// Package tiktok wraps the TikTok Content Posting API v2. TikTok's OAuth
// dialect uses client_key instead of client_id, so the authorization URL and
// token exchange are built by hand rather than through x/oauth2.
package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	apiBaseURL   = "https://open.tiktokapis.com/v2"
	authorizeURL = "https://www.tiktok.com/v2/auth/authorize"

	// Upload chunking advertised in the init call.
	chunkSize = 5 * 1024 * 1024
)

// Client talks to the TikTok open API using caller-supplied access tokens.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientKey    string
	clientSecret string
	redirectURI  string
}

// New creates a TikTok client. redirectURI is the OAuth callback URL
// registered with TikTok.
func New(clientKey, clientSecret, redirectURI string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		baseURL:      apiBaseURL,
		clientKey:    clientKey,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// AuthURL returns the user-facing authorization URL.
func (c *Client) AuthURL() string {
	params := url.Values{}
	params.Set("client_key", c.clientKey)
	params.Set("scope", "video.upload,video.publish")
	params.Set("response_type", "code")
	params.Set("redirect_uri", c.redirectURI)
	return authorizeURL + "?" + params.Encode()
}

// TokenResponse holds the tokens returned by TikTok's token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
	Scope        string `json:"scope"`
}

// ExchangeCode trades an authorization code for access and refresh tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	return c.token(ctx, map[string]string{
		"client_key":    c.clientKey,
		"client_secret": c.clientSecret,
		"code":          code,
		"grant_type":    "authorization_code",
		"redirect_uri":  c.redirectURI,
	})
}

// RefreshToken trades a refresh token for a fresh token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.token(ctx, map[string]string{
		"client_key":    c.clientKey,
		"client_secret": c.clientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (c *Client) token(ctx context.Context, payload map[string]string) (*TokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiktok token endpoint returned status %d", resp.StatusCode)
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tokens, nil
}

// UploadResult is the outcome of a published video.
type UploadResult struct {
	VideoID  string `json:"videoId"`
	ShareURL string `json:"shareUrl"`
}

// UploadVideo publishes a video through the three-step direct-post flow:
// init, file transfer to the returned upload URL, then a status fetch for
// the share URL.
func (c *Client) UploadVideo(ctx context.Context, video io.Reader, size int64, caption, accessToken string) (*UploadResult, error) {
	publishID, uploadURL, err := c.initUpload(ctx, size, caption, accessToken)
	if err != nil {
		return nil, err
	}

	if err := c.transferFile(ctx, uploadURL, video, size); err != nil {
		return nil, err
	}

	shareURL, err := c.fetchStatus(ctx, publishID, accessToken)
	if err != nil {
		return nil, err
	}

	return &UploadResult{VideoID: publishID, ShareURL: shareURL}, nil
}

func (c *Client) initUpload(ctx context.Context, size int64, caption, accessToken string) (publishID, uploadURL string, err error) {
	totalChunks := size / chunkSize
	if size%chunkSize != 0 {
		totalChunks++
	}

	payload := map[string]any{
		"post_info": map[string]any{
			"title":                    caption,
			"privacy_level":            "PUBLIC_TO_EVERYONE",
			"disable_comment":          false,
			"disable_duet":             false,
			"disable_stitch":           false,
			"video_cover_timestamp_ms": 1000,
		},
		"source_info": map[string]any{
			"source":            "FILE_UPLOAD",
			"video_size":        size,
			"chunk_size":        chunkSize,
			"total_chunk_count": totalChunks,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal init request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/post/publish/video/init/", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send init request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("tiktok init returned status %d", resp.StatusCode)
	}

	var initResp struct {
		Data struct {
			PublishID string `json:"publish_id"`
			UploadURL string `json:"upload_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return "", "", fmt.Errorf("decode init response: %w", err)
	}
	return initResp.Data.PublishID, initResp.Data.UploadURL, nil
}

func (c *Client) transferFile(ctx context.Context, uploadURL string, video io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, video)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("tiktok file upload returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) fetchStatus(ctx context.Context, publishID, accessToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"publish_id": publishID})
	if err != nil {
		return "", fmt.Errorf("marshal status request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/post/publish/status/fetch/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tiktok status fetch returned status %d", resp.StatusCode)
	}

	var statusResp struct {
		Data struct {
			ShareURL string `json:"share_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return statusResp.Data.ShareURL, nil
}
