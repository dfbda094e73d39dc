package service

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/kanade/shortform/internal/client/tiktok"
	"github.com/kanade/shortform/internal/client/youtube"
	"github.com/kanade/shortform/internal/domain"
	"github.com/kanade/shortform/internal/storage"
)

// YouTubeUploader publishes a video stream to YouTube Shorts.
type YouTubeUploader interface {
	UploadVideo(ctx context.Context, video io.Reader, meta youtube.UploadMetadata, accessToken string) (*youtube.UploadResult, error)
}

// TikTokUploader publishes a video stream to TikTok.
type TikTokUploader interface {
	AuthURL() string
	ExchangeCode(ctx context.Context, code string) (*tiktok.TokenResponse, error)
	UploadVideo(ctx context.Context, video io.Reader, size int64, caption, accessToken string) (*tiktok.UploadResult, error)
}

// PublishConfig holds the OAuth application credentials.
type PublishConfig struct {
	YouTubeClientID     string
	YouTubeClientSecret string
	BackendURL          string
}

// PublishService resolves finished clips from storage and forwards them to
// the platform upload APIs. Tokens belong to the caller; nothing is stored
// server-side.
type PublishService struct {
	artifacts storage.Store
	yt        YouTubeUploader
	tt        TikTokUploader
	google    *oauth2.Config
}

// NewPublishService creates a PublishService.
func NewPublishService(artifacts storage.Store, yt YouTubeUploader, tt TikTokUploader, cfg PublishConfig) *PublishService {
	return &PublishService{
		artifacts: artifacts,
		yt:        yt,
		tt:        tt,
		google: &oauth2.Config{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/youtube.upload",
				"https://www.googleapis.com/auth/youtube",
			},
			RedirectURL: cfg.BackendURL + "/api/upload/youtube/callback",
		},
	}
}

// YouTubeAuthURL returns the Google OAuth consent URL for upload scopes.
func (s *PublishService) YouTubeAuthURL(state string) string {
	return s.google.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// TokenPair holds the provider tokens handed back to the caller.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// YouTubeCallback exchanges the authorization code for provider tokens.
func (s *PublishService) YouTubeCallback(ctx context.Context, code string) (*TokenPair, error) {
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("youtube token exchange: %w: %v", domain.ErrUpstream, err)
	}
	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// TikTokAuthURL returns the TikTok OAuth consent URL.
func (s *PublishService) TikTokAuthURL() string {
	return s.tt.AuthURL()
}

// TikTokCallback exchanges the authorization code for provider tokens.
func (s *PublishService) TikTokCallback(ctx context.Context, code string) (*TokenPair, error) {
	tokens, err := s.tt.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("tiktok token exchange: %w: %v", domain.ErrUpstream, err)
	}
	return &TokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// YouTubePublishParams describe the Short being published.
type YouTubePublishParams struct {
	ClipID      string
	Title       string
	Description string
	Tags        []string
	AccessToken string
}

// PublishToYouTube resolves the clip artifact and uploads it as a Short.
func (s *PublishService) PublishToYouTube(ctx context.Context, params YouTubePublishParams) (*youtube.UploadResult, error) {
	artifact, _, err := s.artifacts.Open(ctx, params.ClipID)
	if err != nil {
		return nil, err
	}
	defer artifact.Close()

	result, err := s.yt.UploadVideo(ctx, artifact, youtube.UploadMetadata{
		Title:       params.Title,
		Description: params.Description,
		Tags:        params.Tags,
	}, params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w: %v", domain.ErrUpstream, err)
	}
	return result, nil
}

// TikTokPublishParams describe the TikTok post being published.
type TikTokPublishParams struct {
	ClipID      string
	Caption     string
	Hashtags    []string
	AccessToken string
}

// PublishToTikTok resolves the clip artifact and uploads it to TikTok. The
// hashtags are appended to the caption, which is how TikTok expects them.
func (s *PublishService) PublishToTikTok(ctx context.Context, params TikTokPublishParams) (*tiktok.UploadResult, error) {
	artifact, size, err := s.artifacts.Open(ctx, params.ClipID)
	if err != nil {
		return nil, err
	}
	defer artifact.Close()

	caption := params.Caption
	for _, tag := range params.Hashtags {
		caption += " #" + tag
	}

	result, err := s.tt.UploadVideo(ctx, artifact, size, caption, params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("tiktok upload: %w: %v", domain.ErrUpstream, err)
	}
	return result, nil
}
