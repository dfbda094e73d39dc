package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kanade/shortform/internal/client/tmdb"
)

// ContentDiscoverer is the TMDb discovery interface the library consumes.
type ContentDiscoverer interface {
	DiscoverTVShows(ctx context.Context, page int) (*tmdb.DiscoverPage, error)
	DiscoverMovies(ctx context.Context, page int) (*tmdb.DiscoverPage, error)
}

// LibraryConfig tunes how much content the library aggregates and how long
// it keeps it.
type LibraryConfig struct {
	// TVPages and MoviePages are how many TMDb discover pages (20 results
	// each) are aggregated per refresh.
	TVPages    int
	MoviePages int
	CacheTTL   time.Duration

	// PageDelay spaces out the upstream page fetches during a refresh.
	PageDelay time.Duration
}

// LibraryService serves curated popular-content lists backed by an
// in-memory cache over TMDb discover.
type LibraryService struct {
	tmdb ContentDiscoverer
	cfg  LibraryConfig

	tv     cacheEntry
	movies cacheEntry
}

// cacheEntry carries its own lock so a cold refresh of one list never
// blocks requests for the other.
type cacheEntry struct {
	mu        sync.Mutex
	items     []tmdb.ContentSummary
	fetchedAt time.Time
}

func (e *cacheEntry) fresh(ttl time.Duration) bool {
	return e.items != nil && time.Since(e.fetchedAt) < ttl
}

// NewLibraryService creates a LibraryService. Zero config fields get the
// defaults the frontend expects (roughly 500 shows and 1000 movies, cached
// for a day).
func NewLibraryService(discoverer ContentDiscoverer, cfg LibraryConfig) *LibraryService {
	if cfg.TVPages <= 0 {
		cfg.TVPages = 25
	}
	if cfg.MoviePages <= 0 {
		cfg.MoviePages = 50
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	return &LibraryService{tmdb: discoverer, cfg: cfg}
}

// Page is one page of library results.
type Page struct {
	Results      []tmdb.ContentSummary `json:"results"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"totalPages"`
	TotalResults int                   `json:"totalResults"`
}

// TopTVShows returns a page of the most popular TV shows.
func (s *LibraryService) TopTVShows(ctx context.Context, page, limit int) (*Page, error) {
	items, err := s.cached(ctx, &s.tv, s.cfg.TVPages, s.tmdb.DiscoverTVShows)
	if err != nil {
		return nil, err
	}
	return paginate(items, page, limit), nil
}

// TopMovies returns a page of the most popular movies.
func (s *LibraryService) TopMovies(ctx context.Context, page, limit int) (*Page, error) {
	items, err := s.cached(ctx, &s.movies, s.cfg.MoviePages, s.tmdb.DiscoverMovies)
	if err != nil {
		return nil, err
	}
	return paginate(items, page, limit), nil
}

func (s *LibraryService) cached(
	ctx context.Context,
	entry *cacheEntry,
	pages int,
	fetch func(ctx context.Context, page int) (*tmdb.DiscoverPage, error),
) ([]tmdb.ContentSummary, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.fresh(s.cfg.CacheTTL) {
		return entry.items, nil
	}

	slog.Info("refreshing library cache", "pages", pages)
	var items []tmdb.ContentSummary
	for i := 1; i <= pages; i++ {
		result, err := fetch(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("fetch discover page %d: %w", i, err)
		}
		items = append(items, result.Results...)

		if i < pages && s.cfg.PageDelay > 0 {
			select {
			case <-time.After(s.cfg.PageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	entry.items = items
	entry.fetchedAt = time.Now()
	return items, nil
}

func paginate(items []tmdb.ContentSummary, page, limit int) *Page {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &Page{
		Results:      items[start:end],
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}
}

// Streamer is one entry in the curated creator list.
type Streamer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Category    string `json:"category"`
	Subscribers string `json:"subscribers,omitempty"`
	Followers   string `json:"followers,omitempty"`
}

// StreamerPage is one page of the curated streamer list.
type StreamerPage struct {
	Results      []Streamer `json:"results"`
	Page         int        `json:"page"`
	Limit        int        `json:"limit"`
	TotalPages   int        `json:"totalPages"`
	TotalResults int        `json:"totalResults"`
}

// TopStreamers returns a page of the curated streamer list. The list is
// static; there is no upstream source for creator popularity.
func (s *LibraryService) TopStreamers(page, limit int) *StreamerPage {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	total := len(streamers)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &StreamerPage{
		Results:      streamers[start:end],
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}
}

var streamers = []Streamer{
	{ID: 1, Name: "MrBeast", Platform: "YouTube", Category: "Entertainment", Subscribers: "200M+"},
	{ID: 2, Name: "PewDiePie", Platform: "YouTube", Category: "Gaming/Commentary", Subscribers: "111M+"},
	{ID: 3, Name: "xQc", Platform: "Twitch", Category: "Gaming/Variety", Followers: "12M+"},
	{ID: 4, Name: "Ninja", Platform: "Twitch/YouTube", Category: "Gaming", Followers: "24M+"},
	{ID: 5, Name: "Pokimane", Platform: "Twitch", Category: "Gaming/Variety", Followers: "9M+"},
	{ID: 6, Name: "Kai Cenat", Platform: "Twitch", Category: "Variety", Followers: "13M+"},
	{ID: 7, Name: "Valkyrae", Platform: "YouTube", Category: "Gaming", Subscribers: "4M+"},
	{ID: 8, Name: "TimTheTatman", Platform: "YouTube", Category: "Gaming", Subscribers: "4M+"},
	{ID: 9, Name: "Shroud", Platform: "Twitch/YouTube", Category: "Gaming", Followers: "10M+"},
	{ID: 10, Name: "Markiplier", Platform: "YouTube", Category: "Gaming/Comedy", Subscribers: "36M+"},
	{ID: 11, Name: "Jacksepticeye", Platform: "YouTube", Category: "Gaming/Comedy", Subscribers: "30M+"},
	{ID: 12, Name: "Dream", Platform: "YouTube", Category: "Minecraft", Subscribers: "31M+"},
	{ID: 13, Name: "Ludwig", Platform: "YouTube", Category: "Variety", Subscribers: "6M+"},
	{ID: 14, Name: "HasanAbi", Platform: "Twitch", Category: "Commentary", Followers: "2M+"},
	{ID: 15, Name: "Sodapoppin", Platform: "Twitch", Category: "Variety", Followers: "9M+"},
	{ID: 16, Name: "Summit1g", Platform: "Twitch", Category: "Gaming", Followers: "6M+"},
	{ID: 17, Name: "VanossGaming", Platform: "YouTube", Category: "Gaming", Subscribers: "25M+"},
	{ID: 18, Name: "DanTDM", Platform: "YouTube", Category: "Gaming", Subscribers: "28M+"},
	{ID: 19, Name: "LazarBeam", Platform: "YouTube", Category: "Gaming", Subscribers: "21M+"},
	{ID: 20, Name: "Ibai", Platform: "Twitch", Category: "Variety", Followers: "13M+"},
	{ID: 21, Name: "AuronPlay", Platform: "Twitch", Category: "Variety", Followers: "15M+"},
	{ID: 22, Name: "Rubius", Platform: "Twitch", Category: "Gaming", Followers: "15M+"},
	{ID: 23, Name: "DrDisrespect", Platform: "YouTube", Category: "Gaming", Subscribers: "4M+"},
	{ID: 24, Name: "NICKMERCS", Platform: "YouTube", Category: "Gaming", Subscribers: "4M+"},
}
