// Package tmdb is a thin client for The Movie Database API v3, mapping its
// responses into the shapes the frontend consumes.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Client authenticates with either a v4 read access token (Bearer header)
// or the classic api_key query parameter.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	readAccessToken string
}

// New creates a TMDb client.
func New(apiKey, readAccessToken string) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		baseURL:         defaultBaseURL,
		apiKey:          apiKey,
		readAccessToken: readAccessToken,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// ContentSummary is one search or discover result.
type ContentSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	ReleaseDate  string  `json:"releaseDate"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"posterPath"`
	BackdropPath string  `json:"backdropPath"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"voteAverage"`
}

// SearchResult is a page of search results.
type SearchResult struct {
	Results      []ContentSummary `json:"results"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

type rawItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	MediaType    string  `json:"media_type"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
}

func (r rawItem) summary(fallbackType string) ContentSummary {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	mediaType := r.MediaType
	if mediaType == "" {
		mediaType = fallbackType
	}
	release := r.ReleaseDate
	if release == "" {
		release = r.FirstAirDate
	}
	return ContentSummary{
		ID:           r.ID,
		Title:        title,
		Type:         mediaType,
		ReleaseDate:  release,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Popularity:   r.Popularity,
		VoteAverage:  r.VoteAverage,
	}
}

// Search queries TMDb for TV shows, movies, or both ("multi").
func (c *Client) Search(ctx context.Context, query, mediaType string, page int) (*SearchResult, error) {
	if mediaType == "" {
		mediaType = "multi"
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var raw struct {
		Results      []rawItem `json:"results"`
		Page         int       `json:"page"`
		TotalPages   int       `json:"total_pages"`
		TotalResults int       `json:"total_results"`
	}
	if err := c.get(ctx, "/search/"+mediaType, params, &raw); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Results:      make([]ContentSummary, 0, len(raw.Results)),
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
	}
	for _, item := range raw.Results {
		result.Results = append(result.Results, item.summary(mediaType))
	}
	return result, nil
}

// Genre is a TMDb genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited actor.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profilePath"`
}

// CrewMember is one credited crew role.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	ProfilePath string `json:"profilePath"`
}

// Video is a trailer or clip attached to the content.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Season is a TV season summary.
type Season struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
}

// ContentDetails is the full detail view of a TV show or movie.
type ContentDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"releaseDate"`
	PosterPath   string  `json:"posterPath"`
	BackdropPath string  `json:"backdropPath"`
	Genres       []Genre `json:"genres"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"voteAverage"`
	Tagline      string  `json:"tagline"`
	Status       string  `json:"status"`

	NumberOfSeasons  int      `json:"numberOfSeasons,omitempty"`
	NumberOfEpisodes int      `json:"numberOfEpisodes,omitempty"`
	Seasons          []Season `json:"seasons,omitempty"`

	Cast   []CastMember `json:"cast"`
	Crew   []CrewMember `json:"crew"`
	Videos []Video      `json:"videos"`

	IMDbID string `json:"imdbId,omitempty"`
}

// Details fetches content details with credits, videos, and external ids
// appended. mediaType is "tv" or "movie".
func (c *Client) Details(ctx context.Context, id int64, mediaType string) (*ContentDetails, error) {
	if mediaType == "" {
		mediaType = "tv"
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,videos,external_ids")

	var raw struct {
		rawItem
		Genres           []Genre  `json:"genres"`
		Runtime          int      `json:"runtime"`
		EpisodeRunTime   []int    `json:"episode_run_time"`
		Tagline          string   `json:"tagline"`
		Status           string   `json:"status"`
		NumberOfSeasons  int      `json:"number_of_seasons"`
		NumberOfEpisodes int      `json:"number_of_episodes"`
		Seasons          []Season `json:"seasons"`
		Credits          struct {
			Cast []struct {
				ID          int64  `json:"id"`
				Name        string `json:"name"`
				Character   string `json:"character"`
				ProfilePath string `json:"profile_path"`
			} `json:"cast"`
			Crew []struct {
				ID          int64  `json:"id"`
				Name        string `json:"name"`
				Job         string `json:"job"`
				ProfilePath string `json:"profile_path"`
			} `json:"crew"`
		} `json:"credits"`
		Videos struct {
			Results []Video `json:"results"`
		} `json:"videos"`
		ExternalIDs struct {
			IMDbID string `json:"imdb_id"`
		} `json:"external_ids"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), params, &raw); err != nil {
		return nil, err
	}

	summary := raw.summary(mediaType)
	runtime := raw.Runtime
	if runtime == 0 && len(raw.EpisodeRunTime) > 0 {
		runtime = raw.EpisodeRunTime[0]
	}

	details := &ContentDetails{
		ID:               summary.ID,
		Title:            summary.Title,
		Type:             mediaType,
		Overview:         summary.Overview,
		ReleaseDate:      summary.ReleaseDate,
		PosterPath:       summary.PosterPath,
		BackdropPath:     summary.BackdropPath,
		Genres:           raw.Genres,
		Runtime:          runtime,
		VoteAverage:      summary.VoteAverage,
		Tagline:          raw.Tagline,
		Status:           raw.Status,
		NumberOfSeasons:  raw.NumberOfSeasons,
		NumberOfEpisodes: raw.NumberOfEpisodes,
		Seasons:          raw.Seasons,
		Videos:           raw.Videos.Results,
		IMDbID:           raw.ExternalIDs.IMDbID,
	}

	cast := raw.Credits.Cast
	if len(cast) > 10 {
		cast = cast[:10]
	}
	for _, p := range cast {
		details.Cast = append(details.Cast, CastMember{
			ID: p.ID, Name: p.Name, Character: p.Character, ProfilePath: p.ProfilePath,
		})
	}
	for _, p := range raw.Credits.Crew {
		switch p.Job {
		case "Director", "Producer", "Writer":
			details.Crew = append(details.Crew, CrewMember{
				ID: p.ID, Name: p.Name, Job: p.Job, ProfilePath: p.ProfilePath,
			})
		}
	}
	return details, nil
}

// Episode is one episode within a season.
type Episode struct {
	ID            int64   `json:"id"`
	EpisodeNumber int     `json:"episodeNumber"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"airDate"`
	Runtime       int     `json:"runtime"`
	StillPath     string  `json:"stillPath"`
	VoteAverage   float64 `json:"voteAverage"`
}

// SeasonEpisodes is a season with its full episode list.
type SeasonEpisodes struct {
	SeasonNumber int       `json:"seasonNumber"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"airDate"`
	Episodes     []Episode `json:"episodes"`
}

// SeasonEpisodes fetches the episode list for one season of a TV show.
func (c *Client) SeasonEpisodes(ctx context.Context, tvID int64, seasonNumber int) (*SeasonEpisodes, error) {
	var raw struct {
		SeasonNumber int    `json:"season_number"`
		Name         string `json:"name"`
		Overview     string `json:"overview"`
		AirDate      string `json:"air_date"`
		Episodes     []struct {
			ID            int64   `json:"id"`
			EpisodeNumber int     `json:"episode_number"`
			Name          string  `json:"name"`
			Overview      string  `json:"overview"`
			AirDate       string  `json:"air_date"`
			Runtime       int     `json:"runtime"`
			StillPath     string  `json:"still_path"`
			VoteAverage   float64 `json:"vote_average"`
		} `json:"episodes"`
	}
	path := fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber)
	if err := c.get(ctx, path, url.Values{}, &raw); err != nil {
		return nil, err
	}

	result := &SeasonEpisodes{
		SeasonNumber: raw.SeasonNumber,
		Name:         raw.Name,
		Overview:     raw.Overview,
		AirDate:      raw.AirDate,
		Episodes:     make([]Episode, 0, len(raw.Episodes)),
	}
	for _, ep := range raw.Episodes {
		result.Episodes = append(result.Episodes, Episode{
			ID:            ep.ID,
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			Overview:      ep.Overview,
			AirDate:       ep.AirDate,
			Runtime:       ep.Runtime,
			StillPath:     ep.StillPath,
			VoteAverage:   ep.VoteAverage,
		})
	}
	return result, nil
}

// DiscoverPage is one page of discover results, kept in TMDb's raw item
// shape for the library cache.
type DiscoverPage struct {
	Results    []ContentSummary `json:"results"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

func (c *Client) discover(ctx context.Context, path, fallbackType string, page int) (*DiscoverPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("vote_count.gte", "100")

	var raw struct {
		Results    []rawItem `json:"results"`
		Page       int       `json:"page"`
		TotalPages int       `json:"total_pages"`
	}
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	result := &DiscoverPage{
		Results:    make([]ContentSummary, 0, len(raw.Results)),
		Page:       raw.Page,
		TotalPages: raw.TotalPages,
	}
	for _, item := range raw.Results {
		result.Results = append(result.Results, item.summary(fallbackType))
	}
	return result, nil
}

// DiscoverTVShows lists popular TV shows, most popular first.
func (c *Client) DiscoverTVShows(ctx context.Context, page int) (*DiscoverPage, error) {
	return c.discover(ctx, "/discover/tv", "tv", page)
}

// DiscoverMovies lists popular movies, most popular first.
func (c *Client) DiscoverMovies(ctx context.Context, page int) (*DiscoverPage, error) {
	return c.discover(ctx, "/discover/movie", "movie", page)
}

// ImageURL builds a full TMDb image URL for the given path.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.readAccessToken == "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.readAccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.readAccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
