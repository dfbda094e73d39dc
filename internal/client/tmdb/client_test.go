package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiKey, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(apiKey, token)
	client.SetBaseURL(srv.URL)
	return client
}

func TestClient_SearchMapsResults(t *testing.T) {
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "breaking", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "false", r.URL.Query().Get("include_adult"))

		json.NewEncoder(w).Encode(map[string]any{
			"page":          2,
			"total_pages":   5,
			"total_results": 100,
			"results": []map[string]any{
				{
					"id":             1396,
					"name":           "Breaking Bad",
					"first_air_date": "2008-01-20",
					"overview":       "A chemistry teacher...",
					"poster_path":    "/poster.jpg",
					"vote_average":   9.5,
				},
			},
		})
	})

	result, err := client.Search(context.Background(), "breaking", "tv", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 5, result.TotalPages)
	assert.Equal(t, 100, result.TotalResults)
	require.Len(t, result.Results, 1)

	item := result.Results[0]
	assert.Equal(t, int64(1396), item.ID)
	assert.Equal(t, "Breaking Bad", item.Title, "tv results use the name field")
	assert.Equal(t, "tv", item.Type)
	assert.Equal(t, "2008-01-20", item.ReleaseDate, "tv results use first_air_date")
	assert.Equal(t, 9.5, item.VoteAverage)
}

func TestClient_SearchDefaultsToMulti(t *testing.T) {
	var path string
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	_, err := client.Search(context.Background(), "breaking", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "/search/multi", path)
}

func TestClient_AuthAPIKey(t *testing.T) {
	client := newTestClient(t, "secret-key", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("api_key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	_, err := client.Search(context.Background(), "q", "tv", 1)
	require.NoError(t, err)
}

func TestClient_AuthBearerToken(t *testing.T) {
	client := newTestClient(t, "secret-key", "read-token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer read-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"), "api_key must not leak when a bearer token is set")
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	_, err := client.Search(context.Background(), "q", "tv", 1)
	require.NoError(t, err)
}

func TestClient_Details(t *testing.T) {
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396", r.URL.Path)
		assert.Equal(t, "credits,videos,external_ids", r.URL.Query().Get("append_to_response"))

		cast := make([]map[string]any, 0, 12)
		for i := 0; i < 12; i++ {
			cast = append(cast, map[string]any{"id": i, "name": "Actor", "character": "Role"})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 1396,
			"name":               "Breaking Bad",
			"first_air_date":     "2008-01-20",
			"episode_run_time":   []int{47},
			"tagline":            "All Hail the King",
			"status":             "Ended",
			"number_of_seasons":  5,
			"number_of_episodes": 62,
			"genres":             []map[string]any{{"id": 18, "name": "Drama"}},
			"credits": map[string]any{
				"cast": cast,
				"crew": []map[string]any{
					{"id": 100, "name": "Vince Gilligan", "job": "Director"},
					{"id": 101, "name": "Somebody", "job": "Gaffer"},
					{"id": 102, "name": "Someone Else", "job": "Writer"},
				},
			},
			"videos": map[string]any{
				"results": []map[string]any{{"id": "v1", "key": "abc", "site": "YouTube", "type": "Trailer"}},
			},
			"external_ids": map[string]any{"imdb_id": "tt0903747"},
		})
	})

	details, err := client.Details(context.Background(), 1396, "tv")
	require.NoError(t, err)

	assert.Equal(t, "Breaking Bad", details.Title)
	assert.Equal(t, "tv", details.Type)
	assert.Equal(t, 47, details.Runtime, "tv runtime comes from episode_run_time")
	assert.Equal(t, 5, details.NumberOfSeasons)
	assert.Equal(t, "tt0903747", details.IMDbID)
	assert.Len(t, details.Cast, 10, "cast is capped at 10")
	require.Len(t, details.Crew, 2, "crew keeps only directors, producers, and writers")
	assert.Equal(t, "Director", details.Crew[0].Job)
	assert.Equal(t, "Writer", details.Crew[1].Job)
	require.Len(t, details.Videos, 1)
	assert.Equal(t, "abc", details.Videos[0].Key)
}

func TestClient_SeasonEpisodes(t *testing.T) {
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396/season/2", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"season_number": 2,
			"name":          "Season 2",
			"air_date":      "2009-03-08",
			"episodes": []map[string]any{
				{"id": 1, "episode_number": 1, "name": "Seven Thirty-Seven", "runtime": 47},
				{"id": 2, "episode_number": 2, "name": "Grilled", "runtime": 48},
			},
		})
	})

	season, err := client.SeasonEpisodes(context.Background(), 1396, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, season.SeasonNumber)
	assert.Equal(t, "Season 2", season.Name)
	require.Len(t, season.Episodes, 2)
	assert.Equal(t, "Seven Thirty-Seven", season.Episodes[0].Name)
	assert.Equal(t, 1, season.Episodes[0].EpisodeNumber)
}

func TestClient_DiscoverTVShows(t *testing.T) {
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/tv", r.URL.Path)
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "100", r.URL.Query().Get("vote_count.gte"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))

		json.NewEncoder(w).Encode(map[string]any{
			"page":        3,
			"total_pages": 500,
			"results":     []map[string]any{{"id": 1, "name": "Some Show"}},
		})
	})

	page, err := client.DiscoverTVShows(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "tv", page.Results[0].Type)
}

func TestClient_UpstreamError(t *testing.T) {
	client := newTestClient(t, "key", "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Search(context.Background(), "q", "tv", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", ImageURL("/poster.jpg", "w500"))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/poster.jpg", ImageURL("/poster.jpg", ""))
	assert.Empty(t, ImageURL("", "w500"))
}
