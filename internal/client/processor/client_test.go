package processor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateClip(t *testing.T) {
	var got ClipRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process/create-clip", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(Result{
			ClipID:   got.ClipID,
			Status:   "completed",
			VideoURL: "/videos/" + got.ClipID + ".mp4",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, 10*time.Second)
	result, err := client.CreateClip(context.Background(), ClipRequest{
		ClipID:      "abc",
		ContentID:   json.Number("42"),
		ContentType: "tv",
		Season:      1,
		Episode:     3,
		Length:      30,
		Hashtags:    []string{"comedy"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", got.ClipID)
	assert.Equal(t, json.Number("42"), got.ContentID)
	assert.Equal(t, 30, got.Length)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, "/videos/abc.mp4", result.VideoURL)
}

func TestClient_CreateClipErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"ffmpeg crashed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, 10*time.Second)
	_, err := client.CreateClip(context.Background(), ClipRequest{ClipID: "abc", Length: 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "ffmpeg crashed")
}

func TestClient_ProcessUpload(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "abc.mp4")
	require.NoError(t, os.WriteFile(staged, []byte("fake video bytes"), 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process/uploaded-video", r.URL.Path)
		// The body is piped, not buffered, so the request goes out chunked
		// with no up-front length.
		assert.Equal(t, int64(-1), r.ContentLength)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		assert.Equal(t, "abc", r.FormValue("clipId"))
		assert.Equal(t, "60", r.FormValue("length"))
		assert.Equal(t, "true", r.FormValue("addCaptions"))
		assert.Equal(t, `["gaming"]`, r.FormValue("hashtags"))
		assert.Equal(t, "hello", r.FormValue("customText"))

		file, _, err := r.FormFile("video")
		require.NoError(t, err)
		defer file.Close()
		b := make([]byte, 32)
		n, _ := file.Read(b)
		assert.Equal(t, "fake video bytes", string(b[:n]))

		json.NewEncoder(w).Encode(Result{ClipID: "abc", Status: "completed", VideoURL: "/videos/abc.mp4"})
	}))
	defer srv.Close()

	client := New(srv.URL, 10*time.Second)
	result, err := client.ProcessUpload(context.Background(), UploadRequest{
		ClipID:      "abc",
		VideoPath:   staged,
		Length:      60,
		AddCaptions: true,
		Hashtags:    []string{"gaming"},
		CustomText:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "/videos/abc.mp4", result.VideoURL)
}

func TestClient_ProcessUploadMissingFile(t *testing.T) {
	client := New("http://localhost:1", 10*time.Second)
	_, err := client.ProcessUpload(context.Background(), UploadRequest{
		ClipID:    "abc",
		VideoPath: filepath.Join(t.TempDir(), "nope.mp4"),
		Length:    60,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open staged upload")
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts the background read that
		// detects the client disconnect and cancels r.Context().
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := New(srv.URL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.CreateClip(ctx, ClipRequest{ClipID: "abc", Length: 30})
	require.Error(t, err)
}
