package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kanade/shortform/internal/client/processor"
	"github.com/kanade/shortform/internal/domain"
	"github.com/kanade/shortform/internal/storage"
)

// JobStore defines the job registry interface consumed by ClipService.
type JobStore interface {
	Create(job domain.ClipJob) error
	Get(id string) (*domain.ClipJob, error)
	Complete(id, videoURL string) error
	Fail(id, message string) error
	Delete(id string) error
}

// ProcessorGateway is the boundary to the external video-processing service.
type ProcessorGateway interface {
	CreateClip(ctx context.Context, req processor.ClipRequest) (*processor.Result, error)
	ProcessUpload(ctx context.Context, req processor.UploadRequest) (*processor.Result, error)
}

// ClipConfig holds clip processing limits and directories.
type ClipConfig struct {
	MaxClipLength int
	UploadDir     string
}

// ClipService accepts clip requests, registers jobs, and hands the actual
// processing to the gateway on the background runner. The creating request
// never waits on the gateway; clients poll job status instead.
type ClipService struct {
	jobs      JobStore
	gateway   ProcessorGateway
	artifacts storage.Store
	runner    *Runner
	cfg       ClipConfig
}

// NewClipService creates a ClipService.
func NewClipService(jobs JobStore, gateway ProcessorGateway, artifacts storage.Store, runner *Runner, cfg ClipConfig) *ClipService {
	return &ClipService{
		jobs:      jobs,
		gateway:   gateway,
		artifacts: artifacts,
		runner:    runner,
		cfg:       cfg,
	}
}

// CreateClipParams are the shaping parameters for a catalog-sourced clip.
type CreateClipParams struct {
	ContentID     json.Number
	ContentType   string
	Season        int
	Episode       int
	Length        int
	ClipType      string
	Hashtags      []string
	StartTime     float64
	CustomCaption string
}

// CreateClip validates the request, registers a processing job, and
// dispatches the gateway call. The returned job is already queryable.
func (s *ClipService) CreateClip(params CreateClipParams) (*domain.ClipJob, error) {
	if params.Length > s.cfg.MaxClipLength {
		return nil, &domain.ValidationError{
			Field:   "length",
			Message: fmt.Sprintf("exceeds maximum of %d seconds", s.cfg.MaxClipLength),
		}
	}

	job, err := s.register()
	if err != nil {
		return nil, err
	}

	req := processor.ClipRequest{
		ClipID:        job.ID,
		ContentID:     params.ContentID,
		ContentType:   params.ContentType,
		Season:        params.Season,
		Episode:       params.Episode,
		Length:        params.Length,
		ClipType:      params.ClipType,
		Hashtags:      params.Hashtags,
		StartTime:     params.StartTime,
		CustomCaption: params.CustomCaption,
	}
	ok := s.runner.Submit(func(ctx context.Context) {
		result, err := s.gateway.CreateClip(ctx, req)
		s.finish(job.ID, result, err)
	})
	if !ok {
		s.rejectDispatch(job.ID)
	}

	return job, nil
}

// UploadClipParams are the shaping parameters for an uploaded video.
type UploadClipParams struct {
	Length      int
	AddCaptions bool
	Hashtags    []string
	CustomText  string

	// Ext is the original file extension including the dot.
	Ext string
}

// UploadClip stages the uploaded video on disk, registers a processing job,
// and dispatches the multipart gateway call.
func (s *ClipService) UploadClip(params UploadClipParams, video io.Reader) (*domain.ClipJob, error) {
	if params.Length > s.cfg.MaxClipLength {
		return nil, &domain.ValidationError{
			Field:   "length",
			Message: fmt.Sprintf("exceeds maximum of %d seconds", s.cfg.MaxClipLength),
		}
	}

	job, err := s.register()
	if err != nil {
		return nil, err
	}

	stagedPath, err := s.stageUpload(job.ID, params.Ext, video)
	if err != nil {
		// The job was just registered and nothing references it yet.
		_ = s.jobs.Delete(job.ID)
		return nil, err
	}

	req := processor.UploadRequest{
		ClipID:      job.ID,
		VideoPath:   stagedPath,
		Length:      params.Length,
		AddCaptions: params.AddCaptions,
		Hashtags:    params.Hashtags,
		CustomText:  params.CustomText,
	}
	ok := s.runner.Submit(func(ctx context.Context) {
		result, err := s.gateway.ProcessUpload(ctx, req)
		s.removeStaged(job.ID, stagedPath)
		s.finish(job.ID, result, err)
	})
	if !ok {
		s.removeStaged(job.ID, stagedPath)
		s.rejectDispatch(job.ID)
	}

	return job, nil
}

// rejectDispatch records a job whose background dispatch was refused, so it
// never lingers in processing with no task behind it.
func (s *ClipService) rejectDispatch(clipID string) {
	slog.Warn("processing dispatch rejected", "clip_id", clipID)
	if err := s.jobs.Fail(clipID, "failed to process clip"); err != nil {
		slog.Error("record dispatch rejection", "clip_id", clipID, "error", err)
	}
}

// removeStaged deletes the staged upload once the gateway is done with it.
func (s *ClipService) removeStaged(clipID, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove staged upload", "clip_id", clipID, "path", path, "error", err)
	}
}

func (s *ClipService) register() (*domain.ClipJob, error) {
	job := domain.ClipJob{
		ID:        uuid.NewString(),
		Status:    domain.JobStatusProcessing,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobs.Create(job); err != nil {
		return nil, fmt.Errorf("register job: %w", err)
	}
	return &job, nil
}

func (s *ClipService) stageUpload(clipID, ext string, video io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, clipID+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, video); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write staged upload: %w", err)
	}
	return path, nil
}

// finish records the gateway outcome. Failures are logged and stored, never
// surfaced to the request that created the job.
func (s *ClipService) finish(clipID string, result *processor.Result, err error) {
	if err != nil {
		slog.Error("clip processing failed", "clip_id", clipID, "error", err)
		if failErr := s.jobs.Fail(clipID, "failed to process clip"); failErr != nil {
			slog.Error("record job failure", "clip_id", clipID, "error", failErr)
		}
		return
	}

	if err := s.jobs.Complete(clipID, result.VideoURL); err != nil {
		slog.Error("record job completion", "clip_id", clipID, "error", err)
		return
	}
	slog.Info("clip processing completed", "clip_id", clipID, "video_url", result.VideoURL)
}

// Status returns the current job record verbatim.
func (s *ClipService) Status(clipID string) (*domain.ClipJob, error) {
	return s.jobs.Get(clipID)
}

// Download resolves a job to its deliverable.
type Download struct {
	Job *domain.ClipJob

	// Artifact is the stored clip stream; nil when Missing is set.
	Artifact io.ReadCloser
	Size     int64

	// Missing marks a completed job whose artifact cannot be found in
	// storage. The delivery handler reports this explicitly instead of
	// substituting a different media file.
	Missing bool
}

// Download resolves a clip id to a deliverable artifact. Jobs that are still
// processing yield domain.ErrNotReady; failed jobs yield domain.ErrNotFound
// for the artifact.
func (s *ClipService) Download(ctx context.Context, clipID string) (*Download, error) {
	job, err := s.jobs.Get(clipID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case domain.JobStatusProcessing:
		return nil, fmt.Errorf("clip %s still processing: %w", clipID, domain.ErrNotReady)
	case domain.JobStatusFailed:
		return nil, fmt.Errorf("clip %s failed: %w", clipID, domain.ErrNotFound)
	}

	artifact, size, err := s.artifacts.Open(ctx, clipID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Download{Job: job, Missing: true}, nil
		}
		return nil, err
	}
	return &Download{Job: job, Artifact: artifact, Size: size}, nil
}

// UserClips returns the clips owned by a user. Jobs carry no owner
// association yet, so the list is always empty.
func (s *ClipService) UserClips(userID string) []domain.ClipJob {
	return []domain.ClipJob{}
}
