package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kanade/shortform/internal/domain"
)

// S3Store implements Store on an S3 bucket. Objects are publicly readable
// under clips/<id>.mp4.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store creates an S3-backed artifact store.
func NewS3Store(ctx context.Context, accessKeyID, secretAccessKey, region, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (s *S3Store) key(clipID string) string {
	return "clips/" + clipID + ".mp4"
}

// Save uploads the artifact to the bucket.
func (s *S3Store) Save(ctx context.Context, clipID string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(clipID)),
		Body:        r,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", s.key(clipID), err)
	}
	return nil
}

// Open returns the artifact stream and its size.
func (s *S3Store) Open(ctx context.Context, clipID string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clipID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, fmt.Errorf("artifact %s: %w", clipID, domain.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("get object %s: %w", s.key(clipID), err)
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// Exists reports whether the object is present in the bucket.
func (s *S3Store) Exists(ctx context.Context, clipID string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clipID)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", s.key(clipID), err)
	}
	return true, nil
}

// Delete removes the object from the bucket.
func (s *S3Store) Delete(ctx context.Context, clipID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clipID)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", s.key(clipID), err)
	}
	return nil
}

// URL returns the public object URL.
func (s *S3Store) URL(clipID string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, s.key(clipID))
}
