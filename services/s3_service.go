package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/campuscarry/campuscarry-api/events"
)

// S3Interface is the slice of S3 the event archive needs
type S3Interface interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// S3Service writes objects to a single bucket
type S3Service struct {
	client *s3.Client
	bucket string
}

// S3Options configures the S3 client. Without static keys the default AWS credential chain is used.
type S3Options struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func NewS3Service(ctx context.Context, opts S3Options) (*S3Service, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Service{
		client: s3.NewFromConfig(awsConfig),
		bucket: opts.Bucket,
	}, nil
}

func (s *S3Service) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// EventArchive keeps an append-only copy of every realtime event in object storage,
// one JSON object per event, partitioned by day and match room.
type EventArchive struct {
	store S3Interface
}

func NewEventArchive(store S3Interface) *EventArchive {
	return &EventArchive{store: store}
}

func (a *EventArchive) Publish(ctx context.Context, event events.Event) error {
	body, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return a.store.PutObject(ctx, ArchiveKey(event), body, "application/json")
}

// ArchiveKey is the object key an event is stored under
func ArchiveKey(event events.Event) string {
	return fmt.Sprintf("events/%s/%s/%s.json",
		event.OccurredAt.UTC().Format("2006/01/02"), event.Room, event.ID)
}
