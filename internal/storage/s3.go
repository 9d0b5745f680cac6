package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the subset of *s3.Client used by S3Uploader.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures an S3-compatible bucket. Endpoint is set for R2, MinIO and similar.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Uploader stores objects in an S3-compatible bucket.
type S3Uploader struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewS3Uploader loads the AWS config, preferring static credentials when provided.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, opts.Bucket, publicBase(opts, endpoint)), nil
}

func newS3Uploader(client objectAPI, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func publicBase(opts S3Options, endpoint string) string {
	switch {
	case opts.PublicURL != "" && !strings.Contains(opts.PublicURL, "localhost"):
		return opts.PublicURL
	case endpoint != "":
		return endpoint + "/" + opts.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
}

func (s *S3Uploader) Upload(ctx context.Context, localPath, folder string) (url string, err error) {
	if localPath == "" {
		return "", ErrEmptyPath
	}
	defer RemoveTemp(ctx, localPath)
	defer func() { record(folder, err) }()

	ctx, span := observability.StartStorageSpan(ctx, "s3", folder)
	defer span.End()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	key := objectKey(localPath, folder)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside the bucket are ignored.
func (s *S3Uploader) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}
