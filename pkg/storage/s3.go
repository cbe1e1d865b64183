package storage

import (
	"context"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/security"
)

// S3Client fetches session blobs from an S3 bucket using the same
// uploads/{user}/{code}/{filename} key scheme the mobile uploader writes.
type S3Client struct {
	s3        *s3.Client
	bucket    string
	userID    string
	validator *security.Validator
}

// NewS3Client creates an S3-backed fetcher with anonymous credentials.
func NewS3Client(ctx context.Context, bucket, region, userID string, validator *security.Validator) (*S3Client, error) {
	slog.Info("s3_client_init", "bucket", bucket, "region", region)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		slog.Error("aws_config_load_failed", "error", err)
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &S3Client{
		s3:        s3.NewFromConfig(cfg),
		bucket:    bucket,
		userID:    userID,
		validator: validator,
	}, nil
}

// Fetch downloads one object and writes it to destDir/filename, returning
// the local path.
func (c *S3Client) Fetch(ctx context.Context, code, filename, destDir string) (string, error) {
	if err := c.validator.ValidateFilename(filename); err != nil {
		return "", err
	}

	key := path.Join("uploads", c.userID, code, filename)
	slog.Info("s3_fetch_start", "bucket", c.bucket, "key", key)

	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Error("s3_get_object_failed", "key", key, "error", err)
		return "", &errors.TransportError{Op: "fetch " + filename, Message: err.Error()}
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", errors.Wrap(err, "read object body")
	}
	if err := c.validator.ValidateFileSize(int64(len(data))); err != nil {
		return "", err
	}

	localPath, err := writeFile(destDir, filename, data)
	if err != nil {
		return "", err
	}

	slog.Info("s3_fetch_complete", "key", key, "size", len(data), "local_path", localPath)
	return localPath, nil
}
