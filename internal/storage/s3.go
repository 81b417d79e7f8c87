package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage is the narrow contract the pipeline needs from object
// storage: put a named blob, learn success or failure. No versioning or
// consistency guarantees are assumed.
type ObjectStorage interface {
	Put(ctx context.Context, bucket, key, contentType string, body []byte) error
}

// s3API is the slice of the S3 client the uploader uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage implements ObjectStorage on Amazon S3.
type S3Storage struct {
	api s3API
}

// NewS3Storage builds the uploader from a resolved AWS config.
func NewS3Storage(cfg aws.Config) *S3Storage {
	return &S3Storage{api: s3.NewFromConfig(cfg)}
}

var _ ObjectStorage = (*S3Storage)(nil)

func (s *S3Storage) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
