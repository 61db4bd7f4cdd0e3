// Package objectstore implements the blob sink on S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the slice of the S3 client this sink uses; tests supply fakes.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client s3API
	bucket string
}

func New(client s3API, bucket string) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Write puts payload under key. Objects are created or overwritten;
// zero-length payloads are legitimate and stored as empty objects.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("empty key")
	}

	key = strings.TrimLeft(key, "/")
	length := int64(len(data))
	contentType := "application/json"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: &length,
		ContentType:   &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object key=%q: %w", key, err)
	}
	return nil
}
