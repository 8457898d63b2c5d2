package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore persists an uploaded image payload and returns a stable URL.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// DecodeInlineImage parses a "data:image/<sub>;base64,<payload>" field.
// Plain URLs (or anything else) return ok=false and are stored as-is.
func DecodeInlineImage(field string) (data []byte, contentType string, ok bool) {
	if !strings.HasPrefix(field, "data:image/") {
		return nil, "", false
	}
	meta, payload, found := strings.Cut(field, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	contentType = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, contentType, true
}

// S3ImageStore stores recipe images in an S3 bucket with public-read URLs.
type S3ImageStore struct {
	client *s3.Client
	bucket string
}

func NewS3ImageStore(client *s3.Client, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := "png"
	if _, sub, found := strings.Cut(contentType, "/"); found && sub != "" {
		ext = sub
	}
	key := fmt.Sprintf("recipes/image/%s.%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	log.Printf("uploaded recipe image to %s", url)
	return url, nil
}
