package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 uploads staged media to an S3-compatible bucket.
type S3 struct {
	Client *s3.Client
	Bucket string
	// PublicBaseURL prefixes object keys in returned URLs, e.g. a CDN or MinIO host.
	PublicBaseURL string
}

func NewS3(client *s3.Client, bucket, publicBaseURL string) *S3 {
	return &S3{Client: client, Bucket: bucket, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *S3) Upload(ctx context.Context, localPath, folder string) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("s3 not configured")
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	key := objectKey(folder, localPath)
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(f)),
	})
	if err != nil {
		return "", err
	}
	return s.publicURL(key), nil
}

func (s *S3) publicURL(key string) string {
	if s.PublicBaseURL != "" {
		return s.PublicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.Bucket, key)
}
