package storage

import (
	"context"
	"errors"
	"os"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

// GCS uploads staged media to a Google Cloud Storage bucket.
type GCS struct {
	Client *storage.Client
	Bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (g *GCS) Upload(ctx context.Context, localPath, folder string) (string, error) {
	if g.Client == nil || g.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return helpers.UploadObject(ctx, g.Client, g.Bucket, objectKey(folder, localPath), contentType(f), f)
}
