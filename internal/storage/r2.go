package storage

import (
	"context"
	"fmt"
	"time"

	"ms-booking/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const presignExpiry = 5 * time.Minute

// Client talks to the R2-compatible object store holding event images.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

func NewClient(cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Client{
		mc:        mc,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// PresignedUpload hands out a short-lived PUT URL for a direct browser
// upload, plus the public URL the object will be served from.
func (c *Client) PresignedUpload(ctx context.Context, objectKey string) (uploadURL, publicURL string, err error) {
	u, err := c.mc.PresignedPutObject(ctx, c.bucket, objectKey, presignExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for %s: %w", objectKey, err)
	}
	return u.String(), c.PublicURL(objectKey), nil
}

// Remove deletes an object by key.
func (c *Client) Remove(ctx context.Context, objectKey string) error {
	err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
	}
	return nil
}

func (c *Client) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/%s", c.publicURL, objectKey)
}
