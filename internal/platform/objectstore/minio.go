// Package objectstore keeps report evidence photos in an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rgdevment/billboard-registry/internal/classify"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("object storage not configured")

type Config struct {
	Endpoint        string // e.g. "localhost:9000"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

// Client uploads images to a single bucket. A Client built from a Config
// with an empty Endpoint is disabled.
type Client struct {
	mc      *minio.Client
	bucket  string
	enabled bool

	mu    sync.Mutex
	ready bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{enabled: false}, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket name is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: minio client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket, enabled: true}, nil
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// EnsureBucket creates the bucket on first use. Failures are retried on the next call.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.enabled {
		return ErrDisabled
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	c.ready = true
	return nil
}

// PutImage uploads img under key and returns its public URL.
func (c *Client) PutImage(ctx context.Context, key string, img classify.Image) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("objectstore: bucket %s: %w", c.bucket, err)
	}

	_, err := c.mc.PutObject(ctx, c.bucket, key,
		bytes.NewReader(img.Data), int64(len(img.Data)),
		minio.PutObjectOptions{ContentType: img.ContentType})
	if err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}

	return ObjectURL(c.mc.EndpointURL(), c.bucket, key), nil
}

// ObjectURL is the path-style address of key in bucket.
func ObjectURL(endpoint *url.URL, bucket, key string) string {
	u := url.URL{
		Scheme: endpoint.Scheme,
		Host:   endpoint.Host,
		Path:   "/" + bucket + "/" + key,
	}
	return u.String()
}
