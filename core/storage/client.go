package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client defines the interface for storage operations.
type Client interface {
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// ListObjects lists objects in a bucket.
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	// GetObject downloads an object.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// StatObject returns object metadata without downloading it.
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	// GetBucketPolicy returns the bucket policy document, or "" if none is set.
	GetBucketPolicy(ctx context.Context, bucketName string) (string, error)
	// SetBucketPolicy replaces the bucket policy. An empty policy removes it.
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	// EndpointURL returns the endpoint the client talks to.
	EndpointURL() *url.URL
}

// NewClient creates a new Minio client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Response header timeout is left unset: large objects take a while
	// before the first byte when the backend restores them.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioClientWrapper{Client: minioClient, uniform: cfg.UniformAccess}, nil
}

type minioClientWrapper struct {
	*minio.Client
	uniform bool
}

func (c *minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

func (c *minioClientWrapper) GetBucketPolicy(ctx context.Context, bucketName string) (string, error) {
	if c.uniform {
		return "", uniformConfiguredError(bucketName)
	}
	return c.Client.GetBucketPolicy(ctx, bucketName)
}

func (c *minioClientWrapper) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	if c.uniform {
		return uniformConfiguredError(bucketName)
	}
	return c.Client.SetBucketPolicy(ctx, bucketName, policy)
}

func uniformConfiguredError(bucketName string) error {
	return minio.ErrorResponse{
		Code:       "AccessControlListNotSupported",
		Message:    "bucket is configured for uniform access",
		BucketName: bucketName,
		StatusCode: http.StatusBadRequest,
	}
}
