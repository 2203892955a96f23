package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"premier-open-group/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Client stores every object of the portal in one bucket. Logical buckets
// (gallery, posts, programs, ...) are the first segment of the object key.
type Client struct {
	s3Client  s3iface.S3API
	bucket    string
	publicURL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := newClient(s3.New(sess), cfg.S3BucketName, publicBaseURL(cfg))

	// Ensure bucket exists (for MinIO)
	if _, err := client.s3Client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(cfg.S3BucketName)}); err != nil {
		// Ignore the error if another service created the bucket first
		_, _ = client.s3Client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(cfg.S3BucketName)})
	}

	return client, nil
}

func newClient(api s3iface.S3API, bucket, publicURL string) *Client {
	return &Client{
		s3Client:  api,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func publicBaseURL(cfg *config.Config) string {
	endpoint := cfg.AWSEndpoint
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		// MinIO URL format
		protocol := "https"
		if cfg.S3UseSSL == "false" {
			protocol = "http"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s", protocol, endpoint, cfg.S3BucketName)
	}

	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3BucketName, region)
}

// Upload stores the object under key and returns the key.
func (c *Client) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return key, nil
}

func (c *Client) PublicURL(key string) string {
	return c.publicURL + "/" + strings.TrimPrefix(key, "/")
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// ReadAllSeeker adapts a plain reader for Upload.
func ReadAllSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return bytes.NewReader(data), nil
}
