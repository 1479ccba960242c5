package r2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"path"

	"quizgen/internal/config"
	"quizgen/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client archives generated question sets to a Cloudflare R2 bucket.
type Client struct {
	s3Client   *s3.Client
	bucketName string
	publicURL  string // e.g. https://pub-xxxxxxxx.r2.dev
}

// NewClient creates an R2 client from cfg.
// It returns (nil, nil) when R2 is not fully configured so archiving can be skipped.
func NewClient(ctx context.Context, cfg config.R2Config) (*Client, error) {
	if !cfg.Enabled() {
		log.Println("WARN: Cloudflare R2 variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY). Question sets will not be archived.")
		return nil, nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion("auto"), // R2 is region-agnostic
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		// R2 rejects the SDK's default trailing checksums on some operations.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	log.Printf("INFO: R2 client initialized for bucket '%s'", cfg.BucketName)
	return &Client{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}, nil
}

// ObjectKey returns the key a question set is archived under.
func ObjectKey(set *models.QuestionSet) string {
	return fmt.Sprintf("question-sets/%s.json", set.ID)
}

// ArchiveQuestionSet uploads set as JSON and returns its public URL, or the
// object key when no public URL is configured.
func (c *Client) ArchiveQuestionSet(ctx context.Context, set *models.QuestionSet) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("R2 client not initialized, skipping upload")
	}

	body, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode question set %s: %w", set.ID, err)
	}

	objectKey := ObjectKey(set)
	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload question set to R2 (key: %s): %w", objectKey, err)
	}

	if c.publicURL == "" {
		return objectKey, nil
	}
	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		log.Printf("ERROR: Failed to parse R2 public base URL '%s': %v", c.publicURL, err)
		return "", fmt.Errorf("invalid R2 public base URL configured")
	}
	baseURL.Path = path.Join(baseURL.Path, objectKey)
	return baseURL.String(), nil
}
