package imagehost

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/iliyamo/apparel-studio/internal/config"
)

// S3 is the Host backed by an S3-compatible bucket (AWS, MinIO, R2).
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3 builds the client from cfg.  Static credentials are used when
// both key and secret are set; otherwise the default AWS chain applies.
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("imagehost/s3: S3_BUCKET is not configured")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	awsConf, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("imagehost/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3{client: s3.NewFromConfig(awsConf, clientOpts...), bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (h *S3) url(key string) string { return h.baseURL + "/" + strings.TrimLeft(key, "/") }

func (h *S3) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (Asset, error) {
	if !ValidFolder(folder) {
		return Asset{}, ErrFolder
	}
	if !ValidContentType(contentType) {
		return Asset{}, ErrContentType
	}
	key := objectKey(folder, filename)
	in := &s3.PutObjectInput{
		Bucket:       aws.String(h.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := h.client.PutObject(ctx, in); err != nil {
		return Asset{}, fmt.Errorf("imagehost/s3: put %s: %w", key, err)
	}
	return Asset{PublicID: key, URL: h.url(key)}, nil
}

func (h *S3) Destroy(ctx context.Context, publicID string) error {
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("imagehost/s3: delete %s: %w", publicID, err)
	}
	return nil
}

// DeleteFolder removes every object under folder/ and returns how many
// were deleted.
func (h *S3) DeleteFolder(ctx context.Context, folder string) (int, error) {
	pfx := strings.Trim(folder, "/")
	if pfx == "" {
		return 0, ErrFolder
	}
	pfx += "/"

	deleted := 0
	pager := s3.NewListObjectsV2Paginator(h.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(h.bucket),
		Prefix: aws.String(pfx),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("imagehost/s3: list %s: %w", pfx, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		objs := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objs = append(objs, types.ObjectIdentifier{Key: obj.Key})
		}
		// a list page holds at most 1000 keys, which is also the DeleteObjects limit
		out, err := h.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(h.bucket),
			Delete: &types.Delete{Objects: objs, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("imagehost/s3: delete folder %s: %w", pfx, err)
		}
		deleted += len(objs) - len(out.Errors)
	}
	return deleted, nil
}
