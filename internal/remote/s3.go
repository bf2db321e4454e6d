package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"casesync/internal/config"
	"casesync/internal/engine"
	"casesync/internal/model"
)

// S3Client serves an S3 bucket (or prefix within one) through the remote
// contract. S3's ListObjectsV2 continuation tokens map directly onto the
// listing cursor, and the object ETag serves as the revision marker.
type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	prefix     string // key prefix the remote root is anchored at, no leading slash
	pageSize   int32
}

// NewS3Client creates an S3-backed remote from configuration. Credentials
// come from the config when set, otherwise from the default AWS chain.
func NewS3Client(ctx context.Context, cfg config.RemoteConfig) (*S3Client, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 remote requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	pageSize := int32(defaultPageSize)
	if cfg.PageSize > 0 {
		pageSize = int32(cfg.PageSize)
	}

	return &S3Client{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     cfg.S3Bucket,
		prefix:     strings.Trim(cfg.S3Prefix, "/"),
		pageSize:   pageSize,
	}, nil
}

// List returns one page of file entries under path.
func (c *S3Client) List(ctx context.Context, path, cursor string) (engine.Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(c.keyFor(path) + "/"),
		MaxKeys: aws.Int32(c.pageSize),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	out, err := c.client.ListObjectsV2(ctx, input)
	if err != nil {
		return engine.Page{}, fmt.Errorf("listing s3://%s/%s: %w", c.bucket, aws.ToString(input.Prefix), err)
	}

	page := engine.Page{}
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if strings.HasSuffix(key, "/") {
			// Zero-byte folder markers are not files.
			continue
		}
		remotePath := c.pathFor(key)
		page.Entries = append(page.Entries, model.FileEntry{
			Path:       remotePath,
			Name:       remotePath[strings.LastIndex(remotePath, "/")+1:],
			SizeBytes:  aws.ToInt64(obj.Size),
			Revision:   strings.Trim(aws.ToString(obj.ETag), `"`),
			ModifiedAt: aws.ToTime(obj.LastModified),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextCursor = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// Download returns the raw bytes of the file at path.
func (c *S3Client) Download(ctx context.Context, path string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.keyFor(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("downloading s3://%s/%s: %w", c.bucket, c.keyFor(path), err)
	}
	return buf.Bytes(), nil
}

// keyFor maps a remote path onto an object key under the configured prefix.
func (c *S3Client) keyFor(remotePath string) string {
	key := strings.Trim(remotePath, "/")
	if c.prefix != "" {
		key = c.prefix + "/" + key
	}
	return key
}

// pathFor maps an object key back onto a remote path.
func (c *S3Client) pathFor(key string) string {
	if c.prefix != "" {
		key = strings.TrimPrefix(key, c.prefix+"/")
	}
	return "/" + key
}

// Compile-time check that S3Client implements engine.Remote
var _ engine.Remote = (*S3Client)(nil)
