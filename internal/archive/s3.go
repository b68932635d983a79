package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type Options struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Prefix       string
}

// ObjectPutter is the slice of the S3 API the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores generated compliance reports in an S3-compatible bucket.
type S3Archive struct {
	client ObjectPutter
	bucket string
	prefix string
	log    *zap.Logger
}

func NewS3Archive(ctx context.Context, opts Options, log *zap.Logger) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewS3ArchiveWithClient(client, opts.Bucket, opts.Prefix, log), nil
}

func NewS3ArchiveWithClient(client ObjectPutter, bucket, prefix string, log *zap.Logger) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

// ReportKey places a report under <prefix>/YYYY/MM/DD/ named by its unix time.
func (a *S3Archive) ReportKey(baseName string, at time.Time) string {
	at = at.UTC()
	ext := path.Ext(baseName)
	name := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(baseName, ext), at.Unix(), ext)
	return path.Join(a.prefix, at.Format("2006/01/02"), name)
}

func (a *S3Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	sum := sha256.Sum256(data)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"checksum-sha256": hex.EncodeToString(sum[:]),
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	a.log.Info("report archived", zap.String("bucket", a.bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
