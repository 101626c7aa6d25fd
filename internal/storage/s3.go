package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/imaging"
	"github.com/spherical/pdf-scanner/internal/observability"
)

const uploadTimeout = 2 * time.Minute

// Uploader is the part of manager.Uploader the S3 saver needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Options configures an S3Saver.
type S3Options struct {
	Bucket    string
	Region    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// S3Saver uploads artifacts as JPEG objects.
type S3Saver struct {
	uploader Uploader
	bucket   string
	prefix   string
	encode   imaging.EncodeOptions
	logger   *observability.Logger
}

// NewS3Saver loads the AWS configuration and builds an upload manager.
// Static credentials are used when both keys are set.
func NewS3Saver(ctx context.Context, opts S3Options, encode imaging.EncodeOptions, logger *observability.Logger) (*S3Saver, error) {
	if opts.Bucket == "" {
		return nil, domain.ConfigError("S3 bucket name not set", nil)
	}
	if opts.Region == "" {
		return nil, domain.ConfigError("AWS region not set", nil)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, domain.ConfigError("load aws config", err)
	}

	return NewS3SaverWithUploader(manager.NewUploader(s3.NewFromConfig(awsCfg)), opts, encode, logger), nil
}

// NewS3SaverWithUploader builds a saver around an existing uploader.
func NewS3SaverWithUploader(uploader Uploader, opts S3Options, encode imaging.EncodeOptions, logger *observability.Logger) *S3Saver {
	if logger == nil {
		logger = observability.Nop()
	}
	return &S3Saver{
		uploader: uploader,
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		encode:   encode,
		logger:   logger.WithComponent("s3_saver"),
	}
}

// Key returns the object key for filename.
func (s *S3Saver) Key(filename string) string {
	return s.prefix + filename
}

// Save uploads the artifact to <prefix><filename>.
func (s *S3Saver) Save(ctx context.Context, artifact domain.Artifact) error {
	data, err := imaging.JPEGBytes(artifact.Image, s.encode)
	if err != nil {
		return err
	}

	key := s.Key(artifact.Filename)
	ctxUpload, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err = s.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return domain.IOError(fmt.Sprintf("s3 upload of %s failed", key), err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Artifact uploaded")
	return nil
}
