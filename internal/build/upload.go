package build

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/urlgen-dev/urlgen/internal/config"
)

// s3Putter is the slice of the S3 client the uploader needs.
type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Client is swapped out by tests.
var s3Client func(ctx context.Context, region string) (s3Putter, error) = newS3Client

func newS3Client(ctx context.Context, region string) (s3Putter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// upload publishes one artifact to the configured bucket and returns the
// object key.
func (b *Builder) upload(ctx context.Context, ac config.ArtifactConfig, data []byte) (string, error) {
	client, err := s3Client(ctx, b.config.Upload.Region)
	if err != nil {
		return "", err
	}

	key := path.Join(b.config.Upload.Prefix, path.Base(ac.Output))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.config.Upload.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/javascript"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
