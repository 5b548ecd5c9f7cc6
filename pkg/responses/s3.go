package responses

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxObjectSize bounds how much of a message table object is read.
const maxObjectSize = 1 << 20

// ObjectGetter is the subset of the S3 client used to fetch message tables.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3 fetches and parses a YAML message table stored in S3.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (map[Code]string, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("responses: get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize))
	if err != nil {
		return nil, fmt.Errorf("responses: read s3://%s/%s: %w", bucket, key, err)
	}
	return Parse(data)
}

// NewS3Client builds an S3 client from the default AWS configuration chain
// (environment, shared config and credentials files, SSO, and instance or
// task roles). region overrides the configured region when set. With an
// endpoint, path-style addressing is used, which suits S3-compatible stores.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("responses: load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
