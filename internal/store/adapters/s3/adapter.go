// Package s3 guarda el documento como un único objeto en un bucket S3
// (o compatible: MinIO, localstack vía Endpoint).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

const defaultKey = "mailadmin/db.json"

func init() {
	store.RegisterAdapter(&s3Adapter{})
}

// ObjectAPI es el subconjunto del cliente S3 que usa el backend.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

type s3Adapter struct{}

func (a *s3Adapter) Name() string { return "s3" }

func (a *s3Adapter) Open(ctx context.Context, cfg store.AdapterConfig) (store.Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return New(client, cfg.Bucket, cfg.Key), nil
}

// Backend lee/escribe el objeto key del bucket.
type Backend struct {
	api    ObjectAPI
	bucket string
	key    string
}

// New crea el backend sobre un cliente ya configurado.
func New(api ObjectAPI, bucket, key string) *Backend {
	if key == "" {
		key = defaultKey
	}
	return &Backend{api: api, bucket: bucket, key: key}
}

func (b *Backend) Name() string { return "s3" }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, store.ErrNotExist
		}
		return nil, fmt.Errorf("s3: get s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read body: %w", err)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: put s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

func (b *Backend) Close() error { return nil }
