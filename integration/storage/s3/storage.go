package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrymomot/mediastore/core/media"
	"github.com/dmitrymomot/mediastore/pkg/async"
)

// Compile-time check that S3Storage implements the media.Storage interface.
var _ media.Storage = (*S3Storage)(nil)

// DefaultSignedURLExpiry is how long generated file URLs stay valid when not
// configured otherwise.
const DefaultSignedURLExpiry = 3600 * time.Second

// S3Client defines the S3 operations used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3aws.ListObjectsV2Input, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3aws.DeleteObjectsInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectsOutput, error)
}

// Presigner defines the presigned-URL generation used for file URLs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ListObjectsV2Paginator defines the interface for paginated list operations.
type S3ListObjectsV2Paginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
}

// Config contains connection and behavior configuration for the S3 backend.
// Credentials, endpoint, and region are opaque passthrough to the SDK.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // for S3-compatible services like MinIO, Wasabi
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // required for MinIO and some S3-compatible services

	// SignedURLExpiry is how long file URLs stay valid. Files are accessed
	// through presigned URLs needing no further authentication.
	SignedURLExpiry time.Duration `env:"S3_SIGNED_URL_EXPIRY" envDefault:"1h"`

	WorkerPoolSize int `env:"S3_WORKER_POOL_SIZE" envDefault:"10"`
}

// S3Storage stores media files in an S3-compatible bucket. All network calls
// are thin blocking SDK calls dispatched onto a bounded worker pool, so they
// never occupy the caller's goroutine beyond the await point.
type S3Storage struct {
	client           S3Client
	presigner        Presigner
	bucket           string
	urlTTL           time.Duration
	policy           *media.FileNamePolicy
	pool             *async.Pool
	log              *slog.Logger
	paginatorFactory func(client S3Client, params *s3aws.ListObjectsV2Input) S3ListObjectsV2Paginator
}

// Option defines a function that configures S3Storage.
type Option func(*options)

type options struct {
	httpClient       *http.Client
	s3Client         S3Client
	presigner        Presigner
	s3ConfigOptions  []func(*config.LoadOptions) error
	s3ClientOptions  []func(*s3aws.Options)
	paginatorFactory func(client S3Client, params *s3aws.ListObjectsV2Input) S3ListObjectsV2Paginator
	policy           *media.FileNamePolicy
	pool             *async.Pool
	log              *slog.Logger
}

// WithS3Client sets a custom pre-configured S3 client.
// Primarily used for testing with mocks.
func WithS3Client(client S3Client) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// WithPresigner sets a custom presign client. Mock clients must provide one
// for FileURL to work.
func WithPresigner(presigner Presigner) Option {
	return func(o *options) {
		o.presigner = presigner
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
// Useful for custom timeout, proxy, or TLS configuration.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithPaginatorFactory sets a custom paginator factory.
// Essential for testing pagination behavior with mock clients.
func WithPaginatorFactory(factory func(client S3Client, params *s3aws.ListObjectsV2Input) S3ListObjectsV2Paginator) Option {
	return func(o *options) {
		o.paginatorFactory = factory
	}
}

// WithPolicy replaces the default file-name policy.
func WithPolicy(policy *media.FileNamePolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.policy = policy
		}
	}
}

// WithPool shares an existing worker pool instead of creating one.
func WithPool(pool *async.Pool) Option {
	return func(o *options) {
		if pool != nil {
			o.pool = pool
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an S3 media backend. Without WithS3Client it builds an SDK
// client from cfg, supporting both AWS S3 and S3-compatible services.
func New(ctx context.Context, cfg Config, opts ...Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", media.ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}

		// Static credentials when provided; IAM roles / env vars otherwise.
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsOptions = append(awsOptions, o.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %v", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	presigner := o.presigner
	if presigner == nil {
		if realClient, ok := client.(*s3aws.Client); ok {
			presigner = s3aws.NewPresignClient(realClient)
		}
		// Mock clients must provide their own presigner via WithPresigner.
	}

	paginatorFactory := o.paginatorFactory
	if paginatorFactory == nil {
		paginatorFactory = func(c S3Client, params *s3aws.ListObjectsV2Input) S3ListObjectsV2Paginator {
			if realClient, ok := c.(*s3aws.Client); ok {
				return s3aws.NewListObjectsV2Paginator(realClient, params)
			}
			// Mock clients must provide their own paginator via WithPaginatorFactory.
			return nil
		}
	}

	urlTTL := cfg.SignedURLExpiry
	if urlTTL <= 0 {
		urlTTL = DefaultSignedURLExpiry
	}

	policy := o.policy
	if policy == nil {
		policy = media.NewFileNamePolicy()
	}

	pool := o.pool
	if pool == nil {
		pool = async.NewPool(cfg.WorkerPoolSize)
	}

	log := o.log
	if log == nil {
		log = slog.Default()
	}

	return &S3Storage{
		client:           client,
		presigner:        presigner,
		bucket:           cfg.Bucket,
		urlTTL:           urlTTL,
		policy:           policy,
		pool:             pool,
		log:              log,
		paginatorFactory: paginatorFactory,
	}, nil
}

// StoreFile validates fileName, derives a key, and uploads content under it.
// A HeadObject probe runs before the upload; a key that already exists is a
// fatal media.ErrKeyCollision and nothing is overwritten.
func (s *S3Storage) StoreFile(ctx context.Context, fileName string, content io.Reader) (string, error) {
	fileID, err := s.policy.GenerateFileID(fileName)
	if err != nil {
		return "", err
	}

	fut := s.pool.Exec(ctx, func(ctx context.Context) error {
		_, err := s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(fileID),
		})
		if err == nil {
			s.log.ErrorContext(ctx, "file key clash, the chances are very low; could be malicious or a serious bug",
				slog.String("file_key", fileID),
				slog.String("bucket", s.bucket))
			return fmt.Errorf("%w: %s", media.ErrKeyCollision, fileID)
		}
		if !isNotFound(err) {
			return classifyS3Error(err, "check file")
		}

		if _, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(fileID),
			Body:   content,
		}); err != nil {
			return classifyS3Error(err, "upload file")
		}
		return nil
	})
	if err := fut.Await(); err != nil {
		return "", err
	}

	return fileID, nil
}

// FileURL returns a presigned GET URL for the stored file, valid for the
// configured expiry. rootURL is ignored: the bucket serves the bytes itself
// and the signed URL needs no further authentication.
func (s *S3Storage) FileURL(ctx context.Context, fileKey, _ string) (string, error) {
	if err := media.ValidateFileKey(fileKey); err != nil {
		return "", err
	}

	fut := async.Call(ctx, s.pool, func(ctx context.Context) (string, error) {
		if s.presigner == nil {
			return "", ErrPresignerNil
		}
		req, err := s.presigner.PresignGetObject(ctx, &s3aws.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(fileKey),
		}, s3aws.WithPresignExpires(s.urlTTL))
		if err != nil {
			return "", classifyS3Error(err, "presign file url")
		}
		return req.URL, nil
	})
	return fut.Await()
}

// GetFile downloads the stored object. Absent keys return (nil, false, nil).
func (s *S3Storage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, bool, error) {
	if err := media.ValidateFileKey(fileKey); err != nil {
		return nil, false, err
	}

	fut := async.Call(ctx, s.pool, func(ctx context.Context) (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(fileKey),
		})
		if err != nil {
			return nil, err
		}
		return out.Body, nil
	})

	body, err := fut.Await()
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, classifyS3Error(err, "download file")
	}
	return body, true, nil
}

// DeleteFile removes the object. S3 object deletion succeeds for absent
// keys, so the operation is naturally idempotent.
func (s *S3Storage) DeleteFile(ctx context.Context, fileKey string) error {
	if err := media.ValidateFileKey(fileKey); err != nil {
		return err
	}

	fut := s.pool.Exec(ctx, func(ctx context.Context) error {
		if _, err := s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(fileKey),
		}); err != nil {
			return classifyS3Error(err, "delete file")
		}
		return nil
	})
	return fut.Await()
}

// BulkDeleteFiles removes all the given keys using batch deletion,
// 1000 objects per request (the S3 API limit). Absent keys are skipped.
func (s *S3Storage) BulkDeleteFiles(ctx context.Context, fileKeys []string) error {
	if len(fileKeys) == 0 {
		return nil
	}
	for _, fileKey := range fileKeys {
		if err := media.ValidateFileKey(fileKey); err != nil {
			return err
		}
	}

	fut := s.pool.Exec(ctx, func(ctx context.Context) error {
		objects := make([]types.ObjectIdentifier, len(fileKeys))
		for i, fileKey := range fileKeys {
			objects[i] = types.ObjectIdentifier{Key: aws.String(fileKey)}
		}

		const batchSize = 1000
		for i := range (len(objects) + batchSize - 1) / batchSize {
			start := i * batchSize
			end := min(start+batchSize, len(objects))
			if _, err := s.client.DeleteObjects(ctx, &s3aws.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{
					Objects: objects[start:end],
					Quiet:   aws.Bool(true),
				},
			}); err != nil {
				return classifyS3Error(err, "bulk delete files")
			}
		}
		return nil
	})
	return fut.Await()
}

// ListFileKeys enumerates every object key in the bucket, paging through the
// whole thing. It exists for reconciliation, not for serving traffic, and
// costs a request per 1000 objects.
func (s *S3Storage) ListFileKeys(ctx context.Context) ([]string, error) {
	fut := async.Call(ctx, s.pool, func(ctx context.Context) ([]string, error) {
		paginator := s.paginatorFactory(s.client, &s3aws.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
		})
		if paginator == nil {
			return nil, ErrPaginatorNil
		}

		var keys []string
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, classifyS3Error(err, "list files")
			}
			for _, obj := range page.Contents {
				keys = append(keys, aws.ToString(obj.Key))
			}
		}
		return keys, nil
	})
	return fut.Await()
}
