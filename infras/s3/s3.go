package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrPublicID = "public_id"
	otelAttrBucket   = "bucket"
	otelAttrBytes    = "bytes"

	resizePath = "cdn-cgi/image"
)

var ErrUpload = errors.New("failed to upload asset")

// UploadOptions describes where an asset is stored. FileName is only used for its extension.
type UploadOptions struct {
	Folder      string
	FileName    string
	ContentType string
}

// Asset is a stored object together with the image metadata read before upload.
type Asset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Transform is a set of on-the-fly resize options. Zero fields are omitted.
type Transform struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality int    `json:"quality"`
	Format  string `json:"format"`
}

// Store is the asset store used for image uploads.
type Store interface {
	Upload(ctx context.Context, data []byte, opts UploadOptions) (Asset, error)
	Delete(ctx context.Context, publicID string) error
	TransformedURL(publicID string, transform Transform) string
}

type objectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type storeImpl struct {
	client objectClient
	config *config.Config
	otel   otel.Otel
}

func (svc *storeImpl) Upload(ctx context.Context, data []byte, opts UploadOptions) (asset Asset, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	info, err := Inspect(data)
	if err != nil {
		return asset, err
	}

	folder := opts.Folder
	if folder == constant.Empty {
		folder = svc.config.External.S3.Folder
	}

	contentType := opts.ContentType
	if contentType == constant.Empty {
		contentType = info.ContentType
	}

	ext := path.Ext(opts.FileName)
	if ext == constant.Empty {
		ext = "." + info.Format
	}

	publicID := path.Join(folder, uuid.NewString()+strings.ToLower(ext))
	bucket := svc.config.External.S3.BucketName

	scope.SetAttributes(map[string]any{
		otelAttrPublicID: publicID,
		otelAttrBucket:   bucket,
		otelAttrBytes:    len(data),
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(publicID),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error().Err(err).Str(otelAttrPublicID, publicID).Msg("failed to put object")

		return asset, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	return Asset{
		PublicID:  publicID,
		SecureURL: svc.publicURL(publicID),
		Width:     info.Width,
		Height:    info.Height,
		Format:    info.Format,
		Bytes:     info.Bytes,
	}, nil
}

func (svc *storeImpl) Delete(ctx context.Context, publicID string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.config.External.S3.BucketName

	scope.SetAttributes(map[string]any{
		otelAttrPublicID: publicID,
		otelAttrBucket:   bucket,
	})

	_, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		log.Error().Err(err).Str(otelAttrPublicID, publicID).Msg("failed to delete object")

		return fmt.Errorf("failed to delete asset %s: %w", publicID, err)
	}

	return nil
}

// TransformedURL builds an image-resizing URL for publicID. No network call is made.
func (svc *storeImpl) TransformedURL(publicID string, transform Transform) string {
	options := []string{}

	if transform.Width > 0 {
		options = append(options, "width="+strconv.Itoa(transform.Width))
	}

	if transform.Height > 0 {
		options = append(options, "height="+strconv.Itoa(transform.Height))
	}

	if transform.Width > 0 && transform.Height > 0 {
		options = append(options, "fit=cover")
	}

	if transform.Quality > 0 {
		options = append(options, "quality="+strconv.Itoa(min(transform.Quality, 100)))
	}

	if transform.Format != constant.Empty {
		options = append(options, "format="+strings.ToLower(transform.Format))
	}

	if len(options) == 0 {
		return svc.publicURL(publicID)
	}

	base := svc.config.External.S3.ResizeBaseURL
	if base == constant.Empty {
		base = svc.config.External.S3.PublicDomain
	}

	return fmt.Sprintf("%s/%s/%s/%s", strings.TrimRight(base, "/"), resizePath, strings.Join(options, ","), strings.TrimLeft(publicID, "/"))
}

func (svc *storeImpl) publicURL(publicID string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(svc.config.External.S3.PublicDomain, "/"), strings.TrimLeft(publicID, "/"))
}

func New(config *config.Config, otel otel.Otel) Store {
	endpoint := config.External.S3.APIEndpoint
	accessKeyID := config.External.S3.AccessKeyID
	secretAccessKey := config.External.S3.SecretAccessKey

	staticProvider := credentials.NewStaticCredentialsProvider(
		accessKeyID,
		secretAccessKey,
		"",
	)

	cfg, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithCredentialsProvider(staticProvider),
	)

	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return &storeImpl{
		client: s3Client,
		config: config,
		otel:   otel,
	}
}
