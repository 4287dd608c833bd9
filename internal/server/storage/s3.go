package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newObjectKey = func(folder, ext string) string {
		return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores post images in an S3-compatible bucket.
type S3Uploader struct {
	client        putObjectAPI
	bucket        string
	folder        string
	publicBaseURL string
}

// NewS3Uploader builds an uploader from the S3 settings of cfg. Images are
// addressed as <public base>/<folder>/<uuid><ext>; without an explicit
// public base the endpoint and bucket (path-style) are used.
func NewS3Uploader(ctx context.Context, cfg *sc.Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	public := cfg.S3PublicBaseURL
	if public == "" {
		public = strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Uploader{
		client:        client,
		bucket:        cfg.S3Bucket,
		folder:        cfg.S3Folder,
		publicBaseURL: strings.TrimRight(public, "/"),
	}, nil
}

// Upload puts the spooled file into the bucket. It does not discard u.
func (s *S3Uploader) Upload(ctx context.Context, u *Upload) (models.Image, error) {
	f, err := u.Open()
	if err != nil {
		return models.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := newObjectKey(s.folder, u.Ext())
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(u.Size()),
	}
	if ct := u.ContentType(); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return models.Image{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return models.Image{PublicID: key, SecureURL: s.publicBaseURL + "/" + key}, nil
}
