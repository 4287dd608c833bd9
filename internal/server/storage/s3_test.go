package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubS3(t *testing.T, fake *fakeS3) *s3.Options {
	t.Helper()
	origLoad, origNew, origKey := loadDefaultAWSConfig, newS3ClientFromConfig, newObjectKey
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newObjectKey = origLoad, origNew, origKey
	})

	opts := &s3.Options{}
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		for _, fn := range optFns {
			fn(opts)
		}
		return fake
	}
	newObjectKey = func(folder, ext string) string { return folder + "/fixed" + ext }
	return opts
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestS3Uploader_Upload(t *testing.T) {
	fake := &fakeS3{}
	opts := stubS3(t, fake)

	u, err := NewS3Uploader(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	up, err := Spool(t.TempDir(), "cover.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Discard() })

	img, err := u.Upload(context.Background(), up)
	require.NoError(t, err)

	assert.Equal(t, "blog-posts/fixed.png", img.PublicID)
	assert.Equal(t, "http://127.0.0.1:9000/blog/blog-posts/fixed.png", img.SecureURL)
	assert.Equal(t, "blog", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.in.ContentType))
	assert.Equal(t, int64(6), aws.ToInt64(fake.in.ContentLength))
	assert.Equal(t, "pixels", fake.body)
}

func TestS3Uploader_PublicBaseURL(t *testing.T) {
	stubS3(t, &fakeS3{})

	cfg := testConfig()
	cfg.S3PublicBaseURL = "https://cdn.example.com/"
	u, err := NewS3Uploader(context.Background(), cfg)
	require.NoError(t, err)

	up, err := Spool(t.TempDir(), "a.jpg", "", strings.NewReader("x"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Discard() })

	img, err := u.Upload(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog-posts/fixed.jpg", img.SecureURL)
}

func TestS3Uploader_PutError(t *testing.T) {
	stubS3(t, &fakeS3{err: errors.New("access denied")})

	u, err := NewS3Uploader(context.Background(), testConfig())
	require.NoError(t, err)

	up, err := Spool(t.TempDir(), "a.png", "", strings.NewReader("x"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Discard() })

	_, err = u.Upload(context.Background(), up)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Uploader_MissingFile(t *testing.T) {
	stubS3(t, &fakeS3{})

	u, err := NewS3Uploader(context.Background(), testConfig())
	require.NoError(t, err)

	up, err := Spool(t.TempDir(), "a.png", "", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, up.Discard())

	_, err = u.Upload(context.Background(), up)
	assert.ErrorContains(t, err, "open upload")
}

func TestNewS3Uploader_ConfigError(t *testing.T) {
	stubS3(t, &fakeS3{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewS3Uploader(context.Background(), testConfig())
	assert.ErrorContains(t, err, "no region")
}

func TestNewObjectKey(t *testing.T) {
	key := newObjectKey("/blog-posts/", ".png")
	assert.True(t, strings.HasPrefix(key, "blog-posts/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Len(t, key, len("blog-posts/")+36+len(".png"))
}
