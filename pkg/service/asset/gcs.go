package asset

import (
	"context"
	"errors"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/utils/safe"
)

// GCS stores assets as objects in a Cloud Storage bucket. Objects are read
// back through the server so the bucket can stay private.
type GCS struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
}

type GCSOption func(*GCS)

// WithPrefix stores objects under prefix/ in the bucket
func WithPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V(BucketKey, bucket))
	}

	g := &GCS{
		client:  client,
		bucket:  bucket,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) object(name string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, name))
}

func (g *GCS) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	w := g.object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write asset",
			goerr.V(BucketKey, g.bucket),
			goerr.V(NameKey, name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize asset",
			goerr.V(BucketKey, g.bucket),
			goerr.V(NameKey, name))
	}

	return urlFor(g.baseURL, name), nil
}

func (g *GCS) Get(ctx context.Context, name string) ([]byte, string, error) {
	if err := ValidateName(name); err != nil {
		return nil, "", goerr.Wrap(ErrNotFound, err.Error(), goerr.V(NameKey, name))
	}

	r, err := g.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", goerr.Wrap(ErrNotFound, "get asset", goerr.V(NameKey, name))
		}
		return nil, "", goerr.Wrap(err, "failed to open asset",
			goerr.V(BucketKey, g.bucket),
			goerr.V(NameKey, name))
	}
	defer safe.Close(ctx, r)

	data, truncated, err := safe.ReadAll(r, MaxSize)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read asset", goerr.V(NameKey, name))
	}
	if truncated {
		return nil, "", goerr.New("stored asset exceeds size limit", goerr.V(NameKey, name))
	}

	return data, r.Attrs.ContentType, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
