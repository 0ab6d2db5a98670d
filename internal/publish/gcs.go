package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// objectStore opens writers for Cloud Storage objects.
type objectStore interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
	Close() error
}

type gcsStore struct {
	client *storage.Client
}

func (s *gcsStore) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}

// GCSArchiver uploads session artifacts to gs://bucket/prefix/session/.
type GCSArchiver struct {
	store  objectStore
	bucket string
	prefix string
}

// NewGCSArchiver creates an archiver using application default credentials,
// or the given service account key file.
func NewGCSArchiver(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSArchiver, error) {
	if bucket == "" {
		return nil, errors.New("GCS bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSArchiver{store: &gcsStore{client: client}, bucket: bucket, prefix: prefix}, nil
}

// Archive uploads each file under the session's object prefix and returns the
// gs:// URIs written.
func (a *GCSArchiver) Archive(ctx context.Context, sessionDir string, files []string) ([]string, error) {
	base := path.Join(a.prefix, sessionName(sessionDir))

	uris := make([]string, 0, len(files))
	for _, f := range files {
		object := path.Join(base, filepath.Base(f))
		if err := a.upload(ctx, f, object); err != nil {
			return uris, err
		}
		uri := fmt.Sprintf("gs://%s/%s", a.bucket, object)
		slog.Debug("Archived artifact", "uri", uri)
		uris = append(uris, uri)
	}

	slog.Info("Archived session artifacts", "bucket", a.bucket, "prefix", base, "files", len(uris))
	return uris, nil
}

func (a *GCSArchiver) upload(ctx context.Context, file, object string) error {
	src, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer func() { _ = src.Close() }()

	// Cancelling the writer's context abandons the upload; Close would
	// commit whatever was copied so far.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := a.store.NewWriter(wctx, a.bucket, object, contentType(file))
	if _, err := io.Copy(w, src); err != nil {
		cancel()
		return fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	return nil
}

// Close releases the underlying storage client.
func (a *GCSArchiver) Close() error {
	return a.store.Close()
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// sessionName is the last element of the session directory path.
func sessionName(dir string) string {
	name := filepath.Base(filepath.Clean(dir))
	if name == "." || name == string(filepath.Separator) {
		return "session"
	}
	return name
}
