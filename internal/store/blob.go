package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/tsurilog/fishlog-backend/internal/errs"
)

// blobStore wraps the bucket the Firebase app exposes. Every entity keeps its
// blobs under its own key prefix ({collection}/{entityId}/...), which is what
// makes list-by-prefix a safe bulk-delete primitive.
type blobStore struct {
	bucket *storage.BucketHandle
}

func NewBlobStore(bucket *storage.BucketHandle) *blobStore {
	return &blobStore{bucket: bucket}
}

func (s *blobStore) Put(ctx context.Context, key string, data []byte) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// DownloadURL resolves the public media URL for an uploaded object. Reading
// the attributes first confirms the write is visible before the URL escapes
// to a document.
func (s *blobStore) DownloadURL(ctx context.Context, key string) (string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		attrs.Bucket, url.PathEscape(attrs.Name)), nil
}

// ListKeys returns every object key under the entity prefix. The trailing
// separator keeps "posts/abc" from matching "posts/abcd".
func (s *blobStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("list", "failed to list blobs under "+prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (s *blobStore) Delete(ctx context.Context, key string) error {
	return s.bucket.Object(key).Delete(ctx)
}
