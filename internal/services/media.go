package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

const maxPostImages = 3

// mediaBlobs is the blob-store surface the upload pipeline needs.
type mediaBlobs interface {
	Put(ctx context.Context, key string, data []byte) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// mediaService turns local image payloads into durable download URLs, keyed
// by the owning entity's id. The owning document is never written before the
// whole batch succeeded.
type mediaService struct {
	blobs mediaBlobs
	now   func() time.Time
}

func NewMediaService(blobs mediaBlobs) *mediaService {
	return &mediaService{
		blobs: blobs,
		now:   time.Now,
	}
}

// UploadPostImages uploads 1..3 images under posts/{postID}/ and returns
// their URLs in input order. Uploads run concurrently; each result lands in
// its input slot, so completion order cannot reorder the output. If any
// upload fails the whole batch fails and no URL list is returned — the caller
// either has not written the post document yet or cleans up via cascading
// delete.
func (s *mediaService) UploadPostImages(ctx context.Context, postID string, images [][]byte) ([]string, error) {
	log := logger.FromContext(ctx)

	if len(images) == 0 {
		return nil, errs.NewValidationError("at least one image is required")
	}
	if len(images) > maxPostImages {
		return nil, errs.NewValidationError(fmt.Sprintf("at most %d images are allowed", maxPostImages))
	}

	// The timestamp token keeps keys from colliding across repeated upload
	// attempts for the same post.
	token := s.now().UnixMilli()
	urls := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		key := fmt.Sprintf("posts/%s/image_%d_%d", postID, token, i)
		g.Go(func() error {
			if err := s.blobs.Put(gctx, key, img); err != nil {
				return err
			}
			url, err := s.blobs.DownloadURL(gctx, key)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("post image upload failed", "post_id", postID, "error", err)
		return nil, errs.NewUploadError("image upload failed", err)
	}

	log.Info("post images uploaded", "post_id", postID, "count", len(urls))
	return urls, nil
}

// UploadUserImage uploads the single profile avatar for uid and returns its
// URL. The fixed key means a re-upload replaces the previous avatar.
func (s *mediaService) UploadUserImage(ctx context.Context, uid string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errs.NewValidationError("a profile image is required")
	}

	key := fmt.Sprintf("users/%s/userImage.jpg", uid)
	if err := s.blobs.Put(ctx, key, image); err != nil {
		return "", errs.NewUploadError("profile image upload failed", err)
	}
	url, err := s.blobs.DownloadURL(ctx, key)
	if err != nil {
		return "", errs.NewUploadError("profile image upload failed", err)
	}
	return url, nil
}
