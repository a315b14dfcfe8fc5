package services

import (
	"context"
	"time"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

// postPSStore is the document-store surface the post service uses.
type postPSStore interface {
	Reserve(ctx context.Context) (string, error)
	Publish(ctx context.Context, id string, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ListLatest(ctx context.Context) ([]*models.Post, error)
	WatchAll(ctx context.Context) *live.Handle[*models.Post]
	WatchSince(ctx context.Context, cutoff time.Time) *live.Handle[*models.Post]
}

type postPSUsers interface {
	Get(ctx context.Context, uid string) (*models.User, error)
}

type postPSMedia interface {
	UploadPostImages(ctx context.Context, postID string, images [][]byte) ([]string, error)
}

// postPSBlobs is the blob surface cascading delete walks.
type postPSBlobs interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// PostInput carries the user-entered catch fields. Field-presence validation
// beyond the image count is the presentation layer's concern.
type PostInput struct {
	Title     string
	Content   string
	Weather   string
	Lure      string
	LureColor string
	Area      string
	FishArea  string
	Length    float64
	Weight    float64
	CatchFish int
	ExifData  []models.ExifData
}

type postService struct {
	store postPSStore
	users postPSUsers
	media postPSMedia
	blobs postPSBlobs
}

func NewPostService(store postPSStore, users postPSUsers, media postPSMedia, blobs postPSBlobs) *postService {
	return &postService{
		store: store,
		users: users,
		media: media,
		blobs: blobs,
	}
}

// Create runs the two-phase write: reserve an empty document for its id,
// upload every image under that id, then populate the document. The metadata
// is written strictly after all uploads succeeded; on upload failure the
// reserved document and any blobs already written are cleaned up best-effort.
func (s *postService) Create(ctx context.Context, uid string, in PostInput, images [][]byte) (*models.Post, error) {
	log := logger.FromContext(ctx)

	// Author snapshot, denormalized onto the post at creation time. It is not
	// re-joined on read and goes stale if the profile changes later.
	userName, userImage := "guest", ""
	author, err := s.users.Get(ctx, uid)
	switch err.(type) {
	case nil:
		userName = author.UserName
		userImage = author.UserImage
	case *errs.NotFoundError:
		// Keep the guest fallback.
	default:
		return nil, err
	}

	id, err := s.store.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	urls, err := s.media.UploadPostImages(ctx, id, images)
	if err != nil {
		if cerr := s.cascade(ctx, id); cerr != nil {
			log.Warn("cleanup after failed upload incomplete", "post_id", id, "error", cerr)
		}
		return nil, err
	}

	post := &models.Post{
		UserID:    uid,
		UserName:  userName,
		UserImage: userImage,
		Title:     in.Title,
		Images:    urls,
		ExifData:  in.ExifData,
		Content:   in.Content,
		Weather:   in.Weather,
		Lure:      in.Lure,
		LureColor: in.LureColor,
		Length:    in.Length,
		Weight:    in.Weight,
		CatchFish: in.CatchFish,
		Area:      in.Area,
		FishArea:  in.FishArea,
		UpdatedAt: time.Now(),
	}
	if err := s.store.Publish(ctx, id, post); err != nil {
		return nil, err
	}
	post.ID = id

	log.Info("post created", "post_id", id, "images", len(urls))
	return post, nil
}

// Delete removes a post and all of its blobs. Only the author may delete.
func (s *postService) Delete(ctx context.Context, uid, postID string) error {
	post, err := s.store.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != uid {
		return errs.NewPermissionDeniedError("only the author can delete a post")
	}
	return s.cascade(ctx, postID)
}

// cascade deletes the document first — if that fails nothing else is
// attempted — then every blob under the post's prefix. A blob failure still
// fails the operation, but the document is already gone: the remaining blobs
// are orphaned and never retried.
func (s *postService) cascade(ctx context.Context, postID string) error {
	log := logger.FromContext(ctx)

	if err := s.store.Delete(ctx, postID); err != nil {
		return err
	}

	prefix := "posts/" + postID
	keys, err := s.blobs.ListKeys(ctx, prefix)
	if err != nil {
		return errs.NewCleanupError("post deleted but its blobs could not be listed", nil, err)
	}

	var orphaned []string
	var firstErr error
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			orphaned = append(orphaned, key)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		log.Error("post blobs orphaned", "post_id", postID, "orphaned", len(orphaned))
		return errs.NewCleanupError("post deleted but some blobs remain", orphaned, firstErr)
	}
	return nil
}

func (s *postService) ListLatest(ctx context.Context) ([]*models.Post, error) {
	return s.store.ListLatest(ctx)
}

func (s *postService) WatchAll(ctx context.Context) *live.Handle[*models.Post] {
	return s.store.WatchAll(ctx)
}

// WatchRecent streams the last month of posts for the map screen.
func (s *postService) WatchRecent(ctx context.Context) *live.Handle[*models.Post] {
	cutoff := time.Now().AddDate(0, -1, 0)
	return s.store.WatchSince(ctx, cutoff)
}
