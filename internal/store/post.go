package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
)

type postStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewPostStore(client *firestore.Client) *postStore {
	return &postStore{
		Client:     client,
		Collection: client.Collection("posts"),
	}
}

// Reserve creates an empty document and returns its store-assigned id. Post
// creation is two-phase: the id is needed for blob keys before any field is
// written, and Publish fills the document only after every upload succeeded.
func (s *postStore) Reserve(ctx context.Context) (string, error) {
	ref, _, err := s.Collection.Add(ctx, map[string]any{})
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to reserve post document", err)
	}
	return ref.ID, nil
}

func (s *postStore) Publish(ctx context.Context, id string, post *models.Post) error {
	if _, err := s.Collection.Doc(id).Set(ctx, post); err != nil {
		return errs.NewDatabaseError("update", "failed to publish post", err)
	}
	return nil
}

func (s *postStore) Get(ctx context.Context, id string) (*models.Post, error) {
	doc, err := s.Collection.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("post not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to read post", err)
	}
	return decodePost(doc)
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Collection.Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete post", err)
	}
	return nil
}

// ListLatest is the one-shot variant of the home timeline.
func (s *postStore) ListLatest(ctx context.Context) ([]*models.Post, error) {
	it := s.Collection.Query.OrderBy("updatedAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var posts []*models.Post
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list posts", err)
		}
		p, err := decodePost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// WatchAll streams every post, newest first.
func (s *postStore) WatchAll(ctx context.Context) *live.Handle[*models.Post] {
	q := s.Collection.Query.OrderBy("updatedAt", firestore.Desc)
	return watchQuery(ctx, "posts", q, decodePost)
}

// WatchLatestByArea streams one region tab of the home screen.
func (s *postStore) WatchLatestByArea(ctx context.Context, area string) *live.Handle[*models.Post] {
	q := s.Collection.Query.Where("fishArea", "==", area).OrderBy("updatedAt", firestore.Desc)
	return watchQuery(ctx, "posts", q, decodePost)
}

// WatchLargestByArea streams a region's posts by catch length.
func (s *postStore) WatchLargestByArea(ctx context.Context, area string) *live.Handle[*models.Post] {
	q := s.Collection.Query.Where("fishArea", "==", area).OrderBy("length", firestore.Desc)
	return watchQuery(ctx, "posts", q, decodePost)
}

// WatchSince streams posts updated at or after cutoff. Range filter and order
// share the updatedAt field; the store cannot serve them split across fields.
func (s *postStore) WatchSince(ctx context.Context, cutoff time.Time) *live.Handle[*models.Post] {
	q := s.Collection.Query.Where("updatedAt", ">=", cutoff).OrderBy("updatedAt", firestore.Desc)
	return watchQuery(ctx, "posts", q, decodePost)
}

func decodePost(doc *firestore.DocumentSnapshot) (*models.Post, error) {
	var p models.Post
	if err := doc.DataTo(&p); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse post data", err)
	}
	p.ID = doc.Ref.ID
	return &p, nil
}
