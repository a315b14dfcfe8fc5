package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
)

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection("users"),
	}
}

func (s *userStore) Create(ctx context.Context, uid string, user *models.User) error {
	if _, err := s.Collection.Doc(uid).Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewValidationError("profile already exists")
		}
		return errs.NewDatabaseError("create", "failed to create user profile", err)
	}
	return nil
}

func (s *userStore) Get(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.Collection.Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("user not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to read user", err)
	}
	return decodeUser(doc)
}

// Follow adds targetID to the owner's followed set. ArrayUnion keeps the set
// duplicate-free on the store side.
func (s *userStore) Follow(ctx context.Context, uid, targetID string) error {
	_, err := s.Collection.Doc(uid).Update(ctx, []firestore.Update{
		{Path: "followed", Value: firestore.ArrayUnion(targetID)},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to follow user", err)
	}
	return nil
}

func (s *userStore) Unfollow(ctx context.Context, uid, targetID string) error {
	_, err := s.Collection.Doc(uid).Update(ctx, []firestore.Update{
		{Path: "followed", Value: firestore.ArrayRemove(targetID)},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to unfollow user", err)
	}
	return nil
}

// GetByIDs resolves one membership group with a single `__name__ in` query.
// The store caps membership filters at ten ids per query; callers with more
// ids split them into groups first (see the follow service). Ids that no
// longer exist are simply absent from the result.
func (s *userStore) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = s.Collection.Doc(id)
	}

	it := s.Collection.Query.Where(firestore.DocumentID, "in", refs).Documents(ctx)
	defer it.Stop()

	var users []*models.User
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to query users by id", err)
		}
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Watch streams the owner's profile document; each delivery holds the full
// current document (or nothing while it does not exist).
func (s *userStore) Watch(ctx context.Context, uid string) *live.Handle[*models.User] {
	return watchDocument(ctx, "users", s.Collection.Doc(uid), decodeUser)
}

func decodeUser(doc *firestore.DocumentSnapshot) (*models.User, error) {
	var u models.User
	if err := doc.DataTo(&u); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
	}
	u.ID = doc.Ref.ID
	return &u, nil
}
