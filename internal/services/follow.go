package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

// followBatchCap is the store's maximum id-set size for one membership query.
const followBatchCap = 10

// followFSStore is the user-store surface the follow service uses. GetByIDs
// resolves a single membership group of at most followBatchCap ids.
type followFSStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Follow(ctx context.Context, uid, targetID string) error
	Unfollow(ctx context.Context, uid, targetID string) error
	Watch(ctx context.Context, uid string) *live.Handle[*models.User]
}

type followService struct {
	store followFSStore
}

func NewFollowService(store followFSStore) *followService {
	return &followService{
		store: store,
	}
}

// ListFollowed resolves followed-user ids into full profiles. The ids are
// split into groups of at most followBatchCap, one membership query per
// group runs concurrently, and the group results are flattened. Ordering
// across groups is not defined; no caller depends on it. An empty id set
// returns an empty result without touching the store.
func (s *followService) ListFollowed(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	groups := chunkIDs(ids, followBatchCap)
	results := make([][]*models.User, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			users, err := s.store.GetByIDs(gctx, group)
			if err != nil {
				return err
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(ids))
	for _, r := range results {
		users = append(users, r...)
	}
	return users, nil
}

// ListFollowedOf reads the owner's profile and resolves its followed set.
func (s *followService) ListFollowedOf(ctx context.Context, uid string) ([]*models.User, error) {
	owner, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.ListFollowed(ctx, owner.Followed)
}

// Follow adds targetID to uid's followed set. A user never follows
// themselves, and the target must exist.
func (s *followService) Follow(ctx context.Context, uid, targetID string) error {
	log := logger.FromContext(ctx)

	if targetID == uid {
		return errs.NewValidationError("cannot follow yourself")
	}
	if _, err := s.store.Get(ctx, targetID); err != nil {
		return err
	}
	if err := s.store.Follow(ctx, uid, targetID); err != nil {
		return err
	}

	log.Info("user followed", "target_id", targetID)
	return nil
}

func (s *followService) Unfollow(ctx context.Context, uid, targetID string) error {
	return s.store.Unfollow(ctx, uid, targetID)
}

// WatchFollowed keeps a live view of the followed users: each time the
// owner's profile document changes, the batched fetch re-runs against the
// current followed set and the full resolved list is delivered.
func (s *followService) WatchFollowed(ctx context.Context, uid string) *live.Handle[*models.User] {
	return live.Open(ctx, func(ctx context.Context, deliver func([]*models.User)) error {
		owner := s.store.Watch(ctx, uid)
		defer owner.Close()

		for snap := range owner.Updates() {
			if len(snap) == 0 {
				deliver([]*models.User{})
				continue
			}
			users, err := s.ListFollowed(ctx, snap[0].Followed)
			if err != nil {
				return err
			}
			deliver(users)
		}
		return owner.Err()
	})
}

func chunkIDs(ids []string, size int) [][]string {
	var groups [][]string
	for len(ids) > size {
		groups = append(groups, ids[:size])
		ids = ids[size:]
	}
	return append(groups, ids)
}
