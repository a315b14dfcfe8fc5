package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/pkg/helpers"
)

type stubFollowStore struct {
	mu    sync.Mutex
	users map[string]*models.User

	getByIDsCalls [][]string
	getByIDsErr   error

	followedUID    string
	followedTarget string
}

func newStubFollowStore() *stubFollowStore {
	return &stubFollowStore{users: make(map[string]*models.User)}
}

func (s *stubFollowStore) Get(_ context.Context, uid string) (*models.User, error) {
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	return nil, errs.NewNotFoundError("user not found")
}

func (s *stubFollowStore) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	s.mu.Lock()
	s.getByIDsCalls = append(s.getByIDsCalls, ids)
	s.mu.Unlock()
	if s.getByIDsErr != nil {
		return nil, s.getByIDsErr
	}

	var users []*models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *stubFollowStore) Follow(_ context.Context, uid, targetID string) error {
	s.followedUID = uid
	s.followedTarget = targetID
	return nil
}

func (s *stubFollowStore) Unfollow(_ context.Context, _, _ string) error { return nil }

func (s *stubFollowStore) Watch(ctx context.Context, uid string) *live.Handle[*models.User] {
	owner := s.users[uid]
	return live.Open(ctx, func(ctx context.Context, deliver func([]*models.User)) error {
		deliver([]*models.User{owner})
		return nil
	})
}

func (s *stubFollowStore) calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getByIDsCalls
}

func TestListFollowedEmptySkipsStore(t *testing.T) {
	store := newStubFollowStore()
	svc := NewFollowService(store)

	users, err := svc.ListFollowed(helpers.TestCtx(), nil)
	if err != nil {
		t.Fatalf("ListFollowed returned error: %v", err)
	}

	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", users)
	}
	if len(store.calls()) != 0 {
		t.Fatalf("store queried for an empty id set")
	}
}

func TestListFollowedSplitsIntoCappedGroups(t *testing.T) {
	store := newStubFollowStore()
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("uid-%02d", i)
		store.users[ids[i]] = &models.User{ID: ids[i], UserName: ids[i]}
	}
	svc := NewFollowService(store)

	users, err := svc.ListFollowed(helpers.TestCtx(), ids)
	if err != nil {
		t.Fatalf("ListFollowed returned error: %v", err)
	}

	if len(users) != 25 {
		t.Fatalf("resolved %d users, want 25", len(users))
	}

	calls := store.calls()
	if len(calls) != 3 {
		t.Fatalf("store queried %d times, want 3", len(calls))
	}
	total := 0
	for _, c := range calls {
		if len(c) > followBatchCap {
			t.Fatalf("group of %d exceeds the cap of %d", len(c), followBatchCap)
		}
		total += len(c)
	}
	if total != 25 {
		t.Fatalf("groups cover %d ids, want 25", total)
	}
}

func TestListFollowedPropagatesGroupError(t *testing.T) {
	store := newStubFollowStore()
	store.getByIDsErr = errors.New("query failed")
	svc := NewFollowService(store)

	_, err := svc.ListFollowed(helpers.TestCtx(), []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected error when a group query fails")
	}
}

func TestChunkIDs(t *testing.T) {
	cases := []struct {
		n      int
		groups int
		last   int
	}{
		{1, 1, 1},
		{9, 1, 9},
		{10, 1, 10},
		{11, 2, 1},
		{20, 2, 10},
		{21, 3, 1},
	}

	for _, tc := range cases {
		ids := make([]string, tc.n)
		for i := range ids {
			ids[i] = fmt.Sprintf("id-%d", i)
		}

		groups := chunkIDs(ids, followBatchCap)
		if len(groups) != tc.groups {
			t.Fatalf("n=%d: got %d groups, want %d", tc.n, len(groups), tc.groups)
		}
		for i, g := range groups[:len(groups)-1] {
			if len(g) != followBatchCap {
				t.Fatalf("n=%d: group %d has %d ids, want %d", tc.n, i, len(g), followBatchCap)
			}
		}
		if last := groups[len(groups)-1]; len(last) != tc.last {
			t.Fatalf("n=%d: last group has %d ids, want %d", tc.n, len(last), tc.last)
		}
	}
}

func TestFollowSelf(t *testing.T) {
	store := newStubFollowStore()
	svc := NewFollowService(store)

	err := svc.Follow(helpers.TestCtx(), "uid-1", "uid-1")

	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestFollowMissingTarget(t *testing.T) {
	store := newStubFollowStore()
	svc := NewFollowService(store)

	err := svc.Follow(helpers.TestCtx(), "uid-1", "ghost")

	var nerr *errs.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if store.followedUID != "" {
		t.Fatalf("followed set mutated despite missing target")
	}
}

func TestFollow(t *testing.T) {
	store := newStubFollowStore()
	store.users["uid-2"] = &models.User{ID: "uid-2"}
	svc := NewFollowService(store)

	if err := svc.Follow(helpers.TestCtx(), "uid-1", "uid-2"); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	if store.followedUID != "uid-1" || store.followedTarget != "uid-2" {
		t.Fatalf("unexpected follow write: %q -> %q", store.followedUID, store.followedTarget)
	}
}

func TestWatchFollowedResolvesSnapshot(t *testing.T) {
	store := newStubFollowStore()
	store.users["uid-1"] = &models.User{ID: "uid-1", Followed: []string{"uid-2", "uid-3"}}
	store.users["uid-2"] = &models.User{ID: "uid-2", UserName: "two"}
	store.users["uid-3"] = &models.User{ID: "uid-3", UserName: "three"}
	svc := NewFollowService(store)

	h := svc.WatchFollowed(helpers.TestCtx(), "uid-1")
	defer h.Close()

	select {
	case users := <-h.Updates():
		if len(users) != 2 {
			t.Fatalf("resolved %d users, want 2", len(users))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no snapshot delivered")
	}
}
