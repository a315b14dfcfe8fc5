package handlers

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/internal/response"
	"github.com/tsurilog/fishlog-backend/internal/services"
)

type UserService interface {
	Register(ctx context.Context, uid, email string, in services.ProfileInput, avatar []byte) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type FollowService interface {
	ListFollowedOf(ctx context.Context, uid string) ([]*models.User, error)
	Follow(ctx context.Context, uid, targetID string) error
	Unfollow(ctx context.Context, uid, targetID string) error
	WatchFollowed(ctx context.Context, uid string) *live.Handle[*models.User]
}

type PostService interface {
	Create(ctx context.Context, uid string, in services.PostInput, images [][]byte) (*models.Post, error)
	Delete(ctx context.Context, uid, postID string) error
	ListLatest(ctx context.Context) ([]*models.Post, error)
	WatchAll(ctx context.Context) *live.Handle[*models.Post]
	WatchRecent(ctx context.Context) *live.Handle[*models.Post]
}

type FishMapService interface {
	Create(ctx context.Context, uid string, in services.FishMapInput) (*models.FishMap, error)
	Delete(ctx context.Context, uid, id string) error
	WatchByArea(ctx context.Context, area string) (*live.Handle[*models.FishMap], error)
}

// PostFeedSession is one websocket client's switchable region-tab feed.
type PostFeedSession interface {
	Switch(ctx context.Context, view, area string) error
	Updates() <-chan []*models.Post
	Errs() <-chan error
	Close()
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	UserSvc         UserService
	FollowSvc       FollowService
	PostSvc         PostService
	MapSvc          FishMapService
	NewFeed         func() PostFeedSession
}
