package services

import (
	"context"
	"time"

	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

type userUSStore interface {
	Create(ctx context.Context, uid string, user *models.User) error
	Get(ctx context.Context, uid string) (*models.User, error)
}

type userUSMedia interface {
	UploadUserImage(ctx context.Context, uid string, image []byte) (string, error)
}

// ProfileInput carries the user-entered signup fields.
type ProfileInput struct {
	UserName      string
	Profile       string
	UserYoutube   string
	UserTiktok    string
	UserInstagram string
	UserX         string
}

type userService struct {
	store userUSStore
	media userUSMedia
}

func NewUserService(store userUSStore, media userUSMedia) *userService {
	return &userService{
		store: store,
		media: media,
	}
}

// Register creates the profile document for a freshly signed-up account. The
// avatar is uploaded first so the document is only ever written with a
// resolved image URL.
func (s *userService) Register(ctx context.Context, uid, email string, in ProfileInput, avatar []byte) (*models.User, error) {
	log := logger.FromContext(ctx)

	imageURL, err := s.media.UploadUserImage(ctx, uid, avatar)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:      in.UserName,
		Email:         email,
		Profile:       in.Profile,
		UserImage:     imageURL,
		UserYoutube:   in.UserYoutube,
		UserTiktok:    in.UserTiktok,
		UserInstagram: in.UserInstagram,
		UserX:         in.UserX,
		Followed:      []string{},
		UpdatedAt:     time.Now(),
	}
	if err := s.store.Create(ctx, uid, user); err != nil {
		return nil, err
	}
	user.ID = uid

	log.Info("user registered", "user_name", in.UserName)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.Get(ctx, id)
}
