package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

type fishMapFMStore interface {
	Create(ctx context.Context, id string, m *models.FishMap) error
	Get(ctx context.Context, id string) (*models.FishMap, error)
	Delete(ctx context.Context, id string) error
	WatchByArea(ctx context.Context, area string) *live.Handle[*models.FishMap]
}

// FishMapInput carries the user-entered spot fields.
type FishMapInput struct {
	Title     string
	Area      string
	Season    string
	Latitude  float64
	Longitude float64
	Content   string
}

type fishMapService struct {
	store      fishMapFMStore
	curatorUID string
}

// NewFishMapService builds the spot service. When curatorUID is non-empty,
// only that account may create spots; deletion is always owner-only.
func NewFishMapService(store fishMapFMStore, curatorUID string) *fishMapService {
	return &fishMapService{
		store:      store,
		curatorUID: curatorUID,
	}
}

func (s *fishMapService) Create(ctx context.Context, uid string, in FishMapInput) (*models.FishMap, error) {
	log := logger.FromContext(ctx)

	if s.curatorUID != "" && uid != s.curatorUID {
		return nil, errs.NewPermissionDeniedError("only the curator can create fish maps")
	}
	if in.Area == "" {
		return nil, errs.NewValidationError("area is required")
	}

	m := &models.FishMap{
		UserID:    uid,
		Title:     in.Title,
		Area:      in.Area,
		Season:    in.Season,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Content:   in.Content,
		UpdatedAt: time.Now(),
	}
	id := uuid.NewString()
	if err := s.store.Create(ctx, id, m); err != nil {
		return nil, err
	}
	m.ID = id

	log.Info("fish map created", "map_id", id, "area", in.Area)
	return m, nil
}

func (s *fishMapService) Delete(ctx context.Context, uid, id string) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != uid {
		return errs.NewPermissionDeniedError("only the owner can delete a fish map")
	}
	return s.store.Delete(ctx, id)
}

func (s *fishMapService) WatchByArea(ctx context.Context, area string) (*live.Handle[*models.FishMap], error) {
	if area == "" {
		return nil, errs.NewValidationError("area is required")
	}
	return s.store.WatchByArea(ctx, area), nil
}
