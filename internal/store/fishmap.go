package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
)

type fishMapStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewFishMapStore(client *firestore.Client) *fishMapStore {
	return &fishMapStore{
		Client:     client,
		Collection: client.Collection("maps"),
	}
}

func (s *fishMapStore) Create(ctx context.Context, id string, m *models.FishMap) error {
	if _, err := s.Collection.Doc(id).Create(ctx, m); err != nil {
		return errs.NewDatabaseError("create", "failed to create fish map", err)
	}
	return nil
}

func (s *fishMapStore) Get(ctx context.Context, id string) (*models.FishMap, error) {
	doc, err := s.Collection.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("fish map not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to read fish map", err)
	}
	return decodeFishMap(doc)
}

func (s *fishMapStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Collection.Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete fish map", err)
	}
	return nil
}

// WatchByArea streams one area's fishing spots, oldest first.
func (s *fishMapStore) WatchByArea(ctx context.Context, area string) *live.Handle[*models.FishMap] {
	q := s.Collection.Query.Where("area", "==", area).OrderBy("updatedAt", firestore.Asc)
	return watchQuery(ctx, "maps", q, decodeFishMap)
}

func decodeFishMap(doc *firestore.DocumentSnapshot) (*models.FishMap, error) {
	var m models.FishMap
	if err := doc.DataTo(&m); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse fish map data", err)
	}
	m.ID = doc.Ref.ID
	return &m, nil
}
