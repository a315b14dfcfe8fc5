package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
)

// watchQuery binds a Firestore query to a live handle. Each change
// notification re-reads the complete matching set, in query order; the store
// is the only ordering authority, nothing is re-sorted client-side.
func watchQuery[T any](ctx context.Context, collection string, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) *live.Handle[T] {
	return live.Open(ctx, func(ctx context.Context, deliver func([]T)) error {
		it := q.Snapshots(ctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if listenerClosed(ctx, err) {
					return nil
				}
				return errs.NewSubscriptionError(collection, err)
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				if listenerClosed(ctx, err) {
					return nil
				}
				return errs.NewSubscriptionError(collection, err)
			}

			out := make([]T, 0, len(docs))
			for _, d := range docs {
				v, err := decode(d)
				if err != nil {
					return errs.NewSubscriptionError(collection, err)
				}
				out = append(out, v)
			}
			deliver(out)
		}
	})
}

// watchDocument watches a single document. Deliveries carry one element, or
// none while the document does not exist.
func watchDocument[T any](ctx context.Context, collection string, ref *firestore.DocumentRef, decode func(*firestore.DocumentSnapshot) (T, error)) *live.Handle[T] {
	return live.Open(ctx, func(ctx context.Context, deliver func([]T)) error {
		it := ref.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if listenerClosed(ctx, err) {
					return nil
				}
				return errs.NewSubscriptionError(collection, err)
			}
			if !snap.Exists() {
				deliver([]T{})
				continue
			}
			v, err := decode(snap)
			if err != nil {
				return errs.NewSubscriptionError(collection, err)
			}
			deliver([]T{v})
		}
	})
}

// listenerClosed distinguishes an intentionally released listener from a
// listener the store dropped.
func listenerClosed(ctx context.Context, err error) bool {
	return ctx.Err() != nil || status.Code(err) == codes.Canceled
}
