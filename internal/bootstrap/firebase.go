package bootstrap

import (
	"context"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

func InitFirebase(ctx context.Context, bucket string) (*auth.Client, *storage.BucketHandle, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket})
	if err != nil {
		return nil, nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, err
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, nil, err
	}
	bucketHandle, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, nil, err
	}

	return authClient, bucketHandle, nil
}
