package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/tsurilog/fishlog-backend/internal/bootstrap"
	"github.com/tsurilog/fishlog-backend/internal/config"
	"github.com/tsurilog/fishlog-backend/internal/handlers"
	"github.com/tsurilog/fishlog-backend/internal/response"
	"github.com/tsurilog/fishlog-backend/internal/router"
	"github.com/tsurilog/fishlog-backend/internal/services"
	"github.com/tsurilog/fishlog-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	pstore := store.NewPostStore(bs.Firestore)
	mstore := store.NewFishMapStore(bs.Firestore)
	blobs := store.NewBlobStore(bs.Bucket)

	// services
	mediaserv := services.NewMediaService(blobs)
	userv := services.NewUserService(ustore, mediaserv)
	fserv := services.NewFollowService(ustore)
	pserv := services.NewPostService(pstore, ustore, mediaserv, blobs)
	mapserv := services.NewFishMapService(mstore, cfg.MapCuratorUID)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := handlers.Deps{
		Log:             bs.Log,
		ResponseHandler: rh,
		Firebase:        bs.Firebase,
		UserSvc:         userv,
		FollowSvc:       fserv,
		PostSvc:         pserv,
		MapSvc:          mapserv,
		NewFeed: func() handlers.PostFeedSession {
			return services.NewPostFeed(pstore)
		},
	}

	// router
	r := router.New(deps)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
