package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/database"
	"github.com/Yashh918/WatchHaven/internal/handler"
	"github.com/Yashh918/WatchHaven/internal/queue"
	"github.com/Yashh918/WatchHaven/internal/repository"
	"github.com/Yashh918/WatchHaven/internal/router"
	"github.com/Yashh918/WatchHaven/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	media, err := storage.NewS3Store(context.Background(), storage.ObjectStoreConfig{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	publisher := queue.NewPublisher(cfg.AMQPURL)
	defer publisher.Close()
	go queue.StartCleanupConsumer(cfg.AMQPURL, media)

	users := repository.NewUserRepo(db)
	videos := repository.NewVideoRepo(db)
	tweets := repository.NewTweetRepo(db)
	comments := repository.NewCommentRepo(db)
	likes := repository.NewLikeRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	playlists := repository.NewPlaylistRepo(db)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:           cfg,
		Redis:         rdb,
		Users:         handler.NewUserHandler(cfg, users, media, publisher),
		Videos:        handler.NewVideoHandler(cfg, videos, users, media, publisher),
		Tweets:        handler.NewTweetHandler(cfg, tweets, users, media, publisher),
		Comments:      handler.NewCommentHandler(comments, videos, tweets),
		Likes:         handler.NewLikeHandler(likes, videos, tweets, comments),
		Subscriptions: handler.NewSubscriptionHandler(subs, users),
		Playlists:     handler.NewPlaylistHandler(playlists, videos, users),
		Health:        handler.NewHealthHandler(db),
		Accounts:      users,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
