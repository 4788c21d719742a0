// Package router wires handlers onto the echo instance. Routes marked
// protected sit behind the JWT guard; public read-only listings sit
// behind the redis response cache when one is configured.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/handler"
	"github.com/Yashh918/WatchHaven/internal/middleware"
)

// Deps carries everything Register needs.
type Deps struct {
	Cfg   config.Config
	Redis *redis.Client

	Users         *handler.UserHandler
	Videos        *handler.VideoHandler
	Tweets        *handler.TweetHandler
	Comments      *handler.CommentHandler
	Likes         *handler.LikeHandler
	Subscriptions *handler.SubscriptionHandler
	Playlists     *handler.PlaylistHandler
	Health        *handler.HealthHandler

	Accounts middleware.AccountLoader
}

// Register mounts the full API under /api/v1.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	auth := middleware.JWTAuth(d.Cfg.AccessSecret, d.Accounts)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	e.GET("/healthz", d.Health.Check)

	api := e.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.POST("/refresh-token", d.Users.Refresh)
	users.POST("/logout", d.Users.Logout, auth)
	users.POST("/change-password", d.Users.ChangePassword, auth)
	users.GET("/me", d.Users.Me, auth)
	users.PATCH("/update-details", d.Users.UpdateDetails, auth)
	users.PATCH("/avatar", d.Users.UpdateAvatar, auth)
	users.PATCH("/cover-image", d.Users.UpdateCover, auth)
	users.GET("/channel/:username", d.Users.Channel, auth)
	users.GET("/watch-history", d.Users.WatchHistory, auth)

	videos := api.Group("/videos")
	videos.GET("", d.Videos.List, cache)
	videos.POST("", d.Videos.Publish, auth)
	videos.GET("/:videoId", d.Videos.Get, auth)
	videos.PATCH("/:videoId", d.Videos.Update, auth)
	videos.DELETE("/:videoId", d.Videos.Delete, auth)
	videos.PATCH("/:videoId/toggle-publish", d.Videos.TogglePublish, auth)

	tweets := api.Group("/tweets")
	tweets.POST("", d.Tweets.Create, auth)
	tweets.PATCH("/:tweetId", d.Tweets.Update, auth)
	tweets.DELETE("/:tweetId", d.Tweets.Delete, auth)
	tweets.GET("/user/:userId", d.Tweets.ListByUser, cache)

	comments := api.Group("/comments")
	comments.POST("/video/:videoId", d.Comments.CreateOnVideo, auth)
	comments.POST("/tweet/:tweetId", d.Comments.CreateOnTweet, auth)
	comments.PATCH("/:commentId", d.Comments.Update, auth)
	comments.DELETE("/:commentId", d.Comments.Delete, auth)
	comments.GET("/video/:videoId", d.Comments.ListOnVideo, cache)
	comments.GET("/tweet/:tweetId", d.Comments.ListOnTweet, cache)

	likes := api.Group("/likes", auth)
	likes.POST("/video/:videoId", d.Likes.ToggleVideo)
	likes.POST("/tweet/:tweetId", d.Likes.ToggleTweet)
	likes.POST("/comment/:commentId", d.Likes.ToggleComment)
	likes.GET("/videos", d.Likes.LikedVideos)

	subs := api.Group("/subscriptions", auth)
	subs.POST("/channel/:channelId", d.Subscriptions.Toggle)
	subs.GET("/subscribers/:channelId", d.Subscriptions.Subscribers)
	subs.GET("/channels/:subscriberId", d.Subscriptions.Channels)

	playlists := api.Group("/playlists")
	playlists.POST("", d.Playlists.Create, auth)
	playlists.GET("/:playlistId", d.Playlists.Get, cache)
	playlists.PATCH("/:playlistId", d.Playlists.Update, auth)
	playlists.DELETE("/:playlistId", d.Playlists.Delete, auth)
	playlists.PATCH("/:playlistId/videos/:videoId", d.Playlists.AddVideo, auth)
	playlists.DELETE("/:playlistId/videos/:videoId", d.Playlists.RemoveVideo, auth)
	playlists.GET("/user/:userId", d.Playlists.ListByUser, cache)
}
