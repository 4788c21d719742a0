package handler

import (
	"context"

	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/repository"
	"github.com/Yashh918/WatchHaven/internal/storage"
)

// The store interfaces below are consumer-side views of the repository
// layer. The concrete *repository.*Repo types satisfy them; handler
// tests wire in-memory fakes instead of a database.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (model.User, error)
	UpdateDetails(ctx context.Context, id uint64, fullName, email string) error
	UpdateAvatar(ctx context.Context, id uint64, url, key string) error
	UpdateCover(ctx context.Context, id uint64, url, key string) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	SetRefreshToken(ctx context.Context, id uint64, hash *string) error
	ChannelProfile(ctx context.Context, username string, viewerID uint64) (model.ChannelProfile, error)
	TouchWatchHistory(ctx context.Context, userID, videoID uint64) error
	WatchHistory(ctx context.Context, userID uint64) ([]model.HistoryEntry, error)
}

type VideoStore interface {
	Create(ctx context.Context, v *model.Video) error
	GetByID(ctx context.Context, id uint64) (model.Video, error)
	Update(ctx context.Context, v *model.Video) error
	Delete(ctx context.Context, id uint64) error
	IncrementViews(ctx context.Context, id uint64) error
	SetPublished(ctx context.Context, id uint64, published bool) error
	List(ctx context.Context, opts repository.ListOptions) ([]model.VideoWithOwner, error)
}

type TweetStore interface {
	Create(ctx context.Context, t *model.Tweet) error
	GetByID(ctx context.Context, id uint64) (model.Tweet, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	AddImages(ctx context.Context, tweetID uint64, images []model.TweetImage) error
	RemoveImagesByURL(ctx context.Context, tweetID uint64, urls []string) ([]model.TweetImage, error)
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64, page, limit int) ([]model.TweetWithOwner, error)
}

type CommentStore interface {
	Create(ctx context.Context, cm *model.Comment) error
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
	ListByTarget(ctx context.Context, kind model.TargetKind, targetID uint64, page, limit int) ([]model.CommentWithOwner, error)
}

type LikeStore interface {
	Toggle(ctx context.Context, userID uint64, kind model.TargetKind, targetID uint64) (bool, error)
	ListLikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error)
}

type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID uint64) (bool, error)
	Subscribers(ctx context.Context, channelID uint64) (int64, []model.OwnerSummary, error)
	Channels(ctx context.Context, subscriberID uint64) (int64, []model.OwnerSummary, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, p *model.Playlist) error
	GetByID(ctx context.Context, id uint64) (model.Playlist, error)
	Detail(ctx context.Context, id uint64) (model.PlaylistDetail, error)
	Update(ctx context.Context, id uint64, name, description string) error
	Delete(ctx context.Context, id uint64) error
	AddVideo(ctx context.Context, playlistID, videoID uint64) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint64) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error)
}

// MediaStore aliases the storage contract so handler signatures stay in
// one package.
type MediaStore = storage.MediaStore

// CleanupScheduler queues object-store keys for asynchronous deletion
// after the owning row has been committed. *queue.Publisher satisfies
// it.
type CleanupScheduler interface {
	PublishCleanup(ctx context.Context, keys []string, reason string) error
}
