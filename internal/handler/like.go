package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// LikeHandler owns the like toggles and the liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Tweets   TweetStore
	Comments CommentStore
}

func NewLikeHandler(likes LikeStore, videos VideoStore, tweets TweetStore, comments CommentStore) *LikeHandler {
	return &LikeHandler{Likes: likes, Videos: videos, Tweets: tweets, Comments: comments}
}

func (h *LikeHandler) ToggleVideo(c echo.Context) error {
	return h.toggle(c, model.TargetVideo, "videoId", func(c echo.Context, id uint64) error {
		_, err := h.Videos.GetByID(c.Request().Context(), id)
		return err
	})
}

func (h *LikeHandler) ToggleTweet(c echo.Context) error {
	return h.toggle(c, model.TargetTweet, "tweetId", func(c echo.Context, id uint64) error {
		_, err := h.Tweets.GetByID(c.Request().Context(), id)
		return err
	})
}

func (h *LikeHandler) ToggleComment(c echo.Context) error {
	return h.toggle(c, model.TargetComment, "commentId", func(c echo.Context, id uint64) error {
		_, err := h.Comments.GetByID(c.Request().Context(), id)
		return err
	})
}

// toggle flips the like state for one (user, target) pair. Toggling
// twice always lands back where it started regardless of concurrent
// requests; the repository resolves races on the unique key.
func (h *LikeHandler) toggle(c echo.Context, kind model.TargetKind, param string, exists existsFn) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	targetID, err := parseID(c, param)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid "+string(kind)+" id")
	}
	if err := exists(c, targetID); err != nil {
		return failRepo(c, err, string(kind)+" not found")
	}
	liked, err := h.Likes.Toggle(c.Request().Context(), uid, kind, targetID)
	if err != nil {
		return failRepo(c, err, string(kind)+" not found")
	}
	msg := string(kind) + " unliked successfully"
	if liked {
		msg = string(kind) + " liked successfully"
	}
	return respond(c, http.StatusOK, map[string]any{"liked": liked}, msg)
}

// LikedVideos lists every video the caller has liked.
func (h *LikeHandler) LikedVideos(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	videos, err := h.Likes.ListLikedVideos(c.Request().Context(), uid)
	if err != nil {
		return failRepo(c, err, "liked videos not found")
	}
	return respond(c, http.StatusOK, videos, "liked videos fetched successfully")
}
