package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// CommentHandler owns comments on videos and tweets. The target kind
// is fixed by the route, never by client input.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Tweets   TweetStore
}

func NewCommentHandler(comments CommentStore, videos VideoStore, tweets TweetStore) *CommentHandler {
	return &CommentHandler{Comments: comments, Videos: videos, Tweets: tweets}
}

type commentResponse struct {
	ID        uint64           `json:"id"`
	Content   string           `json:"content"`
	Owner     ownerSummaryJSON `json:"owner"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func newCommentResponse(cm model.Comment, owner model.OwnerSummary) commentResponse {
	return commentResponse{
		ID:        cm.ID,
		Content:   cm.Content,
		Owner:     ownerJSON(owner),
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) CreateOnVideo(c echo.Context) error {
	return h.create(c, model.TargetVideo, "videoId", h.videoExists)
}

func (h *CommentHandler) CreateOnTweet(c echo.Context) error {
	return h.create(c, model.TargetTweet, "tweetId", h.tweetExists)
}

func (h *CommentHandler) ListOnVideo(c echo.Context) error {
	return h.list(c, model.TargetVideo, "videoId", h.videoExists)
}

func (h *CommentHandler) ListOnTweet(c echo.Context) error {
	return h.list(c, model.TargetTweet, "tweetId", h.tweetExists)
}

func (h *CommentHandler) create(c echo.Context, kind model.TargetKind, param string, exists existsFn) error {
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
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	comment := model.Comment{OwnerID: uid, TargetKind: kind, TargetID: targetID, Content: content}
	if err := h.Comments.Create(c.Request().Context(), &comment); err != nil {
		return failRepo(c, err, "comment not found")
	}
	owner, _ := currentUser(c)
	return respond(c, http.StatusCreated, newCommentResponse(comment, ownerOf(owner)), "comment added successfully")
}

func (h *CommentHandler) list(c echo.Context, kind model.TargetKind, param string, exists existsFn) error {
	targetID, err := parseID(c, param)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid "+string(kind)+" id")
	}
	if err := exists(c, targetID); err != nil {
		return failRepo(c, err, string(kind)+" not found")
	}
	page, limit := parsePage(c)
	comments, err := h.Comments.ListByTarget(c.Request().Context(), kind, targetID, page, limit)
	if err != nil {
		return failRepo(c, err, "comments not found")
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, newCommentResponse(cm.Comment, cm.Owner))
	}
	return respond(c, http.StatusOK, out, "comments fetched successfully")
}

// Update rewrites a comment's content. Owner only.
func (h *CommentHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "commentId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid comment id")
	}
	comment, err := h.Comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "comment not found")
	}
	if comment.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can edit this comment")
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}
	if err := h.Comments.UpdateContent(c.Request().Context(), id, content); err != nil {
		return failRepo(c, err, "comment not found")
	}
	comment.Content = content
	owner, _ := currentUser(c)
	return respond(c, http.StatusOK, newCommentResponse(comment, ownerOf(owner)), "comment updated successfully")
}

// Delete removes a comment and its likes. Owner only.
func (h *CommentHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "commentId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid comment id")
	}
	comment, err := h.Comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "comment not found")
	}
	if comment.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can delete this comment")
	}
	if err := h.Comments.Delete(c.Request().Context(), id); err != nil {
		return failRepo(c, err, "comment not found")
	}
	return respond(c, http.StatusOK, nil, "comment deleted successfully")
}

type existsFn func(c echo.Context, id uint64) error

func (h *CommentHandler) videoExists(c echo.Context, id uint64) error {
	_, err := h.Videos.GetByID(c.Request().Context(), id)
	return err
}

func (h *CommentHandler) tweetExists(c echo.Context, id uint64) error {
	_, err := h.Tweets.GetByID(c.Request().Context(), id)
	return err
}
