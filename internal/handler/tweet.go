package handler

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/model"
)

// TweetHandler owns short text posts with optional attached images.
type TweetHandler struct {
	Cfg    config.Config
	Tweets TweetStore
	Users  UserStore
	Media  MediaStore
	Clean  CleanupScheduler
}

func NewTweetHandler(cfg config.Config, tweets TweetStore, users UserStore, media MediaStore, clean CleanupScheduler) *TweetHandler {
	return &TweetHandler{Cfg: cfg, Tweets: tweets, Users: users, Media: media, Clean: clean}
}

type tweetResponse struct {
	ID        uint64           `json:"id"`
	Content   string           `json:"content"`
	Images    []string         `json:"images"`
	Owner     ownerSummaryJSON `json:"owner"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func newTweetResponse(t model.Tweet, owner model.OwnerSummary) tweetResponse {
	urls := make([]string, 0, len(t.Images))
	for _, img := range t.Images {
		urls = append(urls, img.URL)
	}
	return tweetResponse{
		ID:        t.ID,
		Content:   t.Content,
		Images:    urls,
		Owner:     ownerJSON(owner),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Create posts a tweet from a multipart form: content plus zero or
// more files under "images". Images upload before the insert; a failed
// insert queues every uploaded image for cleanup.
func (h *TweetHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	content := strings.TrimSpace(c.FormValue("content"))
	if content == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	images, err := h.uploadImages(c, imageFiles(c))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "image upload failed")
	}

	tweet := model.Tweet{OwnerID: uid, Content: content, Images: images}
	if err := h.Tweets.Create(c.Request().Context(), &tweet); err != nil {
		scheduleCleanup(c, h.Clean, "tweet create aborted", imageKeys(images)...)
		return failRepo(c, err, "tweet not found")
	}

	owner, _ := currentUser(c)
	return respond(c, http.StatusCreated, newTweetResponse(tweet, ownerOf(owner)), "tweet created successfully")
}

// Update edits a tweet's content and/or its image set. New files come
// under "images", removals as existing image URLs under
// "deleteImages". At least one change must be present; unknown URLs in
// deleteImages are ignored. Removed images are queued for cleanup only
// after the rows are gone.
func (h *TweetHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "tweetId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid tweet id")
	}
	tweet, err := h.Tweets.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "tweet not found")
	}
	if tweet.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can edit this tweet")
	}

	content := strings.TrimSpace(c.FormValue("content"))
	newFiles := imageFiles(c)
	deleteURLs := formValues(c, "deleteImages")
	if content == "" && len(newFiles) == 0 && len(deleteURLs) == 0 {
		return fail(c, http.StatusBadRequest, "nothing to update")
	}

	added, err := h.uploadImages(c, newFiles)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "image upload failed")
	}
	if len(added) > 0 {
		if err := h.Tweets.AddImages(c.Request().Context(), id, added); err != nil {
			scheduleCleanup(c, h.Clean, "tweet update aborted", imageKeys(added)...)
			return failRepo(c, err, "tweet not found")
		}
	}

	if len(deleteURLs) > 0 {
		removed, err := h.Tweets.RemoveImagesByURL(c.Request().Context(), id, deleteURLs)
		if err != nil {
			return failRepo(c, err, "tweet not found")
		}
		scheduleCleanup(c, h.Clean, "tweet images removed", imageKeys(removed)...)
	}

	if content != "" {
		if err := h.Tweets.UpdateContent(c.Request().Context(), id, content); err != nil {
			return failRepo(c, err, "tweet not found")
		}
	}

	updated, err := h.Tweets.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "tweet not found")
	}
	owner, _ := currentUser(c)
	return respond(c, http.StatusOK, newTweetResponse(updated, ownerOf(owner)), "tweet updated successfully")
}

// Delete removes the tweet, its likes and comments, and queues its
// images for cleanup.
func (h *TweetHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "tweetId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid tweet id")
	}
	tweet, err := h.Tweets.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "tweet not found")
	}
	if tweet.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can delete this tweet")
	}
	if err := h.Tweets.Delete(c.Request().Context(), id); err != nil {
		return failRepo(c, err, "tweet not found")
	}
	scheduleCleanup(c, h.Clean, "tweet deleted", imageKeys(tweet.Images)...)
	return respond(c, http.StatusOK, nil, "tweet deleted successfully")
}

// ListByUser returns one user's tweets, newest first, paginated.
func (h *TweetHandler) ListByUser(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), userID); err != nil {
		return failRepo(c, err, "user not found")
	}
	page, limit := parsePage(c)
	tweets, err := h.Tweets.ListByUser(c.Request().Context(), userID, page, limit)
	if err != nil {
		return failRepo(c, err, "tweets not found")
	}
	out := make([]tweetResponse, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, newTweetResponse(t.Tweet, t.Owner))
	}
	return respond(c, http.StatusOK, out, "tweets fetched successfully")
}

// uploadImages pushes each file to the object store. On a mid-batch
// failure the already-uploaded files are queued for cleanup and the
// error returned.
func (h *TweetHandler) uploadImages(c echo.Context, files []*multipart.FileHeader) ([]model.TweetImage, error) {
	if len(files) == 0 {
		return nil, nil
	}
	ctx, cancel := mediaContext(c, h.Cfg.MediaTimeout)
	defer cancel()

	images := make([]model.TweetImage, 0, len(files))
	for _, fh := range files {
		asset, err := uploadFile(ctx, h.Media, "tweets", fh)
		if err != nil {
			scheduleCleanup(c, h.Clean, "tweet image batch aborted", imageKeys(images)...)
			return nil, err
		}
		images = append(images, model.TweetImage{URL: asset.URL, Key: asset.Key})
	}
	return images, nil
}

func imageFiles(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}

func formValues(c echo.Context, name string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	vals := make([]string, 0, len(form.Value[name]))
	for _, v := range form.Value[name] {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

func imageKeys(images []model.TweetImage) []string {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.Key)
	}
	return keys
}
