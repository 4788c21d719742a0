package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/repository"
)

// VideoHandler owns the video catalog: publishing, metadata updates,
// listing, the publish toggle and the view counter.
type VideoHandler struct {
	Cfg    config.Config
	Videos VideoStore
	Users  UserStore
	Media  MediaStore
	Clean  CleanupScheduler
}

func NewVideoHandler(cfg config.Config, videos VideoStore, users UserStore, media MediaStore, clean CleanupScheduler) *VideoHandler {
	return &VideoHandler{Cfg: cfg, Videos: videos, Users: users, Media: media, Clean: clean}
}

type videoResponse struct {
	ID          uint64           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	VideoURL    string           `json:"videoUrl"`
	Thumbnail   string           `json:"thumbnail"`
	Duration    float64          `json:"duration"`
	Views       uint64           `json:"views"`
	IsPublished bool             `json:"isPublished"`
	Owner       ownerSummaryJSON `json:"owner"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newVideoResponse(v model.Video, owner model.OwnerSummary) videoResponse {
	return videoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoURL:    v.VideoURL,
		Thumbnail:   v.ThumbnailURL,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		Owner:       ownerJSON(owner),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// List returns published videos matching the optional query, owner and
// sort parameters, paginated. Pages beyond the data are valid and
// yield an empty list.
func (h *VideoHandler) List(c echo.Context) error {
	page, limit := parsePage(c)
	opts := repository.ListOptions{
		Query: strings.TrimSpace(c.QueryParam("query")),
		Page:  page,
		Limit: limit,
	}
	if raw := c.QueryParam("userId"); raw != "" {
		ownerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid userId")
		}
		opts.OwnerID = ownerID
	}
	opts.SortBy = c.QueryParam("sortBy")
	opts.SortDesc = strings.EqualFold(c.QueryParam("sortType"), "desc")

	videos, err := h.Videos.List(c.Request().Context(), opts)
	if err != nil {
		return failRepo(c, err, "videos not found")
	}
	out := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, newVideoResponse(v.Video, v.Owner))
	}
	return respond(c, http.StatusOK, out, "videos fetched successfully")
}

// Publish uploads a new video. The video file is mandatory, the
// thumbnail optional; both go to the object store before the row is
// inserted, and a failed insert queues the fresh uploads for cleanup.
func (h *VideoHandler) Publish(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		return fail(c, http.StatusBadRequest, "video file is required")
	}

	ctx, cancel := mediaContext(c, h.Cfg.MediaTimeout)
	defer cancel()

	videoAsset, err := uploadFile(ctx, h.Media, "videos", videoFile)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "video upload failed")
	}

	video := model.Video{
		OwnerID:     uid,
		Title:       title,
		Description: strings.TrimSpace(c.FormValue("description")),
		VideoURL:    videoAsset.URL,
		VideoKey:    videoAsset.Key,
		IsPublished: true,
	}
	if raw := c.FormValue("duration"); raw != "" {
		if d, err := strconv.ParseFloat(raw, 64); err == nil && d >= 0 {
			video.Duration = d
		}
	}

	if thumbFile, err := c.FormFile("thumbnail"); err == nil {
		thumb, err := uploadFile(ctx, h.Media, "thumbnails", thumbFile)
		if err != nil {
			scheduleCleanup(c, h.Clean, "video publish aborted", videoAsset.Key)
			return fail(c, http.StatusInternalServerError, "thumbnail upload failed")
		}
		video.ThumbnailURL = thumb.URL
		video.ThumbnailKey = thumb.Key
	}

	if err := h.Videos.Create(c.Request().Context(), &video); err != nil {
		scheduleCleanup(c, h.Clean, "video publish aborted", video.VideoKey, video.ThumbnailKey)
		return failRepo(c, err, "video not found")
	}

	owner, _ := currentUser(c)
	return respond(c, http.StatusCreated, newVideoResponse(video, ownerOf(owner)), "video published successfully")
}

// Get returns one video for watching. Unpublished videos are not
// served, even to their owner, and the request counts as a view: the
// counter is incremented and the viewer's watch history touched.
func (h *VideoHandler) Get(c echo.Context) error {
	id, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	video, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "video not found")
	}
	if !video.IsPublished {
		return fail(c, http.StatusBadRequest, "video is not available")
	}

	if err := h.Videos.IncrementViews(c.Request().Context(), id); err != nil {
		c.Logger().Warnf("video %d: view increment failed: %v", id, err)
	} else {
		video.Views++
	}
	if uid, err := getUserID(c); err == nil {
		if err := h.Users.TouchWatchHistory(c.Request().Context(), uid, id); err != nil {
			c.Logger().Warnf("video %d: watch history update failed: %v", id, err)
		}
	}

	owner, err := h.Users.GetByID(c.Request().Context(), video.OwnerID)
	if err != nil {
		return failRepo(c, err, "video owner not found")
	}
	return respond(c, http.StatusOK, newVideoResponse(video, ownerOf(owner)), "video fetched successfully")
}

// Update edits title, description and/or thumbnail. Only the owner may
// edit, and at least one updatable field must be present.
func (h *VideoHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	video, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "video not found")
	}
	if video.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can edit this video")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	thumbFile, thumbErr := c.FormFile("thumbnail")
	if title == "" && description == "" && thumbErr != nil {
		return fail(c, http.StatusBadRequest, "at least one of title, description or thumbnail is required")
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}

	oldThumbKey := ""
	if thumbErr == nil {
		ctx, cancel := mediaContext(c, h.Cfg.MediaTimeout)
		defer cancel()
		thumb, err := uploadFile(ctx, h.Media, "thumbnails", thumbFile)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "thumbnail upload failed")
		}
		oldThumbKey = video.ThumbnailKey
		video.ThumbnailURL = thumb.URL
		video.ThumbnailKey = thumb.Key
	}

	if err := h.Videos.Update(c.Request().Context(), &video); err != nil {
		if thumbErr == nil {
			scheduleCleanup(c, h.Clean, "video update aborted", video.ThumbnailKey)
		}
		return failRepo(c, err, "video not found")
	}
	scheduleCleanup(c, h.Clean, "thumbnail replaced", oldThumbKey)

	owner, _ := currentUser(c)
	return respond(c, http.StatusOK, newVideoResponse(video, ownerOf(owner)), "video updated successfully")
}

// Delete removes the video row together with its likes and comments,
// then queues the media files for deletion.
func (h *VideoHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	video, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "video not found")
	}
	if video.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can delete this video")
	}
	if err := h.Videos.Delete(c.Request().Context(), id); err != nil {
		return failRepo(c, err, "video not found")
	}
	scheduleCleanup(c, h.Clean, "video deleted", video.VideoKey, video.ThumbnailKey)
	return respond(c, http.StatusOK, nil, "video deleted successfully")
}

// TogglePublish flips visibility. Only the owner may toggle.
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	video, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "video not found")
	}
	if video.OwnerID != uid {
		return fail(c, http.StatusForbidden, "only the owner can change publish status")
	}
	if err := h.Videos.SetPublished(c.Request().Context(), id, !video.IsPublished); err != nil {
		return failRepo(c, err, "video not found")
	}
	return respond(c, http.StatusOK, map[string]any{"isPublished": !video.IsPublished}, "publish status toggled successfully")
}

func ownerOf(u model.User) model.OwnerSummary {
	return model.OwnerSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.AvatarURL}
}
