package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/repository"
)

// PlaylistHandler owns named ordered video collections.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
}

func NewPlaylistHandler(playlists PlaylistStore, videos VideoStore, users UserStore) *PlaylistHandler {
	return &PlaylistHandler{Playlists: playlists, Videos: videos, Users: users}
}

type playlistResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"ownerId"`
	VideoIDs    []uint64  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newPlaylistResponse(p model.Playlist) playlistResponse {
	ids := p.VideoIDs
	if ids == nil {
		ids = []uint64{}
	}
	return playlistResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		VideoIDs:    ids,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes an empty playlist. Name is required.
func (h *PlaylistHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	var req playlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	playlist := model.Playlist{OwnerID: uid, Name: name, Description: strings.TrimSpace(req.Description)}
	if err := h.Playlists.Create(c.Request().Context(), &playlist); err != nil {
		return failRepo(c, err, "playlist not found")
	}
	return respond(c, http.StatusCreated, newPlaylistResponse(playlist), "playlist created successfully")
}

// Get returns a playlist with its videos resolved in playlist order.
func (h *PlaylistHandler) Get(c echo.Context) error {
	id, err := parseID(c, "playlistId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid playlist id")
	}
	detail, err := h.Playlists.Detail(c.Request().Context(), id)
	if err != nil {
		return failRepo(c, err, "playlist not found")
	}
	videos := make([]videoResponse, 0, len(detail.Videos))
	for _, v := range detail.Videos {
		videos = append(videos, newVideoResponse(v, detail.Owner))
	}
	return respond(c, http.StatusOK, map[string]any{
		"playlist": newPlaylistResponse(detail.Playlist),
		"owner":    ownerJSON(detail.Owner),
		"videos":   videos,
	}, "playlist fetched successfully")
}

// Update renames or re-describes a playlist. Owner only; at least one
// field required.
func (h *PlaylistHandler) Update(c echo.Context) error {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return nil
	}
	var req playlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" && description == "" {
		return fail(c, http.StatusBadRequest, "at least one of name or description is required")
	}
	if err := h.Playlists.Update(c.Request().Context(), playlist.ID, name, description); err != nil {
		return failRepo(c, err, "playlist not found")
	}
	updated, err := h.Playlists.GetByID(c.Request().Context(), playlist.ID)
	if err != nil {
		return failRepo(c, err, "playlist not found")
	}
	return respond(c, http.StatusOK, newPlaylistResponse(updated), "playlist updated successfully")
}

// Delete removes a playlist. Videos themselves are untouched.
func (h *PlaylistHandler) Delete(c echo.Context) error {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return nil
	}
	if err := h.Playlists.Delete(c.Request().Context(), playlist.ID); err != nil {
		return failRepo(c, err, "playlist not found")
	}
	return respond(c, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo appends a video to the playlist. Adding a video that is
// already present is a client error, not a no-op.
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	if _, err := h.Videos.GetByID(c.Request().Context(), videoID); err != nil {
		return failRepo(c, err, "video not found")
	}
	if err := h.Playlists.AddVideo(c.Request().Context(), playlist.ID, videoID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "video is already in the playlist")
		}
		return failRepo(c, err, "playlist not found")
	}
	updated, err := h.Playlists.GetByID(c.Request().Context(), playlist.ID)
	if err != nil {
		return failRepo(c, err, "playlist not found")
	}
	return respond(c, http.StatusOK, newPlaylistResponse(updated), "video added to playlist successfully")
}

// RemoveVideo drops a video from the playlist.
func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return nil
	}
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	if err := h.Playlists.RemoveVideo(c.Request().Context(), playlist.ID, videoID); err != nil {
		return failRepo(c, err, "video is not in the playlist")
	}
	updated, err := h.Playlists.GetByID(c.Request().Context(), playlist.ID)
	if err != nil {
		return failRepo(c, err, "playlist not found")
	}
	return respond(c, http.StatusOK, newPlaylistResponse(updated), "video removed from playlist successfully")
}

// ListByUser returns every playlist owned by a user.
func (h *PlaylistHandler) ListByUser(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), userID); err != nil {
		return failRepo(c, err, "user not found")
	}
	playlists, err := h.Playlists.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return failRepo(c, err, "playlists not found")
	}
	out := make([]playlistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, newPlaylistResponse(p))
	}
	return respond(c, http.StatusOK, out, "playlists fetched successfully")
}

// ownedPlaylist loads the playlist from the path and enforces
// ownership. When it returns ok=false the error response has already
// been written.
func (h *PlaylistHandler) ownedPlaylist(c echo.Context) (model.Playlist, bool) {
	uid, err := getUserID(c)
	if err != nil {
		_ = fail(c, http.StatusUnauthorized, "not authenticated")
		return model.Playlist{}, false
	}
	id, err := parseID(c, "playlistId")
	if err != nil {
		_ = fail(c, http.StatusBadRequest, "invalid playlist id")
		return model.Playlist{}, false
	}
	playlist, err := h.Playlists.GetByID(c.Request().Context(), id)
	if err != nil {
		_ = failRepo(c, err, "playlist not found")
		return model.Playlist{}, false
	}
	if playlist.OwnerID != uid {
		_ = fail(c, http.StatusForbidden, "only the owner can modify this playlist")
		return model.Playlist{}, false
	}
	return playlist, true
}
