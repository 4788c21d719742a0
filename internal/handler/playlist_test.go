package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Yashh918/WatchHaven/internal/model"
)

func newPlaylistHandler() (*PlaylistHandler, *fakePlaylists, *fakeVideos, *fakeUsers) {
	playlists := newFakePlaylists()
	videos := newFakeVideos()
	users := newFakeUsers()
	return NewPlaylistHandler(playlists, videos, users), playlists, videos, users
}

func TestCreatePlaylistRequiresName(t *testing.T) {
	h, _, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/playlists", playlistRequest{Description: "no name"})
	asUser(c, u)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestCreatePlaylist(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/playlists", playlistRequest{Name: "Favorites"})
	asUser(c, u)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	env := wantStatus(t, rec, http.StatusCreated)

	var got playlistResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "Favorites" || got.OwnerID != u.ID {
		t.Fatalf("unexpected playlist: %+v", got)
	}
	if got.VideoIDs == nil || len(got.VideoIDs) != 0 {
		t.Fatalf("videoIds should serialize as an empty array, got %v", got.VideoIDs)
	}
	if _, err := playlists.GetByID(context.Background(), got.ID); err != nil {
		t.Fatalf("playlist not stored: %v", err)
	}
}

func TestAddVideoDuplicateIsClientError(t *testing.T) {
	h, playlists, videos, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	videos.add(model.Video{Title: "clip"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Favorites"})

	add := func() *envelope {
		c, rec := newJSONContext(t, http.MethodPatch, "/api/v1/playlists/1/videos/1", nil)
		setParams(c, "playlistId", "1", "videoId", "1")
		asUser(c, u)
		if err := h.AddVideo(c); err != nil {
			t.Fatal(err)
		}
		env := decodeEnvelope(t, rec)
		return &env
	}

	if env := add(); env.StatusCode != http.StatusOK {
		t.Fatalf("first add = %d, want 200", env.StatusCode)
	}
	if env := add(); env.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate add = %d, want 400", env.StatusCode)
	}

	stored, _ := playlists.GetByID(context.Background(), 1)
	if len(stored.VideoIDs) != 1 {
		t.Fatalf("videoIDs = %v, want exactly one entry", stored.VideoIDs)
	}
}

func TestAddVideoOwnerOnly(t *testing.T) {
	h, playlists, videos, users := newPlaylistHandler()
	owner := users.add(model.User{Username: "ada"})
	stranger := users.add(model.User{Username: "eve"})
	videos.add(model.Video{Title: "clip"})
	playlists.add(model.Playlist{OwnerID: owner.ID, Name: "Favorites"})

	c, rec := newJSONContext(t, http.MethodPatch, "/api/v1/playlists/1/videos/1", nil)
	setParams(c, "playlistId", "1", "videoId", "1")
	asUser(c, stranger)
	if err := h.AddVideo(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusForbidden)

	stored, _ := playlists.GetByID(context.Background(), 1)
	if len(stored.VideoIDs) != 0 {
		t.Fatal("playlist changed despite rejected ownership")
	}
}

func TestAddMissingVideo(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Favorites"})

	c, rec := newJSONContext(t, http.MethodPatch, "/api/v1/playlists/1/videos/42", nil)
	setParams(c, "playlistId", "1", "videoId", "42")
	asUser(c, u)
	if err := h.AddVideo(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusNotFound)
}

func TestRemoveVideoNotInPlaylist(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Favorites", VideoIDs: []uint64{3}})

	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/playlists/1/videos/9", nil)
	setParams(c, "playlistId", "1", "videoId", "9")
	asUser(c, u)
	if err := h.RemoveVideo(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusNotFound)

	c2, rec2 := newJSONContext(t, http.MethodDelete, "/api/v1/playlists/1/videos/3", nil)
	setParams(c2, "playlistId", "1", "videoId", "3")
	asUser(c2, u)
	if err := h.RemoveVideo(c2); err != nil {
		t.Fatal(err)
	}
	env := wantStatus(t, rec2, http.StatusOK)

	var got playlistResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.VideoIDs) != 0 {
		t.Fatalf("videoIds = %v, want empty", got.VideoIDs)
	}
}

func TestUpdatePlaylistRequiresAField(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Favorites"})

	c, rec := newJSONContext(t, http.MethodPatch, "/api/v1/playlists/1", playlistRequest{})
	setParams(c, "playlistId", "1")
	asUser(c, u)
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestDeletePlaylist(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Favorites"})

	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/playlists/1", nil)
	setParams(c, "playlistId", "1")
	asUser(c, u)
	if err := h.Delete(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)

	if _, err := playlists.GetByID(context.Background(), 1); err == nil {
		t.Fatal("playlist still present after delete")
	}
}

func TestListPlaylistsByUser(t *testing.T) {
	h, playlists, _, users := newPlaylistHandler()
	u := users.add(model.User{Username: "ada"})
	other := users.add(model.User{Username: "bob"})
	playlists.add(model.Playlist{OwnerID: u.ID, Name: "Mine"})
	playlists.add(model.Playlist{OwnerID: other.ID, Name: "Theirs"})

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/playlists/user/1", nil)
	setParams(c, "userId", "1")
	if err := h.ListByUser(c); err != nil {
		t.Fatal(err)
	}
	env := wantStatus(t, rec, http.StatusOK)

	var got []playlistResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Mine" {
		t.Fatalf("unexpected playlists: %+v", got)
	}
}
