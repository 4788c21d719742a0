package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/repository"
	"github.com/Yashh918/WatchHaven/internal/storage"
)

func testConfig() config.Config {
	return config.Config{
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
}

// --- users ---

type fakeUsers struct {
	mu      sync.Mutex
	seq     uint64
	byID    map[uint64]model.User
	history []uint64 // video IDs touched, in order
	entries []model.HistoryEntry
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}}
}

func (f *fakeUsers) add(u model.User) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		f.seq++
		u.ID = f.seq
	} else if u.ID > f.seq {
		f.seq = u.ID
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lower := strings.ToLower(u.Username)
	for _, existing := range f.byID {
		if existing.Username == lower || existing.Email == strings.ToLower(u.Email) {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	u.ID = f.seq
	u.Username = lower
	u.Email = strings.ToLower(u.Email)
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strings.ToLower(identifier)
	for _, u := range f.byID {
		if u.Username == id || u.Email == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) UpdateDetails(ctx context.Context, id uint64, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if email != "" {
		u.Email = strings.ToLower(email)
	}
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateAvatar(ctx context.Context, id uint64, url, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarURL, u.AvatarKey = url, key
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateCover(ctx context.Context, id uint64, url, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CoverURL, u.CoverKey = url, key
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SetRefreshToken(ctx context.Context, id uint64, hash *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshTokenHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) ChannelProfile(ctx context.Context, username string, viewerID uint64) (model.ChannelProfile, error) {
	u, err := f.GetByUsername(ctx, username)
	if err != nil {
		return model.ChannelProfile{}, err
	}
	return model.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
}

func (f *fakeUsers) TouchWatchHistory(ctx context.Context, userID, videoID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, videoID)
	return nil
}

func (f *fakeUsers) WatchHistory(ctx context.Context, userID uint64) ([]model.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, nil
}

// --- videos ---

type fakeVideos struct {
	mu       sync.Mutex
	seq      uint64
	byID     map[uint64]model.Video
	listOut  []model.VideoWithOwner
	lastOpts repository.ListOptions
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{byID: map[uint64]model.Video{}}
}

func (f *fakeVideos) add(v model.Video) model.Video {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == 0 {
		f.seq++
		v.ID = f.seq
	} else if v.ID > f.seq {
		f.seq = v.ID
	}
	f.byID[v.ID] = v
	return v
}

func (f *fakeVideos) Create(ctx context.Context, v *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	v.ID = f.seq
	f.byID[v.ID] = *v
	return nil
}

func (f *fakeVideos) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return model.Video{}, repository.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideos) Update(ctx context.Context, v *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[v.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[v.ID] = *v
	return nil
}

func (f *fakeVideos) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVideos) IncrementViews(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Views++
	f.byID[id] = v
	return nil
}

func (f *fakeVideos) SetPublished(ctx context.Context, id uint64, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.IsPublished = published
	f.byID[id] = v
	return nil
}

func (f *fakeVideos) List(ctx context.Context, opts repository.ListOptions) ([]model.VideoWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	return f.listOut, nil
}

// --- tweets ---

type fakeTweets struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]model.Tweet
}

func newFakeTweets() *fakeTweets {
	return &fakeTweets{byID: map[uint64]model.Tweet{}}
}

func (f *fakeTweets) add(t model.Tweet) model.Tweet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		f.seq++
		t.ID = f.seq
	} else if t.ID > f.seq {
		f.seq = t.ID
	}
	f.byID[t.ID] = t
	return t
}

func (f *fakeTweets) Create(ctx context.Context, t *model.Tweet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = f.seq
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeTweets) GetByID(ctx context.Context, id uint64) (model.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return model.Tweet{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTweets) UpdateContent(ctx context.Context, id uint64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Content = content
	f.byID[id] = t
	return nil
}

func (f *fakeTweets) AddImages(ctx context.Context, tweetID uint64, images []model.TweetImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[tweetID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Images = append(t.Images, images...)
	f.byID[tweetID] = t
	return nil
}

func (f *fakeTweets) RemoveImagesByURL(ctx context.Context, tweetID uint64, urls []string) ([]model.TweetImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[tweetID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	drop := map[string]bool{}
	for _, u := range urls {
		drop[u] = true
	}
	var kept, removed []model.TweetImage
	for _, img := range t.Images {
		if drop[img.URL] {
			removed = append(removed, img)
		} else {
			kept = append(kept, img)
		}
	}
	t.Images = kept
	f.byID[tweetID] = t
	return removed, nil
}

func (f *fakeTweets) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTweets) ListByUser(ctx context.Context, userID uint64, page, limit int) ([]model.TweetWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TweetWithOwner
	for _, t := range f.byID {
		if t.OwnerID == userID {
			out = append(out, model.TweetWithOwner{Tweet: t})
		}
	}
	return out, nil
}

// --- comments ---

type fakeComments struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]model.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: map[uint64]model.Comment{}}
}

func (f *fakeComments) add(cm model.Comment) model.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cm.ID == 0 {
		f.seq++
		cm.ID = f.seq
	} else if cm.ID > f.seq {
		f.seq = cm.ID
	}
	f.byID[cm.ID] = cm
	return cm
}

func (f *fakeComments) Create(ctx context.Context, cm *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cm.ID = f.seq
	f.byID[cm.ID] = *cm
	return nil
}

func (f *fakeComments) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, ok := f.byID[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return cm, nil
}

func (f *fakeComments) UpdateContent(ctx context.Context, id uint64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	cm.Content = content
	f.byID[id] = cm
	return nil
}

func (f *fakeComments) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeComments) ListByTarget(ctx context.Context, kind model.TargetKind, targetID uint64, page, limit int) ([]model.CommentWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CommentWithOwner
	for _, cm := range f.byID {
		if cm.TargetKind == kind && cm.TargetID == targetID {
			out = append(out, model.CommentWithOwner{Comment: cm})
		}
	}
	return out, nil
}

// --- likes ---

type fakeLikes struct {
	mu    sync.Mutex
	liked map[string]bool
	out   []model.LikedVideo
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{liked: map[string]bool{}}
}

func likeKey(userID uint64, kind model.TargetKind, targetID uint64) string {
	return fmt.Sprintf("%d/%s/%d", userID, kind, targetID)
}

func (f *fakeLikes) Toggle(ctx context.Context, userID uint64, kind model.TargetKind, targetID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey(userID, kind, targetID)
	if f.liked[key] {
		delete(f.liked, key)
		return false, nil
	}
	f.liked[key] = true
	return true, nil
}

func (f *fakeLikes) ListLikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error) {
	return f.out, nil
}

// --- subscriptions ---

type fakeSubs struct {
	mu     sync.Mutex
	pairs  map[[2]uint64]bool
	owners []model.OwnerSummary
}

func newFakeSubs() *fakeSubs {
	return &fakeSubs{pairs: map[[2]uint64]bool{}}
}

func (f *fakeSubs) Toggle(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint64{subscriberID, channelID}
	if f.pairs[key] {
		delete(f.pairs, key)
		return false, nil
	}
	f.pairs[key] = true
	return true, nil
}

func (f *fakeSubs) Subscribers(ctx context.Context, channelID uint64) (int64, []model.OwnerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.pairs {
		if key[1] == channelID {
			n++
		}
	}
	return n, f.owners, nil
}

func (f *fakeSubs) Channels(ctx context.Context, subscriberID uint64) (int64, []model.OwnerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.pairs {
		if key[0] == subscriberID {
			n++
		}
	}
	return n, f.owners, nil
}

// --- playlists ---

type fakePlaylists struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]model.Playlist
}

func newFakePlaylists() *fakePlaylists {
	return &fakePlaylists{byID: map[uint64]model.Playlist{}}
}

func (f *fakePlaylists) add(p model.Playlist) model.Playlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.seq++
		p.ID = f.seq
	} else if p.ID > f.seq {
		f.seq = p.ID
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakePlaylists) Create(ctx context.Context, p *model.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	f.byID[p.ID] = *p
	return nil
}

func (f *fakePlaylists) GetByID(ctx context.Context, id uint64) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return model.Playlist{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlaylists) Detail(ctx context.Context, id uint64) (model.PlaylistDetail, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return model.PlaylistDetail{}, err
	}
	return model.PlaylistDetail{Playlist: p}, nil
}

func (f *fakePlaylists) Update(ctx context.Context, id uint64, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	f.byID[id] = p
	return nil
}

func (f *fakePlaylists) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePlaylists) AddVideo(ctx context.Context, playlistID, videoID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[playlistID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range p.VideoIDs {
		if id == videoID {
			return repository.ErrDuplicate
		}
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	f.byID[playlistID] = p
	return nil
}

func (f *fakePlaylists) RemoveVideo(ctx context.Context, playlistID, videoID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[playlistID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i], p.VideoIDs[i+1:]...)
			f.byID[playlistID] = p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePlaylists) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Playlist
	for _, p := range f.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- media and cleanup ---

type fakeMedia struct {
	mu      sync.Mutex
	seq     int
	putErr  error
	deleted []string
}

func (f *fakeMedia) Put(ctx context.Context, kind, filename, contentType string, r io.Reader) (storage.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return storage.Asset{}, f.putErr
	}
	f.seq++
	key := fmt.Sprintf("%s/%d-%s", kind, f.seq, filename)
	return storage.Asset{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeMedia) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCleaner struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeCleaner) PublishCleanup(ctx context.Context, keys []string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, keys...)
	return nil
}

// --- request helpers ---

func newJSONContext(t *testing.T, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

type filePart struct {
	field, name string
	data        []byte
}

func newMultipartContext(t *testing.T, method, path string, fields map[string]string, files []filePart) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, fp := range files {
		fw, err := w.CreateFormFile(fp.field, fp.name)
		if err != nil {
			t.Fatalf("create form file %s: %v", fp.field, err)
		}
		if _, err := fw.Write(fp.data); err != nil {
			t.Fatalf("write form file %s: %v", fp.field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func asUser(c echo.Context, u model.User) {
	c.Set("user_id", u.ID)
	c.Set("user", u)
}

func setParams(c echo.Context, pairs ...string) {
	names := make([]string, 0, len(pairs)/2)
	values := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, rec.Body.String())
	}
	return env
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if rec.Code != want || env.StatusCode != want {
		t.Fatalf("status = %d (envelope %d), want %d; body=%s", rec.Code, env.StatusCode, want, rec.Body.String())
	}
	if want < 400 && !env.Success {
		t.Fatalf("success = false on %d response", want)
	}
	if want >= 400 && env.Success {
		t.Fatalf("success = true on %d response", want)
	}
	return env
}
