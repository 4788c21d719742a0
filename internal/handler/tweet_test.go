package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Yashh918/WatchHaven/internal/model"
)

func newTweetHandler() (*TweetHandler, *fakeTweets, *fakeUsers, *fakeCleaner) {
	tweets := newFakeTweets()
	users := newFakeUsers()
	clean := &fakeCleaner{}
	h := NewTweetHandler(testConfig(), tweets, users, &fakeMedia{}, clean)
	return h, tweets, users, clean
}

func TestCreateTweetRequiresContent(t *testing.T) {
	h, _, users, _ := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})

	c, rec := newMultipartContext(t, http.MethodPost, "/api/v1/tweets", map[string]string{"content": "   "}, nil)
	asUser(c, owner)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestCreateTweetWithImages(t *testing.T) {
	h, tweets, users, _ := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})

	c, rec := newMultipartContext(t, http.MethodPost, "/api/v1/tweets", map[string]string{"content": "hello"},
		[]filePart{
			{field: "images", name: "a.png", data: []byte("a")},
			{field: "images", name: "b.png", data: []byte("b")},
		})
	asUser(c, owner)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	env := wantStatus(t, rec, http.StatusCreated)

	var got tweetResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Content != "hello" || len(got.Images) != 2 {
		t.Fatalf("unexpected response: %+v", got)
	}
	stored, err := tweets.GetByID(context.Background(), got.ID)
	if err != nil {
		t.Fatalf("tweet not stored: %v", err)
	}
	if len(stored.Images) != 2 {
		t.Fatalf("stored images = %d, want 2", len(stored.Images))
	}
}

func TestUpdateTweetRequiresSomeChange(t *testing.T) {
	h, tweets, users, _ := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})
	tweets.add(model.Tweet{OwnerID: owner.ID, Content: "original"})

	c, rec := newMultipartContext(t, http.MethodPatch, "/api/v1/tweets/1", nil, nil)
	setParams(c, "tweetId", "1")
	asUser(c, owner)
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateTweetRemovesImagesByURL(t *testing.T) {
	h, tweets, users, clean := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})
	tweets.add(model.Tweet{OwnerID: owner.ID, Content: "original", Images: []model.TweetImage{
		{URL: "https://cdn.test/tweets/keep.png", Key: "tweets/keep.png"},
		{URL: "https://cdn.test/tweets/drop.png", Key: "tweets/drop.png"},
	}})

	c, rec := newMultipartContext(t, http.MethodPatch, "/api/v1/tweets/1", map[string]string{
		"deleteImages": "https://cdn.test/tweets/drop.png",
	}, nil)
	setParams(c, "tweetId", "1")
	asUser(c, owner)
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	env := wantStatus(t, rec, http.StatusOK)

	var got tweetResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 1 || got.Images[0] != "https://cdn.test/tweets/keep.png" {
		t.Fatalf("images after update = %v", got.Images)
	}
	if len(clean.keys) != 1 || clean.keys[0] != "tweets/drop.png" {
		t.Fatalf("cleanup keys = %v, want the removed image key", clean.keys)
	}
}

func TestUpdateTweetIgnoresUnknownDeleteURLs(t *testing.T) {
	h, tweets, users, clean := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})
	tweets.add(model.Tweet{OwnerID: owner.ID, Content: "original", Images: []model.TweetImage{
		{URL: "https://cdn.test/tweets/keep.png", Key: "tweets/keep.png"},
	}})

	c, rec := newMultipartContext(t, http.MethodPatch, "/api/v1/tweets/1", map[string]string{
		"deleteImages": "https://cdn.test/tweets/never-existed.png",
	}, nil)
	setParams(c, "tweetId", "1")
	asUser(c, owner)
	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusOK)

	stored, _ := tweets.GetByID(context.Background(), 1)
	if len(stored.Images) != 1 {
		t.Fatalf("images = %d, want untouched 1", len(stored.Images))
	}
	if len(clean.keys) != 0 {
		t.Fatalf("nothing should be queued for cleanup, got %v", clean.keys)
	}
}

func TestDeleteTweetOwnerOnly(t *testing.T) {
	h, tweets, users, clean := newTweetHandler()
	owner := users.add(model.User{Username: "ada"})
	stranger := users.add(model.User{Username: "eve"})
	tweets.add(model.Tweet{OwnerID: owner.ID, Content: "mine", Images: []model.TweetImage{
		{URL: "https://cdn.test/tweets/a.png", Key: "tweets/a.png"},
	}})

	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/tweets/1", nil)
	setParams(c, "tweetId", "1")
	asUser(c, stranger)
	if err := h.Delete(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusForbidden)

	c2, rec2 := newJSONContext(t, http.MethodDelete, "/api/v1/tweets/1", nil)
	setParams(c2, "tweetId", "1")
	asUser(c2, owner)
	if err := h.Delete(c2); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec2, http.StatusOK)

	if _, err := tweets.GetByID(context.Background(), 1); err == nil {
		t.Fatal("tweet still present after delete")
	}
	if len(clean.keys) != 1 {
		t.Fatalf("cleanup keys = %v, want the tweet image", clean.keys)
	}
}

func TestListTweetsByMissingUser(t *testing.T) {
	h, _, _, _ := newTweetHandler()
	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/tweets/user/99", nil)
	setParams(c, "userId", "99")
	if err := h.ListByUser(c); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, rec, http.StatusNotFound)
}
