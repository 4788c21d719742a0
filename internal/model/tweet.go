package model

import "time"

// Tweet mirrors the `tweets` table. Images live in `tweet_images`
// and are loaded alongside the tweet by the repository.
type Tweet struct {
	ID        uint64    // tweets.id
	OwnerID   uint64    // tweets.owner_id
	Content   string    // tweets.content
	Images    []TweetImage
	CreatedAt time.Time // tweets.created_at
	UpdatedAt time.Time // tweets.updated_at
}

// TweetImage is one attached image. Removal during an update is
// addressed by URL, matching the external API; the key is what the
// object store needs for deletion.
type TweetImage struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

// TweetWithOwner joins a tweet with its owner's public summary for
// the paginated by-user listing.
type TweetWithOwner struct {
	Tweet
	Owner OwnerSummary
}
