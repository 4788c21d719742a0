package model

import "time"

// Video mirrors the `videos` table. The view counter is incremented
// server-side on every published-video detail fetch and is never
// written by clients. Asset keys identify the stored objects so that
// replace/delete paths do not have to parse them back out of URLs.
type Video struct {
	ID           uint64    // videos.id
	OwnerID      uint64    // videos.owner_id
	Title        string    // videos.title
	Description  string    // videos.description
	VideoURL     string    // videos.video_url
	VideoKey     string    // videos.video_key
	ThumbnailURL string    // videos.thumbnail_url (empty when none)
	ThumbnailKey string    // videos.thumbnail_key
	Duration     float64   // videos.duration (seconds)
	Views        uint64    // videos.views
	IsPublished  bool      // videos.is_published
	CreatedAt    time.Time // videos.created_at
	UpdatedAt    time.Time // videos.updated_at
}

// VideoWithOwner is the denormalized listing row: video fields joined
// with the owner's public summary.
type VideoWithOwner struct {
	Video
	Owner OwnerSummary
}

// LikedVideo is a row of the liked-videos view: the video joined with
// the handle of the account whose like produced the row.
type LikedVideo struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LikedBy     string    `json:"likedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HistoryEntry is a watch-history row expanded with the video and its
// owner summary, most recently watched first.
type HistoryEntry struct {
	Video     VideoWithOwner
	WatchedAt time.Time
}
