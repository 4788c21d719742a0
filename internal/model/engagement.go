package model

import "time"

// TargetKind tags the entity a like or comment is attached to. Exactly
// one target per row: the pair (kind, id) is the whole reference, so a
// like can never point at both a video and a tweet.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetTweet   TargetKind = "tweet"
	TargetComment TargetKind = "comment"
)

// Comment mirrors the `comments` table. Comments attach to a video or
// a tweet via the tagged target reference; comment-kind targets are
// reserved for likes only.
type Comment struct {
	ID         uint64     // comments.id
	OwnerID    uint64     // comments.owner_id
	TargetKind TargetKind // comments.target_kind
	TargetID   uint64     // comments.target_id
	Content    string     // comments.content
	CreatedAt  time.Time  // comments.created_at
	UpdatedAt  time.Time  // comments.updated_at
}

// CommentWithOwner joins a comment with the commenter's summary.
type CommentWithOwner struct {
	Comment
	Owner OwnerSummary
}

// Like mirrors the `likes` table. Row existence means "liked"; the
// composite unique key (user_id, target_kind, target_id) makes the
// toggle safe to race.
type Like struct {
	ID         uint64     // likes.id
	UserID     uint64     // likes.user_id
	TargetKind TargetKind // likes.target_kind
	TargetID   uint64     // likes.target_id
	CreatedAt  time.Time  // likes.created_at
}

// Subscription mirrors the `subscriptions` table. Self-subscription is
// rejected before insert; the pair is unique.
type Subscription struct {
	ID           uint64    // subscriptions.id
	SubscriberID uint64    // subscriptions.subscriber_id
	ChannelID    uint64    // subscriptions.channel_id
	CreatedAt    time.Time // subscriptions.created_at
}
