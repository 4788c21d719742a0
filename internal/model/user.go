package model

import "time"

// User represents an account record as stored in the `users` table.
// The password hash and refresh token hash never leave the repository
// layer; handlers expose separate response types with JSON tags.
//
// RefreshTokenHash holds the SHA-256 digest of the single currently
// valid refresh token, or nil when the user is logged out. Rotation
// overwrites it, so at most one refresh token per account verifies.
type User struct {
	ID               uint64    // users.id
	Username         string    // users.username (stored lower-cased)
	Email            string    // users.email (stored lower-cased)
	FullName         string    // users.full_name
	PasswordHash     string    // users.password_hash
	AvatarURL        string    // users.avatar_url
	AvatarKey        string    // users.avatar_key (object-store key)
	CoverURL         string    // users.cover_url (optional, empty when unset)
	CoverKey         string    // users.cover_key
	RefreshTokenHash *string   // users.refresh_token_hash (nullable)
	CreatedAt        time.Time // users.created_at
	UpdatedAt        time.Time // users.updated_at
}

// OwnerSummary is the public slice of a user embedded in denormalized
// views (video owner, commenter, subscriber, playlist owner).
type OwnerSummary struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ChannelProfile is the derived view of a user seen as a channel:
// subscriber counts plus whether the requesting viewer subscribes.
// IsSubscribed is computed per request, never stored.
type ChannelProfile struct {
	ID              uint64 `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Avatar          string `json:"avatar"`
	CoverImage      string `json:"coverImage"`
	SubscriberCount int64  `json:"subscriberCount"`
	SubscribedTo    int64  `json:"channelsSubscribedTo"`
	IsSubscribed    bool   `json:"isSubscribed"`
}
