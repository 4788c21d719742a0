package model

import "time"

// Playlist mirrors the `playlists` table. Video membership lives in
// `playlist_videos`, ordered by position, duplicates rejected at
// add-time.
type Playlist struct {
	ID          uint64    // playlists.id
	OwnerID     uint64    // playlists.owner_id
	Name        string    // playlists.name
	Description string    // playlists.description
	VideoIDs    []uint64  // playlist_videos.video_id, in position order
	CreatedAt   time.Time // playlists.created_at
	UpdatedAt   time.Time // playlists.updated_at
}

// PlaylistDetail is the detail view: the playlist joined with its
// videos and the owner's public summary.
type PlaylistDetail struct {
	Playlist
	Videos []Video
	Owner  OwnerSummary
}
