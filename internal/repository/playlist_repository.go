package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// PlaylistRepo persists playlists and their ordered video membership.
type PlaylistRepo struct{ DB *sql.DB }

func NewPlaylistRepo(db *sql.DB) *PlaylistRepo { return &PlaylistRepo{DB: db} }

// Create inserts a playlist and fills in its ID.
func (r *PlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO playlists (owner_id, name, description) VALUES (?,?,?)",
		p.OwnerID, p.Name, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a playlist with its video ID list in position order.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uint64) (model.Playlist, error) {
	var p model.Playlist
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.VideoIDs, err = r.videoIDs(ctx, id)
	return p, err
}

func (r *PlaylistRepo) videoIDs(ctx context.Context, playlistID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT video_id FROM playlist_videos WHERE playlist_id=? ORDER BY position", playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Detail returns the playlist joined with its videos and the owner's
// public summary.
func (r *PlaylistRepo) Detail(ctx context.Context, id uint64) (model.PlaylistDetail, error) {
	var d model.PlaylistDetail
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return d, err
	}
	d.Playlist = p

	err = r.DB.QueryRowContext(ctx,
		"SELECT id, username, full_name, avatar_url FROM users WHERE id=? LIMIT 1", p.OwnerID).
		Scan(&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.Avatar)
	if err != nil {
		return d, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration, v.views, v.is_published, v.created_at, v.updated_at
		FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = ?
		ORDER BY pv.position`,
		id)
	if err != nil {
		return d, err
	}
	defer rows.Close()

	d.Videos = make([]model.Video, 0)
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
			&v.ThumbnailURL, &v.Duration, &v.Views, &v.IsPublished,
			&v.CreatedAt, &v.UpdatedAt); err != nil {
			return d, err
		}
		d.Videos = append(d.Videos, v)
	}
	return d, rows.Err()
}

// Update overwrites the provided fields; empty strings leave the
// current value in place.
func (r *PlaylistRepo) Update(ctx context.Context, id uint64, name, description string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if name != "" {
		sets = append(sets, "name=?")
		args = append(args, name)
	}
	if description != "" {
		sets = append(sets, "description=?")
		args = append(args, description)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE playlists SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

// Delete removes the playlist; membership rows cascade.
func (r *PlaylistRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM playlists WHERE id=?", id)
	return err
}

// AddVideo appends a video to the playlist. Adding a video already in
// the playlist returns ErrDuplicate and leaves the list unchanged.
func (r *PlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uint64) error {
	var next int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position)+1, 0) FROM playlist_videos WHERE playlist_id=?", playlistID).
		Scan(&next)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO playlist_videos (playlist_id, video_id, position) VALUES (?,?,?)",
		playlistID, videoID, next)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// RemoveVideo deletes a membership row; ErrNotFound when the video is
// not in the playlist.
func (r *PlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM playlist_videos WHERE playlist_id=? AND video_id=?", playlistID, videoID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns all of a user's playlists with their video ID
// lists and the shared owner summary.
func (r *PlaylistRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE owner_id=? ORDER BY created_at DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Playlist, 0)
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		ids, err := r.videoIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].VideoIDs = ids
	}
	return out, nil
}
