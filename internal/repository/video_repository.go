package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Yashh918/WatchHaven/internal/model"
)

const videoColumns = "id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration, views, is_published, created_at, updated_at"

// VideoRepo persists videos and serves the denormalized listing view.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

// ListOptions filters and pages the video listing. Zero values mean
// "no filter"; Page and Limit are already normalized by the handler.
type ListOptions struct {
	Query    string // case-insensitive title substring
	OwnerID  uint64
	SortBy   string // created_at | views | duration | title
	SortDesc bool
	Page     int
	Limit    int
}

// Create inserts a video and fills in its ID.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO videos (owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration, is_published) VALUES (?,?,?,?,?,?,?,?,?)",
		v.OwnerID, v.Title, v.Description, v.VideoURL, v.VideoKey,
		v.ThumbnailURL, v.ThumbnailKey, v.Duration, v.IsPublished)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a video by id.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	var v model.Video
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id).
		Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.VideoKey,
			&v.ThumbnailURL, &v.ThumbnailKey, &v.Duration, &v.Views, &v.IsPublished,
			&v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return v, ErrNotFound
	}
	return v, err
}

// Update persists the mutable fields (title, description, thumbnail
// reference) of an already-loaded video.
func (r *VideoRepo) Update(ctx context.Context, v *model.Video) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET title=?, description=?, thumbnail_url=?, thumbnail_key=? WHERE id=?",
		v.Title, v.Description, v.ThumbnailURL, v.ThumbnailKey, v.ID)
	return err
}

// Delete removes the video row. Playlist membership, likes on the
// video and watch-history rows cascade at the schema level or are
// cleaned by target-kind scoping.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE target_kind='video' AND target_id=?", id); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE target_kind='video' AND target_id=?", id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	return err
}

// IncrementViews bumps the view counter by one in a single atomic
// update.
func (r *VideoRepo) IncrementViews(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET views = views + 1 WHERE id=?", id)
	return err
}

// SetPublished flips the publish flag.
func (r *VideoRepo) SetPublished(ctx context.Context, id uint64, published bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET is_published=? WHERE id=?", published, id)
	return err
}

// sortColumn whitelists sort keys so the listing never interpolates
// caller input into the ORDER BY clause.
func sortColumn(key string) string {
	switch key {
	case "views", "duration", "title", "created_at":
		return key
	case "createdAt":
		return "created_at"
	default:
		return "created_at"
	}
}

// List returns one page of videos joined with owner summaries, with
// optional title search, owner filter and sorting. Pages past the end
// of the data come back empty.
func (r *VideoRepo) List(ctx context.Context, opts ListOptions) ([]model.VideoWithOwner, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if opts.Query != "" {
		where = append(where, "v.title LIKE ?")
		args = append(args, "%"+opts.Query+"%")
	}
	if opts.OwnerID != 0 {
		where = append(where, "v.owner_id = ?")
		args = append(args, opts.OwnerID)
	}

	q := `SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
	             v.duration, v.views, v.is_published, v.created_at, v.updated_at,
	             o.id, o.username, o.full_name, o.avatar_url
	      FROM videos v JOIN users o ON o.id = v.owner_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}
	q += " ORDER BY v." + sortColumn(opts.SortBy) + " " + dir + " LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.VideoWithOwner, 0)
	for rows.Next() {
		var v model.VideoWithOwner
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
			&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
			&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.Avatar,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
