package repository

import (
	"context"
	"database/sql"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// TweetRepo persists tweets and their attached image references.
type TweetRepo struct{ DB *sql.DB }

func NewTweetRepo(db *sql.DB) *TweetRepo { return &TweetRepo{DB: db} }

// Create inserts the tweet and its images in one transaction so a
// failed image insert never leaves a half-created tweet behind.
func (r *TweetRepo) Create(ctx context.Context, t *model.Tweet) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tweets (owner_id, content) VALUES (?,?)", t.OwnerID, t.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	for i, img := range t.Images {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tweet_images (tweet_id, url, image_key, position) VALUES (?,?,?,?)",
			t.ID, img.URL, img.Key, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a tweet with its images in position order.
func (r *TweetRepo) GetByID(ctx context.Context, id uint64) (model.Tweet, error) {
	var t model.Tweet
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.Images, err = r.images(ctx, id)
	return t, err
}

func (r *TweetRepo) images(ctx context.Context, tweetID uint64) ([]model.TweetImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT url, image_key FROM tweet_images WHERE tweet_id=? ORDER BY position", tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imgs := make([]model.TweetImage, 0)
	for rows.Next() {
		var img model.TweetImage
		if err := rows.Scan(&img.URL, &img.Key); err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, rows.Err()
}

// UpdateContent overwrites the tweet text.
func (r *TweetRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE tweets SET content=? WHERE id=?", content, id)
	return err
}

// AddImages appends image references after the current highest
// position.
func (r *TweetRepo) AddImages(ctx context.Context, tweetID uint64, images []model.TweetImage) error {
	if len(images) == 0 {
		return nil
	}
	var next int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position)+1, 0) FROM tweet_images WHERE tweet_id=?", tweetID).
		Scan(&next)
	if err != nil {
		return err
	}
	for i, img := range images {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO tweet_images (tweet_id, url, image_key, position) VALUES (?,?,?,?)",
			tweetID, img.URL, img.Key, next+i); err != nil {
			return err
		}
	}
	return nil
}

// RemoveImagesByURL deletes the listed image references from the tweet
// and returns the removed rows so the caller can schedule remote
// cleanup. URLs not attached to the tweet are ignored.
func (r *TweetRepo) RemoveImagesByURL(ctx context.Context, tweetID uint64, urls []string) ([]model.TweetImage, error) {
	removed := make([]model.TweetImage, 0, len(urls))
	for _, u := range urls {
		var img model.TweetImage
		err := r.DB.QueryRowContext(ctx,
			"SELECT url, image_key FROM tweet_images WHERE tweet_id=? AND url=? LIMIT 1",
			tweetID, u).Scan(&img.URL, &img.Key)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return removed, err
		}
		if _, err := r.DB.ExecContext(ctx,
			"DELETE FROM tweet_images WHERE tweet_id=? AND url=?", tweetID, u); err != nil {
			return removed, err
		}
		removed = append(removed, img)
	}
	return removed, nil
}

// Delete removes the tweet, its images (schema cascade), and any likes
// or comments attached to it.
func (r *TweetRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE target_kind='tweet' AND target_id=?", id); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE target_kind='tweet' AND target_id=?", id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tweets WHERE id=?", id)
	return err
}

// ListByUser returns one page of a user's tweets, newest first, each
// joined with the owner summary and its images.
func (r *TweetRepo) ListByUser(ctx context.Context, userID uint64, page, limit int) ([]model.TweetWithOwner, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.owner_id, t.content, t.created_at, t.updated_at,
		       o.id, o.username, o.full_name, o.avatar_url
		FROM tweets t JOIN users o ON o.id = t.owner_id
		WHERE t.owner_id = ?
		ORDER BY t.created_at DESC
		LIMIT ? OFFSET ?`,
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TweetWithOwner, 0)
	for rows.Next() {
		var t model.TweetWithOwner
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
			&t.Owner.ID, &t.Owner.Username, &t.Owner.FullName, &t.Owner.Avatar); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		imgs, err := r.images(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Images = imgs
	}
	return out, nil
}
