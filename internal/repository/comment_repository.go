package repository

import (
	"context"
	"database/sql"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// CommentRepo persists comments attached to videos or tweets.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and fills in its ID.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (owner_id, target_kind, target_id, content) VALUES (?,?,?,?)",
		c.OwnerID, string(c.TargetKind), c.TargetID, c.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_id, target_kind, target_id, content, created_at, updated_at FROM comments WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.OwnerID, &c.TargetKind, &c.TargetID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// UpdateContent overwrites the comment text.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE comments SET content=? WHERE id=?", content, id)
	return err
}

// Delete removes the comment and any likes attached to it.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE target_kind='comment' AND target_id=?", id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	return err
}

// ListByTarget returns one page of comments on the given target joined
// with each commenter's summary, newest first.
func (r *CommentRepo) ListByTarget(ctx context.Context, kind model.TargetKind, targetID uint64, page, limit int) ([]model.CommentWithOwner, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.owner_id, c.target_kind, c.target_id, c.content, c.created_at, c.updated_at,
		       o.id, o.username, o.full_name, o.avatar_url
		FROM comments c JOIN users o ON o.id = c.owner_id
		WHERE c.target_kind = ? AND c.target_id = ?
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?`,
		string(kind), targetID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CommentWithOwner, 0)
	for rows.Next() {
		var c model.CommentWithOwner
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.TargetKind, &c.TargetID, &c.Content,
			&c.CreatedAt, &c.UpdatedAt,
			&c.Owner.ID, &c.Owner.Username, &c.Owner.FullName, &c.Owner.Avatar); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
