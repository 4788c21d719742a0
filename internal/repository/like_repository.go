package repository

import (
	"context"
	"database/sql"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// LikeRepo persists the like ledger: one row per (user, target) pair,
// existence meaning "liked".
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Toggle flips the like state for (userID, kind, targetID) and reports
// the new state: true when the like was added, false when removed.
//
// Delete-first keeps the sequence race-safe together with the unique
// key: if two requests race, one delete wins and the loser's insert
// either succeeds (net state "liked") or hits the duplicate key, which
// is treated as already-liked rather than an error.
func (r *LikeRepo) Toggle(ctx context.Context, userID uint64, kind model.TargetKind, targetID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM likes WHERE user_id=? AND target_kind=? AND target_id=?",
		userID, string(kind), targetID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO likes (user_id, target_kind, target_id) VALUES (?,?,?)",
		userID, string(kind), targetID)
	if err != nil && !isDuplicateKey(err) {
		return false, err
	}
	return true, nil
}

// ListLikedVideos joins the user's video likes against videos and
// users, producing the flattened liked-videos view.
func (r *LikeRepo) ListLikedVideos(ctx context.Context, userID uint64) ([]model.LikedVideo, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT v.id, v.title, v.description, u.username, v.created_at, v.updated_at
		FROM likes l
		JOIN videos v ON v.id = l.target_id
		JOIN users u ON u.id = l.user_id
		WHERE l.user_id = ? AND l.target_kind = 'video'
		ORDER BY l.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LikedVideo, 0)
	for rows.Next() {
		var lv model.LikedVideo
		if err := rows.Scan(&lv.ID, &lv.Title, &lv.Description, &lv.LikedBy,
			&lv.CreatedAt, &lv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}
