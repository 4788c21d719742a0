package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Yashh918/WatchHaven/internal/model"
)

const userColumns = "id, username, email, full_name, password_hash, avatar_url, avatar_key, cover_url, cover_key, refresh_token_hash, created_at, updated_at"

// UserRepo persists accounts and the per-account refresh token hash.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an account and fills in its ID. Username and email
// are normalized to lower case before insert. A username or email
// collision returns ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash, avatar_url, avatar_key, cover_url, cover_key) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.AvatarKey, u.CoverURL, u.CoverKey)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.AvatarKey, &u.CoverURL, &u.CoverKey, &u.RefreshTokenHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches an account by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByIdentifier fetches an account whose username or email matches
// the given login identifier.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		identifier, identifier))
}

// UpdateDetails overwrites the provided profile fields. Empty strings
// mean "leave unchanged"; the handler guarantees at least one is set.
func (r *UserRepo) UpdateDetails(ctx context.Context, id uint64, fullName, email string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if fullName != "" {
		sets = append(sets, "full_name=?")
		args = append(args, fullName)
	}
	if email != "" {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(email)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateAvatar replaces the avatar reference.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url, key string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=?, avatar_key=? WHERE id=?", url, key, id)
	return err
}

// UpdateCover replaces the cover image reference.
func (r *UserRepo) UpdateCover(ctx context.Context, id uint64, url, key string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET cover_url=?, cover_key=? WHERE id=?", url, key, id)
	return err
}

// UpdatePassword stores a new bcrypt hash. The refresh token is left
// untouched so existing sessions survive a password change.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// SetRefreshToken stores the hash of the currently valid refresh token,
// or clears it when hash is nil (logout). Overwriting is what makes
// rotation single-use: an older token no longer matches.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, hash *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", hash, id)
	return err
}

// ChannelProfile builds the channel view of a user: subscriber count,
// subscribed-to count, and whether viewerID is among the subscribers.
func (r *UserRepo) ChannelProfile(ctx context.Context, username string, viewerID uint64) (model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var p model.ChannelProfile
	err := r.DB.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_url,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		       EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?)
		FROM users u WHERE u.username = ? LIMIT 1`,
		viewerID, username).
		Scan(&p.ID, &p.Username, &p.FullName, &p.Avatar, &p.CoverImage,
			&p.SubscriberCount, &p.SubscribedTo, &p.IsSubscribed)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

// TouchWatchHistory records that the user watched the video, updating
// the timestamp when an entry already exists instead of duplicating it.
func (r *UserRepo) TouchWatchHistory(ctx context.Context, userID, videoID uint64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, video_id) VALUES (?,?)
		ON DUPLICATE KEY UPDATE watched_at = NOW()`,
		userID, videoID)
	return err
}

// WatchHistory expands the user's watch history with each video and
// its owner summary, most recently watched first.
func (r *UserRepo) WatchHistory(ctx context.Context, userID uint64) ([]model.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration, v.views, v.is_published, v.created_at, v.updated_at,
		       o.id, o.username, o.full_name, o.avatar_url,
		       h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = ?
		ORDER BY h.watched_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.HistoryEntry, 0)
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(
			&e.Video.ID, &e.Video.OwnerID, &e.Video.Title, &e.Video.Description,
			&e.Video.VideoURL, &e.Video.ThumbnailURL, &e.Video.Duration, &e.Video.Views,
			&e.Video.IsPublished, &e.Video.CreatedAt, &e.Video.UpdatedAt,
			&e.Video.Owner.ID, &e.Video.Owner.Username, &e.Video.Owner.FullName, &e.Video.Owner.Avatar,
			&e.WatchedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
