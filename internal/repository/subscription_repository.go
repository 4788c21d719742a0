package repository

import (
	"context"
	"database/sql"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// SubscriptionRepo persists subscriber→channel pairs.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Toggle flips the subscription state and reports the new state: true
// when subscribed, false when unsubscribed. Same delete-first scheme
// as the like toggle; the unique pair key absorbs races.
func (r *SubscriptionRepo) Toggle(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE subscriber_id=? AND channel_id=?",
		subscriberID, channelID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (subscriber_id, channel_id) VALUES (?,?)",
		subscriberID, channelID)
	if err != nil && !isDuplicateKey(err) {
		return false, err
	}
	return true, nil
}

// Subscribers returns the channel's subscriber profiles, newest
// subscription first. The count is len of the slice but is returned
// separately so the handler can expose it without recounting.
func (r *SubscriptionRepo) Subscribers(ctx context.Context, channelID uint64) (int64, []model.OwnerSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = ?
		ORDER BY s.created_at DESC`,
		channelID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	subs := make([]model.OwnerSummary, 0)
	for rows.Next() {
		var s model.OwnerSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Avatar); err != nil {
			return 0, nil, err
		}
		subs = append(subs, s)
	}
	return int64(len(subs)), subs, rows.Err()
}

// Channels returns the profiles of channels the subscriber follows.
func (r *SubscriptionRepo) Channels(ctx context.Context, subscriberID uint64) (int64, []model.OwnerSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM subscriptions s JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = ?
		ORDER BY s.created_at DESC`,
		subscriberID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	chans := make([]model.OwnerSummary, 0)
	for rows.Next() {
		var c model.OwnerSummary
		if err := rows.Scan(&c.ID, &c.Username, &c.FullName, &c.Avatar); err != nil {
			return 0, nil, err
		}
		chans = append(chans, c)
	}
	return int64(len(chans)), chans, rows.Err()
}
