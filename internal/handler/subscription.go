package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
)

// SubscriptionHandler owns channel subscriptions.
type SubscriptionHandler struct {
	Subs  SubscriptionStore
	Users UserStore
}

func NewSubscriptionHandler(subs SubscriptionStore, users UserStore) *SubscriptionHandler {
	return &SubscriptionHandler{Subs: subs, Users: users}
}

// Toggle subscribes or unsubscribes the caller to a channel.
// Subscribing to your own channel is rejected.
func (h *SubscriptionHandler) Toggle(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid channel id")
	}
	if channelID == uid {
		return fail(c, http.StatusBadRequest, "cannot subscribe to your own channel")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), channelID); err != nil {
		return failRepo(c, err, "channel not found")
	}
	subscribed, err := h.Subs.Toggle(c.Request().Context(), uid, channelID)
	if err != nil {
		return failRepo(c, err, "channel not found")
	}
	msg := "unsubscribed successfully"
	if subscribed {
		msg = "subscribed successfully"
	}
	return respond(c, http.StatusOK, map[string]any{"subscribed": subscribed}, msg)
}

// Subscribers lists a channel's subscribers with their count.
func (h *SubscriptionHandler) Subscribers(c echo.Context) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid channel id")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), channelID); err != nil {
		return failRepo(c, err, "channel not found")
	}
	count, subs, err := h.Subs.Subscribers(c.Request().Context(), channelID)
	if err != nil {
		return failRepo(c, err, "channel not found")
	}
	return respond(c, http.StatusOK, map[string]any{
		"subscriberCount": count,
		"subscribers":     ownerList(subs),
	}, "subscribers fetched successfully")
}

// Channels lists the channels a user is subscribed to with their
// count.
func (h *SubscriptionHandler) Channels(c echo.Context) error {
	subscriberID, err := parseID(c, "subscriberId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid subscriber id")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), subscriberID); err != nil {
		return failRepo(c, err, "user not found")
	}
	count, channels, err := h.Subs.Channels(c.Request().Context(), subscriberID)
	if err != nil {
		return failRepo(c, err, "user not found")
	}
	return respond(c, http.StatusOK, map[string]any{
		"channelCount": count,
		"channels":     ownerList(channels),
	}, "subscribed channels fetched successfully")
}

func ownerList(owners []model.OwnerSummary) []ownerSummaryJSON {
	out := make([]ownerSummaryJSON, 0, len(owners))
	for _, o := range owners {
		out = append(out, ownerJSON(o))
	}
	return out
}
