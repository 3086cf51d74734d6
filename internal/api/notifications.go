package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

const DefaultNotificationLimit = 20

type NotificationsAPI struct{ t Doer }

func (n *NotificationsAPI) List(ctx context.Context, limit int, unreadOnly bool) (*NotificationsResponse, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	var out NotificationsResponse
	err := n.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/notifications",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}, "unreadOnly": {strconv.FormatBool(unreadOnly)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *NotificationsAPI) MarkRead(ctx context.Context, notificationID string) error {
	return n.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/notifications/" + escape(notificationID) + "/read",
		Route:  "/notifications/:id/read",
	}, nil)
}

func (n *NotificationsAPI) MarkAllRead(ctx context.Context) (int, error) {
	var out Response[MarkedPayload]
	if err := n.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/notifications/read-all"}, &out); err != nil {
		return 0, err
	}
	return out.Data.MarkedAsRead, nil
}

func (n *NotificationsAPI) Delete(ctx context.Context, notificationID string) error {
	return n.t.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/notifications/" + escape(notificationID),
		Route:  "/notifications/:id",
	}, nil)
}
