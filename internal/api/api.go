// Package api is the resource request layer: one method per remote endpoint,
// parameter defaults applied, no retries and no caching. Errors come back
// exactly as the transport produced them.
package api

import (
	"context"
	"net/url"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

// Doer is the part of *transport.Client the request layer needs.
type Doer interface {
	Do(ctx context.Context, req transport.Request, out any) error
	DoRaw(ctx context.Context, req transport.Request) ([]byte, error)
}

type Client struct {
	Auth          *AuthAPI
	Users         *UsersAPI
	Matching      *MatchingAPI
	Chat          *ChatAPI
	Sessions      *SessionsAPI
	Feed          *FeedAPI
	Gamification  *GamificationAPI
	Notifications *NotificationsAPI
}

func New(t Doer) *Client {
	return &Client{
		Auth:          &AuthAPI{t: t},
		Users:         &UsersAPI{t: t},
		Matching:      &MatchingAPI{t: t},
		Chat:          &ChatAPI{t: t},
		Sessions:      &SessionsAPI{t: t},
		Feed:          &FeedAPI{t: t},
		Gamification:  &GamificationAPI{t: t},
		Notifications: &NotificationsAPI{t: t},
	}
}

// escape substitutes a single path segment.
func escape(id string) string {
	return url.PathEscape(id)
}
