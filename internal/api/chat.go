package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

const DefaultMessageLimit = 50

type ChatAPI struct{ t Doer }

// GetMessages returns newest-first, as the server orders them. before is a
// message id cursor; empty means latest.
func (c *ChatAPI) GetMessages(ctx context.Context, matchID string, limit int, before string) (*MessagesResponse, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		q.Set("before", before)
	}
	var out MessagesResponse
	err := c.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/matches/" + escape(matchID) + "/messages",
		Route:  "/matches/:id/messages",
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts content; an empty messageType means text.
func (c *ChatAPI) SendMessage(ctx context.Context, matchID, content string, messageType domain.MessageType) (*domain.Message, error) {
	if err := domain.ValidateMessage(content); err != nil {
		return nil, apierr.Validation(err.Error(), err)
	}
	if messageType == "" {
		messageType = domain.MessageText
	}
	body := struct {
		Content     string             `json:"content"`
		MessageType domain.MessageType `json:"messageType"`
	}{content, messageType}
	var out Response[MessagePayload]
	err := c.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/matches/" + escape(matchID) + "/messages",
		Route:  "/matches/:id/messages",
		Body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data.Message, nil
}

func (c *ChatAPI) MarkAsRead(ctx context.Context, matchID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return c.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/matches/" + escape(matchID) + "/messages/read",
		Route:  "/matches/:id/messages/read",
		Body:   map[string][]string{"messageIds": messageIDs},
	}, nil)
}
