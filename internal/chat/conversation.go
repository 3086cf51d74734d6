package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/notify"
)

// Snapshot is what a chat view renders. Messages are oldest first and must
// not be modified.
type Snapshot struct {
	MatchID  string
	Messages []*domain.Message
	Error    string
	Sending  bool
}

type Conversation struct {
	matchID string
	selfID  string
	api     MessageAPI
	feed    Feed
	log     *logger.Logger

	mu    sync.Mutex
	state Snapshot
	subs  notify.Registry[Snapshot]
}

func NewConversation(matchID, selfID string, msgs MessageAPI, feed Feed, log *logger.Logger) *Conversation {
	if log == nil {
		log = logger.Nop()
	}
	return &Conversation{
		matchID: matchID,
		selfID:  selfID,
		api:     msgs,
		feed:    feed,
		log:     log.With("component", "conversation", "match_id", matchID),
		state:   Snapshot{MatchID: matchID, Messages: []*domain.Message{}},
	}
}

func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) Subscribe(fn func(Snapshot)) func() {
	return c.subs.Add(fn)
}

func (c *Conversation) update(fn func(s *Snapshot)) {
	c.mu.Lock()
	next := c.state
	fn(&next)
	c.state = next
	c.mu.Unlock()
	c.subs.Notify(next)
}

// Run follows the feed until ctx is cancelled. Cancelling ctx is how a
// closed chat stops its polling.
func (c *Conversation) Run(ctx context.Context) error {
	if c.feed == nil {
		return errors.New("chat: no feed")
	}
	return c.feed.Watch(ctx, c.matchID, func(b Batch) { c.apply(ctx, b) })
}

func (c *Conversation) apply(ctx context.Context, b Batch) {
	if b.Err != nil {
		if ctx.Err() != nil {
			return
		}
		c.update(func(s *Snapshot) { s.Error = b.Err.Error() })
		return
	}
	c.update(func(s *Snapshot) {
		s.Messages = b.Messages
		s.Error = ""
	})

	var unread []string
	for _, m := range b.Messages {
		if !m.IsRead && m.SenderID != c.selfID {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) == 0 {
		return
	}
	if err := c.api.MarkAsRead(ctx, c.matchID, unread); err != nil && ctx.Err() == nil {
		c.log.Warn("mark as read failed", "count", len(unread), "error", err)
	}
}

// Send posts a text message and appends the server's copy locally.
func (c *Conversation) Send(ctx context.Context, content string) (*domain.Message, error) {
	c.update(func(s *Snapshot) { s.Sending = true })
	msg, err := c.api.SendMessage(ctx, c.matchID, content, domain.MessageText)
	if err != nil {
		c.update(func(s *Snapshot) {
			s.Sending = false
			s.Error = err.Error()
		})
		return nil, err
	}
	c.update(func(s *Snapshot) {
		s.Sending = false
		if msg == nil {
			return
		}
		next := make([]*domain.Message, 0, len(s.Messages)+1)
		next = append(next, s.Messages...)
		s.Messages = append(next, msg)
	})
	return msg, nil
}
