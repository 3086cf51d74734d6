// Package chat keeps the transient message list of one open conversation.
// Messages reach it through a Feed; the shipped Feed polls the REST
// endpoint, and a push transport can replace it without touching
// Conversation.
package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/observability"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultPageSize     = api.DefaultMessageLimit
)

// Batch is one delivery: the latest page, oldest message first, or the
// error that prevented fetching it.
type Batch struct {
	Messages []*domain.Message
	Err      error
}

type Feed interface {
	// Watch delivers batches for matchID until ctx is done. It returns nil
	// on cancellation.
	Watch(ctx context.Context, matchID string, deliver func(Batch)) error
}

type MessageAPI interface {
	GetMessages(ctx context.Context, matchID string, limit int, before string) (*api.MessagesResponse, error)
	SendMessage(ctx context.Context, matchID, content string, messageType domain.MessageType) (*domain.Message, error)
	MarkAsRead(ctx context.Context, matchID string, messageIDs []string) error
}

type PollOptions struct {
	Interval time.Duration
	PageSize int
	Logger   *logger.Logger
	Metrics  *observability.Metrics
}

// PollingFeed fetches the latest page on a fixed interval. A tick that
// arrives while the previous fetch is still running is dropped.
type PollingFeed struct {
	api      MessageAPI
	interval time.Duration
	pageSize int
	log      *logger.Logger
	metrics  *observability.Metrics
}

func NewPollingFeed(msgs MessageAPI, opts PollOptions) *PollingFeed {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &PollingFeed{
		api:      msgs,
		interval: interval,
		pageSize: pageSize,
		log:      log.With("component", "chat_poller"),
		metrics:  opts.Metrics,
	}
}

func (p *PollingFeed) Watch(ctx context.Context, matchID string, deliver func(Batch)) error {
	var (
		inFlight atomic.Bool
		wg       sync.WaitGroup
	)
	poll := func() {
		if !inFlight.CompareAndSwap(false, true) {
			p.metrics.ObservePoll("skipped")
			p.log.Debug("poll skipped; previous still running", "match_id", matchID)
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer inFlight.Store(false)
			deliver(p.fetch(ctx, matchID))
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	poll()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

func (p *PollingFeed) fetch(ctx context.Context, matchID string) Batch {
	resp, err := p.api.GetMessages(ctx, matchID, p.pageSize, "")
	if err != nil {
		if ctx.Err() == nil {
			p.metrics.ObservePoll("error")
			p.log.Warn("poll messages failed", "match_id", matchID, "error", err)
		}
		return Batch{Err: err}
	}
	p.metrics.ObservePoll("ok")
	return Batch{Messages: oldestFirst(resp.Messages)}
}

// oldestFirst reverses the server's newest-first page into a new slice.
func oldestFirst(msgs []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}
