package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

const (
	DefaultSessionStatus = "upcoming"
	DefaultSessionLimit  = 10
)

type SessionsAPI struct{ t Doer }

func (s *SessionsAPI) Create(ctx context.Context, in domain.NewSession) (*SessionCreateResponse, error) {
	if err := domain.ValidateSessionDuration(in.Duration); err != nil {
		return nil, apierr.Validation(err.Error(), err)
	}
	var out SessionCreateResponse
	if err := s.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/sessions", Body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List filters by status (default upcoming) and optionally by match.
func (s *SessionsAPI) List(ctx context.Context, status string, limit int, matchID string) (*SessionsResponse, error) {
	if status == "" {
		status = DefaultSessionStatus
	}
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	q := url.Values{"status": {status}, "limit": {strconv.Itoa(limit)}}
	if matchID != "" {
		q.Set("matchId", matchID)
	}
	var out SessionsResponse
	if err := s.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/sessions", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionsAPI) Complete(ctx context.Context, sessionID string, fb domain.SessionFeedback) (*SessionCompleteResponse, error) {
	if err := domain.ValidateRating(fb.Rating); err != nil {
		return nil, apierr.Validation(err.Error(), err)
	}
	var out SessionCompleteResponse
	err := s.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/sessions/" + escape(sessionID) + "/complete",
		Route:  "/sessions/:id/complete",
		Body:   fb,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionsAPI) Cancel(ctx context.Context, sessionID, reason string) (*domain.Session, error) {
	body := struct {
		Reason string `json:"reason,omitempty"`
	}{reason}
	var out Response[SessionPayload]
	err := s.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/sessions/" + escape(sessionID) + "/cancel",
		Route:  "/sessions/:id/cancel",
		Body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data.Session, nil
}

func (s *SessionsAPI) Reschedule(ctx context.Context, sessionID string, at time.Time) (*domain.Session, error) {
	body := struct {
		NewScheduledAt time.Time `json:"newScheduledAt"`
	}{at.UTC()}
	var out Response[SessionPayload]
	err := s.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/sessions/" + escape(sessionID) + "/reschedule",
		Route:  "/sessions/:id/reschedule",
		Body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data.Session, nil
}
