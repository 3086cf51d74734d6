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

const (
	DefaultCandidateLimit = 20
	MatchFilterAll        = "all"
)

type MatchingAPI struct{ t Doer }

// GetCandidates lists suggested candidates. limit <= 0 means the default.
func (m *MatchingAPI) GetCandidates(ctx context.Context, limit, offset int) (*CandidatesResponse, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	if offset < 0 {
		offset = 0
	}
	var out CandidatesResponse
	err := m.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/matches/candidates",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}, "offset": {strconv.Itoa(offset)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MatchingAPI) RequestMatch(ctx context.Context, candidateID, message string) (*MatchRequestResponse, error) {
	body := struct {
		CandidateID string `json:"candidateId"`
		Message     string `json:"message,omitempty"`
	}{candidateID, message}
	var out MatchRequestResponse
	if err := m.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/matches/request", Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MatchingAPI) SkipCandidate(ctx context.Context, candidateID, reason string) (*Empty, error) {
	body := struct {
		CandidateID string `json:"candidateId"`
		Reason      string `json:"reason,omitempty"`
	}{candidateID, reason}
	var out Empty
	if err := m.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/matches/skip", Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyMatches filters by status and role; empty values mean "all".
func (m *MatchingAPI) GetMyMatches(ctx context.Context, status, role string) (*MatchesResponse, error) {
	if status == "" {
		status = MatchFilterAll
	}
	if role == "" {
		role = MatchFilterAll
	}
	var out MatchesResponse
	err := m.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/matches/my-matches",
		Query:  url.Values{"status": {status}, "role": {role}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MatchingAPI) RespondToMatch(ctx context.Context, matchID string, action domain.ResponseAction, message string) (*MatchRespondResponse, error) {
	if !action.Valid() {
		return nil, apierr.Validation(domain.ErrInvalidAction.Error(), domain.ErrInvalidAction)
	}
	body := struct {
		Action  domain.ResponseAction `json:"action"`
		Message string                `json:"message,omitempty"`
	}{action, message}
	var out MatchRespondResponse
	err := m.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/matches/" + escape(matchID) + "/respond",
		Route:  "/matches/:id/respond",
		Body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
