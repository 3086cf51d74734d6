package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/notify"
)

type MatchService interface {
	GetCandidates(ctx context.Context, limit, offset int) (*api.CandidatesResponse, error)
	RequestMatch(ctx context.Context, candidateID, message string) (*api.MatchRequestResponse, error)
	SkipCandidate(ctx context.Context, candidateID, reason string) (*api.Empty, error)
	GetMyMatches(ctx context.Context, status, role string) (*api.MatchesResponse, error)
	RespondToMatch(ctx context.Context, matchID string, action domain.ResponseAction, message string) (*api.MatchRespondResponse, error)
}

// MatchState is an immutable snapshot. The slices are shared with the store
// and must not be modified.
type MatchState struct {
	Candidates       []*domain.Candidate
	Matches          []*domain.Match
	CurrentIndex     int
	IsLoading        bool
	IsLoadingMatches bool
	Error            string
}

// Current is the candidate under the traversal cursor, or nil past the end.
func (s MatchState) Current() *domain.Candidate {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Candidates) {
		return nil
	}
	return s.Candidates[s.CurrentIndex]
}

type Matches struct {
	svc MatchService
	log *logger.Logger

	// flights coalesces repeats of the same action on the same candidate or
	// match. Keys carry the direction so a swipe never joins the opposite one;
	// dequeue rejects the second direction instead.
	flights singleflight.Group

	mu    sync.Mutex
	state MatchState
	subs  notify.Registry[MatchState]
}

func NewMatches(svc MatchService, log *logger.Logger) *Matches {
	if log == nil {
		log = logger.Nop()
	}
	return &Matches{svc: svc, log: log.With("component", "match_store")}
}

func (m *Matches) State() MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Matches) Subscribe(fn func(MatchState)) func() {
	return m.subs.Add(fn)
}

func (m *Matches) update(fn func(st *MatchState)) {
	m.mu.Lock()
	next := m.state
	fn(&next)
	m.state = next
	m.mu.Unlock()
	m.subs.Notify(next)
}

// FetchCandidates replaces the queue and rewinds the cursor. Failures land in
// the error slot only.
func (m *Matches) FetchCandidates(ctx context.Context) {
	m.update(func(st *MatchState) {
		st.IsLoading = true
		st.Error = ""
	})
	resp, err := m.svc.GetCandidates(ctx, api.DefaultCandidateLimit, 0)
	if err != nil {
		m.log.Warn("fetch candidates failed", "error", err)
		m.update(func(st *MatchState) {
			st.IsLoading = false
			st.Error = errorText(err, "Could not load candidates")
		})
		return
	}
	candidates := resp.Candidates
	if candidates == nil {
		candidates = []*domain.Candidate{}
	}
	m.update(func(st *MatchState) {
		st.Candidates = candidates
		st.CurrentIndex = 0
		st.IsLoading = false
	})
}

// FetchMatches replaces the match list with the server's, filtered by status
// ("" means all). Failures land in the error slot only.
func (m *Matches) FetchMatches(ctx context.Context, status string) {
	m.update(func(st *MatchState) {
		st.IsLoadingMatches = true
		st.Error = ""
	})
	resp, err := m.svc.GetMyMatches(ctx, status, "")
	if err != nil {
		m.log.Warn("fetch matches failed", "error", err)
		m.update(func(st *MatchState) {
			st.IsLoadingMatches = false
			st.Error = errorText(err, "Could not load matches")
		})
		return
	}
	matches := resp.Matches
	if matches == nil {
		matches = []*domain.Match{}
	}
	m.update(func(st *MatchState) {
		st.Matches = matches
		st.IsLoadingMatches = false
	})
}

// SwipeRight requests a match. The candidate leaves the queue and the cursor
// advances before the request is sent and stay that way if it fails. A
// confirmed match is prepended to the match list. A SwipeLeft already in
// flight for the same candidate makes this return ErrUnknownCandidate.
func (m *Matches) SwipeRight(ctx context.Context, candidateID, message string) (*api.MatchRequestResponse, error) {
	v, err, _ := m.flights.Do("right:"+candidateID, func() (any, error) {
		if err := m.dequeue(candidateID); err != nil {
			return nil, err
		}
		resp, err := m.svc.RequestMatch(ctx, candidateID, message)
		if err != nil {
			m.log.Warn("match request failed", "candidate_id", candidateID, "error", err)
			m.setError(err, "Could not send the match request")
			return nil, err
		}
		if resp == nil {
			err := apierr.New(0, "", ErrMalformedResponse)
			m.setError(err, "Could not send the match request")
			return nil, err
		}
		if resp.Match != nil {
			m.update(func(st *MatchState) {
				next := make([]*domain.Match, 0, len(st.Matches)+1)
				next = append(next, resp.Match)
				st.Matches = append(next, st.Matches...)
			})
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	resp, ok := v.(*api.MatchRequestResponse)
	if !ok || resp == nil {
		return nil, apierr.New(0, "", ErrMalformedResponse)
	}
	return resp, nil
}

// SwipeLeft skips a candidate with the same remove-then-request ordering as
// SwipeRight.
func (m *Matches) SwipeLeft(ctx context.Context, candidateID string) error {
	_, err, _ := m.flights.Do("left:"+candidateID, func() (any, error) {
		if err := m.dequeue(candidateID); err != nil {
			return nil, err
		}
		if _, err := m.svc.SkipCandidate(ctx, candidateID, ""); err != nil {
			m.log.Warn("skip failed", "candidate_id", candidateID, "error", err)
			m.setError(err, "Could not skip the candidate")
			return nil, err
		}
		return nil, nil
	})
	return err
}

// dequeue removes exactly one candidate with id and advances the cursor.
func (m *Matches) dequeue(candidateID string) error {
	var found bool
	m.update(func(st *MatchState) {
		idx := -1
		for i, c := range st.Candidates {
			if c.ID == candidateID {
				idx = i
				break
			}
		}
		if idx < 0 {
			st.Error = ErrUnknownCandidate.Error()
			return
		}
		found = true
		next := make([]*domain.Candidate, 0, len(st.Candidates)-1)
		next = append(next, st.Candidates[:idx]...)
		next = append(next, st.Candidates[idx+1:]...)
		st.Candidates = next
		st.CurrentIndex++
	})
	if !found {
		return ErrUnknownCandidate
	}
	return nil
}

// RespondToMatch accepts or rejects a pending match. Local state changes only
// after the server confirms, and only the targeted entry is replaced.
func (m *Matches) RespondToMatch(ctx context.Context, matchID string, action domain.ResponseAction, message string) (*api.MatchRespondResponse, error) {
	if !action.Valid() {
		err := apierr.Validation(domain.ErrInvalidAction.Error(), domain.ErrInvalidAction)
		m.setError(err, "")
		return nil, err
	}
	v, err, _ := m.flights.Do("respond:"+matchID, func() (any, error) {
		resp, err := m.svc.RespondToMatch(ctx, matchID, action, message)
		if err != nil {
			m.log.Warn("respond to match failed", "match_id", matchID, "error", err)
			m.setError(err, "Could not respond to the match")
			return nil, err
		}
		to := action.ResultingStatus()
		m.update(func(st *MatchState) {
			idx := -1
			for i, mt := range st.Matches {
				if mt.ID == matchID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return
			}
			cur := st.Matches[idx]
			if !cur.Status.CanTransition(to) {
				m.log.Warn("server confirmed an unexpected transition", "match_id", matchID, "from", cur.Status, "to", to)
			}
			updated := *cur
			updated.Status = to
			next := make([]*domain.Match, len(st.Matches))
			copy(next, st.Matches)
			next[idx] = &updated
			st.Matches = next
		})
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	resp, _ := v.(*api.MatchRespondResponse)
	return resp, nil
}

// Match looks up a match in the current list.
func (m *Matches) Match(matchID string) (*domain.Match, error) {
	st := m.State()
	for _, mt := range st.Matches {
		if mt.ID == matchID {
			return mt, nil
		}
	}
	return nil, ErrUnknownMatch
}

func (m *Matches) NextCandidate() {
	m.update(func(st *MatchState) { st.CurrentIndex++ })
}

func (m *Matches) Reset() {
	m.update(func(st *MatchState) {
		st.Candidates = nil
		st.Matches = nil
		st.CurrentIndex = 0
		st.Error = ""
	})
}

func (m *Matches) ClearError() {
	m.update(func(st *MatchState) { st.Error = "" })
}

func (m *Matches) setError(err error, fallback string) {
	m.update(func(st *MatchState) { st.Error = errorText(err, fallback) })
}
