package store

import (
	"context"
	"errors"
	"sync"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
)

type fakeAuth struct {
	sendErr     error
	verifyResp  *api.AuthResponse
	verifyErr   error
	onboardResp *api.OnboardingResponse
	onboardErr  error
	logoutErr   error
	logoutCalls int
}

func (f *fakeAuth) SendVerificationCode(ctx context.Context, email string) (*api.Empty, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &api.Empty{Success: true}, nil
}

func (f *fakeAuth) VerifyCode(ctx context.Context, email, code string) (*api.AuthResponse, error) {
	return f.verifyResp, f.verifyErr
}

func (f *fakeAuth) CompleteOnboarding(ctx context.Context, data domain.OnboardingData) (*api.OnboardingResponse, error) {
	return f.onboardResp, f.onboardErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

type fakeProfiles struct {
	me        *api.MeResponse
	meErr     error
	meCalls   int
	patchErr  error
	lastPatch domain.ProfilePatch
}

func (f *fakeProfiles) GetMe(ctx context.Context) (*api.MeResponse, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.me, nil
}

func (f *fakeProfiles) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*api.Response[api.UserPayload], error) {
	f.lastPatch = patch
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	return &api.Response[api.UserPayload]{Success: true}, nil
}

type fakeMatching struct {
	mu sync.Mutex

	candidates    []*domain.Candidate
	candidatesErr error
	matches       []*domain.Match
	matchesErr    error
	lastStatus    string

	requestResp *api.MatchRequestResponse
	requestErr  error
	skipErr     error
	respondResp *api.MatchRespondResponse
	respondErr  error

	// gate, when set, blocks RequestMatch until closed.
	gate    chan struct{}
	entered chan struct{}
	// skipGate and skipEntered do the same for SkipCandidate.
	skipGate    chan struct{}
	skipEntered chan struct{}

	requests int
	skips    int
	responds int
}

func (f *fakeMatching) GetCandidates(ctx context.Context, limit, offset int) (*api.CandidatesResponse, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	return &api.CandidatesResponse{Candidates: f.candidates}, nil
}

func (f *fakeMatching) RequestMatch(ctx context.Context, candidateID, message string) (*api.MatchRequestResponse, error) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.requestResp, f.requestErr
}

func (f *fakeMatching) SkipCandidate(ctx context.Context, candidateID, reason string) (*api.Empty, error) {
	f.mu.Lock()
	f.skips++
	f.mu.Unlock()
	if f.skipEntered != nil {
		f.skipEntered <- struct{}{}
	}
	if f.skipGate != nil {
		<-f.skipGate
	}
	if f.skipErr != nil {
		return nil, f.skipErr
	}
	return &api.Empty{Success: true}, nil
}

func (f *fakeMatching) GetMyMatches(ctx context.Context, status, role string) (*api.MatchesResponse, error) {
	f.lastStatus = status
	if f.matchesErr != nil {
		return nil, f.matchesErr
	}
	return &api.MatchesResponse{Matches: f.matches}, nil
}

func (f *fakeMatching) counts() (requests, skips int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.skips
}

func (f *fakeMatching) RespondToMatch(ctx context.Context, matchID string, action domain.ResponseAction, message string) (*api.MatchRespondResponse, error) {
	f.mu.Lock()
	f.responds++
	f.mu.Unlock()
	return f.respondResp, f.respondErr
}

// failingStore fails Set for one key on top of a MemoryStore.
type failingStore struct {
	*securestore.MemoryStore
	failKey string
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if key == s.failKey {
		return errors.New("keychain unavailable")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

// countingStore counts deletes on top of a MemoryStore.
type countingStore struct {
	*securestore.MemoryStore
	deletes int
}

func (s *countingStore) Delete(ctx context.Context, keys ...string) error {
	s.deletes++
	return s.MemoryStore.Delete(ctx, keys...)
}
