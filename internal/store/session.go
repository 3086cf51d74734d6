// Package store holds the client's two state containers: the session store
// (identity, profile, credentials) and the match store (candidate queue and
// match list). Each store owns its slice, replaces fields wholesale, and
// publishes a snapshot to subscribers after every change. Network calls run
// with the store unlocked.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/notify"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
)

type Status string

const (
	StatusUnauthenticated         Status = "unauthenticated"
	StatusVerifying               Status = "verifying"
	StatusAuthenticatedIncomplete Status = "authenticated-incomplete"
	StatusAuthenticatedComplete   Status = "authenticated-complete"
)

type AuthService interface {
	SendVerificationCode(ctx context.Context, email string) (*api.Empty, error)
	VerifyCode(ctx context.Context, email, code string) (*api.AuthResponse, error)
	CompleteOnboarding(ctx context.Context, data domain.OnboardingData) (*api.OnboardingResponse, error)
	Logout(ctx context.Context) error
}

type ProfileService interface {
	GetMe(ctx context.Context) (*api.MeResponse, error)
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*api.Response[api.UserPayload], error)
}

// SessionState is an immutable snapshot. Pointer fields are replaced, never
// edited in place.
type SessionState struct {
	User            *domain.User
	Profile         *domain.Profile
	Stats           *domain.UserStats
	Token           string
	PendingEmail    string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

func (s SessionState) Status() Status {
	switch {
	case s.IsAuthenticated && s.User != nil && s.User.OnboardingCompleted:
		return StatusAuthenticatedComplete
	case s.IsAuthenticated:
		return StatusAuthenticatedIncomplete
	case s.PendingEmail != "":
		return StatusVerifying
	default:
		return StatusUnauthenticated
	}
}

type Session struct {
	auth   AuthService
	users  ProfileService
	secure securestore.Store
	log    *logger.Logger

	mu    sync.Mutex
	state SessionState
	subs  notify.Registry[SessionState]
}

func NewSession(auth AuthService, users ProfileService, secure securestore.Store, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		auth:   auth,
		users:  users,
		secure: secure,
		log:    log.With("component", "session_store"),
		state:  SessionState{IsLoading: true},
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with every new snapshot until the returned func is called.
func (s *Session) Subscribe(fn func(SessionState)) func() {
	return s.subs.Add(fn)
}

func (s *Session) update(fn func(st *SessionState)) {
	s.mu.Lock()
	next := s.state
	fn(&next)
	s.state = next
	s.mu.Unlock()
	s.subs.Notify(next)
}

func (s *Session) begin() {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})
}

func (s *Session) fail(err error, fallback string) error {
	s.update(func(st *SessionState) {
		st.IsLoading = false
		st.Error = errorText(err, fallback)
	})
	return err
}

// SendVerificationCode asks the server to mail a one-time code. The address
// must already have passed the institutional check.
func (s *Session) SendVerificationCode(ctx context.Context, email string) error {
	s.begin()
	if _, err := s.auth.SendVerificationCode(ctx, email); err != nil {
		return s.fail(err, "Could not send the code")
	}
	s.update(func(st *SessionState) {
		st.IsLoading = false
		st.PendingEmail = email
	})
	return nil
}

func (s *Session) VerifyCode(ctx context.Context, email, code string) error {
	s.begin()
	resp, err := s.auth.VerifyCode(ctx, email, code)
	if err != nil {
		return s.fail(err, "Could not verify the code")
	}
	if resp.Token == "" || resp.User == nil {
		return s.fail(apierr.New(0, "", ErrMalformedResponse), "")
	}
	if err := s.secure.Set(ctx, securestore.KeyAuthToken, resp.Token); err != nil {
		s.log.Error("persist token failed", "error", err)
		return s.fail(err, "Could not save the session")
	}
	if err := s.persistUser(ctx, resp.User); err != nil {
		// token without identity is not a session
		if derr := s.secure.Delete(ctx, securestore.KeyAuthToken); derr != nil {
			s.log.Warn("discard token failed", "error", derr)
		}
		return s.fail(err, "Could not save the session")
	}
	user := resp.User
	s.update(func(st *SessionState) {
		st.Token = resp.Token
		st.User = user
		st.Profile = nil
		st.Stats = nil
		st.PendingEmail = ""
		st.IsAuthenticated = true
		st.IsLoading = false
	})
	if exp, _, ok := tokenClaims(resp.Token); ok && !exp.IsZero() {
		s.log.Debug("session established", "user_id", user.ID, "expires_at", exp)
	}
	return nil
}

func (s *Session) CompleteOnboarding(ctx context.Context, data domain.OnboardingData) error {
	s.begin()
	resp, err := s.auth.CompleteOnboarding(ctx, data)
	if err != nil {
		return s.fail(err, "Could not complete onboarding")
	}
	if resp.User == nil {
		return s.fail(apierr.New(0, "", ErrMalformedResponse), "")
	}
	if err := s.persistUser(ctx, resp.User); err != nil {
		return s.fail(err, "Could not save the profile")
	}
	s.update(func(st *SessionState) {
		st.User = resp.User
		st.Profile = resp.Profile
		st.IsLoading = false
	})
	return nil
}

// LoadUser restores the session at process start. It never fails: missing or
// unreadable credentials leave the store unauthenticated, and a failed
// refresh falls back to the cached identity. A 401 is the exception: the
// transport has already wiped both keys by then, so the cached identity no
// longer has a token behind it and the store settles signed out.
func (s *Session) LoadUser(ctx context.Context) {
	s.update(func(st *SessionState) { st.IsLoading = true })

	token, cached, ok := s.readCredentials(ctx)
	if !ok {
		s.update(func(st *SessionState) { st.IsLoading = false })
		return
	}

	me, err := s.users.GetMe(ctx)
	switch {
	case err == nil && me.User != nil:
		s.update(func(st *SessionState) {
			st.Token = token
			st.User = me.User
			st.Profile = me.Profile
			st.Stats = me.Stats
			st.IsAuthenticated = true
			st.IsLoading = false
		})
	case apierr.StatusOf(err) == 401:
		// transport already wiped storage
		s.log.Info("stored session rejected by server")
		s.update(func(st *SessionState) { *st = SessionState{} })
	default:
		if err != nil {
			s.log.Warn("profile refresh failed; using cached identity", "error", err)
		}
		s.update(func(st *SessionState) {
			st.Token = token
			st.User = cached
			st.IsAuthenticated = true
			st.IsLoading = false
		})
	}
}

func (s *Session) readCredentials(ctx context.Context) (string, *domain.User, bool) {
	token, ok, err := securestore.Lookup(ctx, s.secure, securestore.KeyAuthToken)
	if err != nil {
		s.log.Warn("read stored token failed", "error", err)
		return "", nil, false
	}
	if !ok || token == "" {
		return "", nil, false
	}
	raw, ok, err := securestore.Lookup(ctx, s.secure, securestore.KeyUserData)
	if err != nil {
		s.log.Warn("read stored user failed", "error", err)
		return "", nil, false
	}
	if !ok {
		return "", nil, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("stored user is corrupt", "error", err)
		return "", nil, false
	}
	return token, &user, true
}

// UpdateProfile patches the profile, then re-reads the canonical copy.
func (s *Session) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	s.begin()
	if _, err := s.users.UpdateProfile(ctx, patch); err != nil {
		return s.fail(err, "Could not update the profile")
	}
	me, err := s.users.GetMe(ctx)
	if err != nil {
		return s.fail(err, "Could not update the profile")
	}
	if me.User == nil {
		return s.fail(apierr.New(0, "", ErrMalformedResponse), "")
	}
	if err := s.persistUser(ctx, me.User); err != nil {
		return s.fail(err, "Could not save the profile")
	}
	s.update(func(st *SessionState) {
		st.User = me.User
		st.Profile = me.Profile
		st.Stats = me.Stats
		st.IsLoading = false
	})
	return nil
}

// Logout signs out remotely when possible and always clears local state.
// The only error is a failure to delete the stored credentials.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn("remote logout failed (ignored)", "error", err)
	}
	wipeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := s.secure.Delete(wipeCtx, securestore.CredentialKeys...)
	if err != nil {
		s.log.Error("clear stored credentials failed", "error", err)
	}
	s.update(func(st *SessionState) { *st = SessionState{} })
	return err
}

// CredentialsCleared resets local state after the transport wiped storage
// on a 401. Storage is not touched again.
func (s *Session) CredentialsCleared() {
	s.update(func(st *SessionState) {
		*st = SessionState{Error: st.Error}
	})
}

func (s *Session) ClearError() {
	s.update(func(st *SessionState) { st.Error = "" })
}

// TokenExpiry reports the exp claim of the current token, read without
// verification.
func (s *Session) TokenExpiry() (time.Time, bool) {
	exp, _, ok := tokenClaims(s.State().Token)
	if !ok || exp.IsZero() {
		return time.Time{}, false
	}
	return exp, true
}

func (s *Session) persistUser(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.secure.Set(ctx, securestore.KeyUserData, string(raw)); err != nil {
		s.log.Error("persist user failed", "error", err)
		return err
	}
	return nil
}
