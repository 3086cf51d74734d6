package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

func seedCredentials(t *testing.T, s securestore.Store, token string, u *domain.User) {
	t.Helper()
	ctx := context.Background()
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.Set(ctx, securestore.KeyAuthToken, token); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Set(ctx, securestore.KeyUserData, string(raw)); err != nil {
		t.Fatalf("set user: %v", err)
	}
}

func serverErr(status int, msg string) error {
	return &apierr.Error{Kind: apierr.KindServer, Status: status, Message: msg}
}

func TestSendVerificationCodeMovesToVerifying(t *testing.T) {
	s := NewSession(&fakeAuth{}, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	if err := s.SendVerificationCode(context.Background(), "ana@utec.edu.pe"); err != nil {
		t.Fatalf("send: %v", err)
	}
	st := s.State()
	if st.Status() != StatusVerifying || st.IsAuthenticated {
		t.Fatalf("status=%s authenticated=%v", st.Status(), st.IsAuthenticated)
	}
}

func TestSendVerificationCodeFailureFillsErrorAndReturns(t *testing.T) {
	want := serverErr(429, transport.MsgRateLimited)
	s := NewSession(&fakeAuth{sendErr: want}, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	err := s.SendVerificationCode(context.Background(), "ana@utec.edu.pe")
	if !errors.Is(err, want) {
		t.Fatalf("err=%v", err)
	}
	st := s.State()
	if st.Error != transport.MsgRateLimited || st.IsLoading {
		t.Fatalf("state=%+v", st)
	}
	if st.Status() != StatusUnauthenticated {
		t.Fatalf("status=%s", st.Status())
	}
}

func TestVerifyCodePersistsAndAuthenticates(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Success: true, Token: "tok", User: &domain.User{ID: "u1", Email: "ana@utec.edu.pe"}}}
	s := NewSession(auth, &fakeProfiles{}, secure, nil)

	if err := s.VerifyCode(ctx, "ana@utec.edu.pe", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := s.State().Status(); got != StatusAuthenticatedIncomplete {
		t.Fatalf("status=%s", got)
	}
	if tok, _ := secure.Get(ctx, securestore.KeyAuthToken); tok != "tok" {
		t.Fatalf("token=%q", tok)
	}
	raw, _ := secure.Get(ctx, securestore.KeyUserData)
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID != "u1" {
		t.Fatalf("stored user=%q err=%v", raw, err)
	}
}

func TestVerifyCodeDiscardsTokenWhenUserCannotBeSaved(t *testing.T) {
	ctx := context.Background()
	secure := &failingStore{MemoryStore: securestore.NewMemoryStore(), failKey: securestore.KeyUserData}
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Token: "tok", User: &domain.User{ID: "u1"}}}
	s := NewSession(auth, &fakeProfiles{}, secure, nil)

	if err := s.VerifyCode(ctx, "ana@utec.edu.pe", "123456"); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok, err := securestore.Lookup(ctx, secure, securestore.KeyAuthToken); ok || err != nil {
		t.Fatalf("token left behind: ok=%v err=%v", ok, err)
	}
	st := s.State()
	if st.IsAuthenticated || st.Error == "" || st.IsLoading {
		t.Fatalf("state=%+v", st)
	}
}

func TestVerifyCodeCompleteUser(t *testing.T) {
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Token: "tok", User: &domain.User{ID: "u1", OnboardingCompleted: true}}}
	s := NewSession(auth, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	if err := s.VerifyCode(context.Background(), "a@utec.edu.pe", "1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := s.State().Status(); got != StatusAuthenticatedComplete {
		t.Fatalf("status=%s", got)
	}
}

func TestVerifyCodeFailureKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	s := NewSession(&fakeAuth{}, &fakeProfiles{}, secure, nil)
	_ = s.SendVerificationCode(ctx, "ana@utec.edu.pe")

	s.auth = &fakeAuth{verifyErr: serverErr(400, "Código inválido")}
	if err := s.VerifyCode(ctx, "ana@utec.edu.pe", "000000"); err == nil {
		t.Fatalf("expected error")
	}
	st := s.State()
	if st.Status() != StatusVerifying || st.Error != "Código inválido" {
		t.Fatalf("state=%+v", st)
	}
	if _, ok, _ := securestore.Lookup(ctx, secure, securestore.KeyAuthToken); ok {
		t.Fatalf("token persisted on failure")
	}
}

func TestVerifyCodeRejectsMalformedResponse(t *testing.T) {
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Success: true}}
	s := NewSession(auth, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	err := s.VerifyCode(context.Background(), "a@utec.edu.pe", "1")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err=%v", err)
	}
	if s.State().IsAuthenticated {
		t.Fatalf("authenticated on malformed response")
	}
}

func TestLoadUserWithoutTokenSettlesUnauthenticated(t *testing.T) {
	profiles := &fakeProfiles{}
	s := NewSession(&fakeAuth{}, profiles, securestore.NewMemoryStore(), nil)
	if !s.State().IsLoading {
		t.Fatalf("store should start loading")
	}
	s.LoadUser(context.Background())
	st := s.State()
	if st.IsAuthenticated || st.IsLoading || st.Error != "" {
		t.Fatalf("state=%+v", st)
	}
	if profiles.meCalls != 0 {
		t.Fatalf("fetched profile without a token")
	}
}

func TestLoadUserCorruptIdentityIsTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	_ = secure.Set(ctx, securestore.KeyAuthToken, "tok")
	_ = secure.Set(ctx, securestore.KeyUserData, "{not json")
	s := NewSession(&fakeAuth{}, &fakeProfiles{}, secure, nil)
	s.LoadUser(ctx)
	if s.State().IsAuthenticated {
		t.Fatalf("authenticated with corrupt identity")
	}
}

func TestLoadUserPrefersFreshProfile(t *testing.T) {
	secure := securestore.NewMemoryStore()
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1", FirstName: "Old"})
	profiles := &fakeProfiles{me: &api.MeResponse{
		User:    &domain.User{ID: "u1", FirstName: "New", OnboardingCompleted: true},
		Profile: &domain.Profile{Points: 120},
	}}
	s := NewSession(&fakeAuth{}, profiles, secure, nil)
	s.LoadUser(context.Background())
	st := s.State()
	if !st.IsAuthenticated || st.User.FirstName != "New" || st.Profile == nil || st.Profile.Points != 120 {
		t.Fatalf("state=%+v", st)
	}
	if st.Token != "tok" {
		t.Fatalf("token=%q", st.Token)
	}
}

func TestLoadUserFallsBackToCachedIdentity(t *testing.T) {
	ctx := context.Background()
	secure := &countingStore{MemoryStore: securestore.NewMemoryStore()}
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1", FirstName: "Cached"})
	profiles := &fakeProfiles{meErr: serverErr(503, transport.MsgServer)}

	s := NewSession(&fakeAuth{}, profiles, secure, nil)
	s.LoadUser(ctx)
	st := s.State()
	if !st.IsAuthenticated || st.User == nil || st.User.FirstName != "Cached" {
		t.Fatalf("state=%+v", st)
	}
	if st.Error != "" {
		t.Fatalf("error surfaced: %q", st.Error)
	}
	if secure.deletes != 0 {
		t.Fatalf("storage cleared")
	}
	for _, k := range securestore.CredentialKeys {
		if _, ok, _ := securestore.Lookup(ctx, secure, k); !ok {
			t.Fatalf("%s missing after fallback", k)
		}
	}
}

func TestLoadUserUnauthorizedSettlesSignedOut(t *testing.T) {
	secure := securestore.NewMemoryStore()
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1"})
	profiles := &fakeProfiles{meErr: serverErr(401, transport.MsgSessionExpired)}
	s := NewSession(&fakeAuth{}, profiles, secure, nil)
	s.LoadUser(context.Background())
	if s.State().IsAuthenticated {
		t.Fatalf("authenticated after 401")
	}
}

func TestOnboardingThenRestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	auth := &fakeAuth{
		verifyResp:  &api.AuthResponse{Token: "tok", User: &domain.User{ID: "u1"}},
		onboardResp: &api.OnboardingResponse{Success: true, User: &domain.User{ID: "u1", FirstName: "Ana", OnboardingCompleted: true}, Profile: &domain.Profile{Level: 1}},
	}
	s := NewSession(auth, &fakeProfiles{}, secure, nil)
	if err := s.VerifyCode(ctx, "ana@utec.edu.pe", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := s.CompleteOnboarding(ctx, domain.OnboardingData{FirstName: "Ana", CareerInterests: []string{"data"}}); err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	if got := s.State().Status(); got != StatusAuthenticatedComplete {
		t.Fatalf("status=%s", got)
	}

	// new process: same storage, server unreachable
	restarted := NewSession(&fakeAuth{}, &fakeProfiles{meErr: serverErr(0, transport.MsgNetwork)}, secure, nil)
	restarted.LoadUser(ctx)
	st := restarted.State()
	if !st.IsAuthenticated || st.User == nil || !st.User.OnboardingCompleted {
		t.Fatalf("restored state=%+v", st)
	}
}

func TestCompleteOnboardingFailurePreservesState(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{
		verifyResp: &api.AuthResponse{Token: "tok", User: &domain.User{ID: "u1"}},
		onboardErr: serverErr(400, "Faltan campos"),
	}
	s := NewSession(auth, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	_ = s.VerifyCode(ctx, "a@utec.edu.pe", "1")
	before := s.State()
	if err := s.CompleteOnboarding(ctx, domain.OnboardingData{}); err == nil {
		t.Fatalf("expected error")
	}
	after := s.State()
	if after.User != before.User || after.Status() != StatusAuthenticatedIncomplete || after.Error != "Faltan campos" {
		t.Fatalf("after=%+v", after)
	}
}

func TestUpdateProfileRefetchesAndPersists(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1", Bio: "old"})
	profiles := &fakeProfiles{meErr: errors.New("offline")}
	s := NewSession(&fakeAuth{}, profiles, secure, nil)
	s.LoadUser(ctx)

	profiles.meErr = nil
	profiles.me = &api.MeResponse{User: &domain.User{ID: "u1", Bio: "new"}, Profile: &domain.Profile{Points: 5}}
	bio := "new"
	if err := s.UpdateProfile(ctx, domain.ProfilePatch{Bio: &bio}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if profiles.lastPatch.Bio == nil || *profiles.lastPatch.Bio != "new" {
		t.Fatalf("patch not sent")
	}
	if s.State().User.Bio != "new" || s.State().Profile.Points != 5 {
		t.Fatalf("state=%+v", s.State())
	}
	raw, _ := secure.Get(ctx, securestore.KeyUserData)
	var u domain.User
	_ = json.Unmarshal([]byte(raw), &u)
	if u.Bio != "new" {
		t.Fatalf("stored bio=%q", u.Bio)
	}
}

func TestUpdateProfileFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1", Bio: "old"})
	profiles := &fakeProfiles{meErr: errors.New("offline")}
	s := NewSession(&fakeAuth{}, profiles, secure, nil)
	s.LoadUser(ctx)
	before := s.State().User

	profiles.patchErr = serverErr(400, "Bio demasiado larga")
	if err := s.UpdateProfile(ctx, domain.ProfilePatch{}); err == nil {
		t.Fatalf("expected error")
	}
	if s.State().User != before || s.State().Error != "Bio demasiado larga" {
		t.Fatalf("state=%+v", s.State())
	}
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	secure := securestore.NewMemoryStore()
	seedCredentials(t, secure, "tok", &domain.User{ID: "u1"})
	auth := &fakeAuth{logoutErr: serverErr(500, transport.MsgServer)}
	s := NewSession(auth, &fakeProfiles{meErr: errors.New("offline")}, secure, nil)
	s.LoadUser(ctx)

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth.logoutCalls != 1 {
		t.Fatalf("remote logout calls=%d", auth.logoutCalls)
	}
	if s.State().IsAuthenticated || s.State().User != nil {
		t.Fatalf("state=%+v", s.State())
	}
	for _, k := range securestore.CredentialKeys {
		if _, ok, _ := securestore.Lookup(ctx, secure, k); ok {
			t.Fatalf("%s still stored", k)
		}
	}
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	s := NewSession(&fakeAuth{}, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	var seen []Status
	unsub := s.Subscribe(func(st SessionState) { seen = append(seen, st.Status()) })
	_ = s.SendVerificationCode(context.Background(), "a@utec.edu.pe")
	unsub()
	s.ClearError()
	if len(seen) != 2 || seen[1] != StatusVerifying {
		t.Fatalf("seen=%v", seen)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Token: tok, User: &domain.User{ID: "u1"}}}
	s := NewSession(auth, &fakeProfiles{}, securestore.NewMemoryStore(), nil)
	if _, ok := s.TokenExpiry(); ok {
		t.Fatalf("expiry without token")
	}
	_ = s.VerifyCode(context.Background(), "a@utec.edu.pe", "1")
	got, ok := s.TokenExpiry()
	if !ok || !got.Equal(exp) {
		t.Fatalf("expiry=%v ok=%v want %v", got, ok, exp)
	}
}

func TestCredentialsClearedResetsWithoutStorage(t *testing.T) {
	secure := &countingStore{MemoryStore: securestore.NewMemoryStore()}
	auth := &fakeAuth{verifyResp: &api.AuthResponse{Token: "tok", User: &domain.User{ID: "u1"}}}
	s := NewSession(auth, &fakeProfiles{}, secure, nil)
	_ = s.VerifyCode(context.Background(), "a@utec.edu.pe", "1")
	s.CredentialsCleared()
	if s.State().IsAuthenticated {
		t.Fatalf("still authenticated")
	}
	if secure.deletes != 0 {
		t.Fatalf("storage touched")
	}
}
