package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/chat"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/config"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/mockapi"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Env:     "test",
		API:     config.APIConfig{BaseURL: baseURL, Timeout: config.Duration{Duration: 5 * time.Second}},
		Storage: config.StorageConfig{Backend: securestore.BackendMemory},
		Chat: config.ChatConfig{
			PollInterval: config.Duration{Duration: 20 * time.Millisecond},
			PageSize:     50,
		},
		Auth:      config.AuthConfig{EmailSuffix: domain.DefaultEmailSuffix},
		Telemetry: config.TelemetryConfig{ServiceName: "connectu-test"},
	}
}

func newTestApp(t *testing.T) (*App, *mockapi.Server) {
	t.Helper()
	srv := mockapi.New(mockapi.Options{})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	a, err := New(context.Background(), testConfig(hs.URL+"/api"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, srv
}

func signIn(t *testing.T, a *App, email string) {
	t.Helper()
	ctx := context.Background()
	if err := a.RequestCode(ctx, email); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if err := a.Session.VerifyCode(ctx, email, mockapi.DefaultCode); err != nil {
		t.Fatalf("verify: %v", err)
	}
	err := a.Session.CompleteOnboarding(ctx, domain.OnboardingData{
		FirstName:       "Ana",
		Career:          "Computer Science",
		Semester:        1,
		CareerInterests: []string{"software"},
		Weaknesses:      []string{"calculus"},
	})
	if err != nil {
		t.Fatalf("onboarding: %v", err)
	}
}

func TestRequestCodeValidatesBeforeSending(t *testing.T) {
	a, srv := newTestApp(t)
	ctx := context.Background()

	err := a.RequestCode(ctx, "user@not-edu.com")
	if !apierr.IsKind(err, apierr.KindValidation) || !errors.Is(err, domain.ErrInstitutionalEmail) {
		t.Fatalf("expected institutional validation error, got %v", err)
	}
	if n := srv.Calls(http.MethodPost, "/auth/send-verification"); n != 0 {
		t.Fatalf("rejected address reached the server %d times", n)
	}

	if err := a.RequestCode(ctx, "user@utec.edu.pe"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if n := srv.Calls(http.MethodPost, "/auth/send-verification"); n != 1 {
		t.Fatalf("calls = %d", n)
	}
	if got := a.Session.State().Status(); got != store.StatusVerifying {
		t.Fatalf("status = %s", got)
	}
}

func TestSignInPersistsAcrossRestart(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a, "ana@utec.edu.pe")
	if got := a.Session.State().Status(); got != store.StatusAuthenticatedComplete {
		t.Fatalf("status = %s", got)
	}

	// A second session store over the same secure store restores the user.
	restored := store.NewSession(a.API.Auth, a.API.Users, a.Secure, nil)
	restored.LoadUser(context.Background())
	st := restored.State()
	if !st.IsAuthenticated || st.User == nil || !st.User.OnboardingCompleted {
		t.Fatalf("unexpected restored state %+v", st)
	}
}

func TestWarmupRequiresSession(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Warmup(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := a.OpenChat("m1"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestWarmupLoadsQueueAndMatches(t *testing.T) {
	a, srv := newTestApp(t)
	ids := srv.SeedDemo()
	signIn(t, a, "ana@utec.edu.pe")
	ctx := context.Background()

	if err := a.Warmup(ctx); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	st := a.Matches.State()
	if len(st.Candidates) != len(ids) || st.CurrentIndex != 0 || st.Error != "" {
		t.Fatalf("unexpected match state %+v", st)
	}
	if st.IsLoading || st.IsLoadingMatches {
		t.Fatalf("loading flags left set")
	}

	first := st.Current().ID
	if _, err := a.Matches.SwipeRight(ctx, first, "Hola"); err != nil {
		t.Fatalf("swipe right: %v", err)
	}
	st = a.Matches.State()
	if len(st.Candidates) != len(ids)-1 || len(st.Matches) != 1 || st.Matches[0].Status != domain.MatchPending {
		t.Fatalf("unexpected state after swipe %+v", st)
	}
}

func TestCredentialsClearedResetsStores(t *testing.T) {
	a, srv := newTestApp(t)
	srv.SeedDemo()
	signIn(t, a, "ana@utec.edu.pe")
	ctx := context.Background()
	if err := a.Warmup(ctx); err != nil {
		t.Fatalf("warmup: %v", err)
	}

	var fired atomic.Int32
	a.OnCredentialsCleared(func() { fired.Add(1) })
	srv.RevokeAll()

	a.Matches.FetchCandidates(ctx)
	if fired.Load() != 1 {
		t.Fatalf("listener fired %d times", fired.Load())
	}
	if st := a.Session.State(); st.IsAuthenticated || st.Status() != store.StatusUnauthenticated {
		t.Fatalf("session should be signed out: %+v", st)
	}
	if st := a.Matches.State(); len(st.Candidates) != 0 || len(st.Matches) != 0 {
		t.Fatalf("match store should be reset: %+v", st)
	}
	for _, key := range securestore.CredentialKeys {
		if _, ok, _ := securestore.Lookup(ctx, a.Secure, key); ok {
			t.Fatalf("%s survived a 401", key)
		}
	}
}

func TestOpenChatPollsAndSends(t *testing.T) {
	a, srv := newTestApp(t)
	mentorID := srv.AddUser(mockapi.SeedUser{Email: "mentor@utec.edu.pe", FirstName: "María", Semester: 8})
	signIn(t, a, "ana@utec.edu.pe")
	ctx := context.Background()

	req, err := a.API.Matching.RequestMatch(ctx, mentorID, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	token, _ := srv.TokenFor(mentorID)
	mentorApp, err := New(ctx, testConfig(a.Cfg.API.BaseURL), nil)
	if err != nil {
		t.Fatalf("mentor app: %v", err)
	}
	defer mentorApp.Close(ctx)
	_ = mentorApp.Secure.Set(ctx, securestore.KeyAuthToken, token)
	if _, err := mentorApp.API.Matching.RespondToMatch(ctx, req.Match.ID, domain.ActionAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := mentorApp.API.Chat.SendMessage(ctx, req.Match.ID, "Bienvenida", ""); err != nil {
		t.Fatalf("mentor send: %v", err)
	}

	conv, err := a.OpenChat(req.Match.ID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- conv.Run(runCtx) }()

	waitForMessages(t, conv, "Bienvenida")
	if _, err := conv.Send(ctx, "Gracias"); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitForMessages(t, conv, "Bienvenida", "Gracias")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("conversation did not stop after cancel")
	}

	// The mentor's message was marked read by the poll.
	page, err := mentorApp.API.Chat.GetMessages(ctx, req.Match.ID, 0, "")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	for _, m := range page.Messages {
		if m.SenderID == mentorID && !m.IsRead {
			t.Fatalf("mentor message still unread")
		}
	}
}

func waitForMessages(t *testing.T, conv *chat.Conversation, want ...string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := conv.Snapshot().Messages
		if sameContents(got, want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("messages = %+v, want %v", got, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func sameContents(msgs []*domain.Message, want []string) bool {
	if len(msgs) != len(want) {
		return false
	}
	for i, m := range msgs {
		if m.Content != want[i] {
			return false
		}
	}
	return true
}
