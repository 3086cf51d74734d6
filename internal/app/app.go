// Package app is the application-state container. It is built once from
// configuration and owns every long-lived client component.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/api"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/chat"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/config"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/observability"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/notify"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/store"
)

var ErrNotAuthenticated = errors.New("not signed in")

type App struct {
	Log     *logger.Logger
	Cfg     *config.Config
	Secure  securestore.Store
	Metrics *observability.Metrics
	Clients Clients
	API     *api.Client
	Session *store.Session
	Matches *store.Matches

	cleared      notify.Registry[struct{}]
	unsubscribe  func()
	shutdownOTel func(context.Context) error
}

// New wires the container. Callers must call Close.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if log == nil {
		log = logger.Nop()
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     Version,
	})
	metrics := observability.NewMetrics()

	clients, err := wireClients(ctx, cfg, log, metrics)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	apiClient := api.New(clients.Transport)
	a := &App{
		Log:          log,
		Cfg:          cfg,
		Secure:       clients.Secure,
		Metrics:      metrics,
		Clients:      clients,
		API:          apiClient,
		Session:      store.NewSession(apiClient.Auth, apiClient.Users, clients.Secure, log),
		Matches:      store.NewMatches(apiClient.Matching, log),
		shutdownOTel: shutdown,
	}
	a.unsubscribe = clients.Transport.OnCredentialsCleared(a.credentialsCleared)
	return a, nil
}

// Version is stamped into telemetry resources.
var Version = "dev"

func (a *App) credentialsCleared() {
	a.Session.CredentialsCleared()
	a.Matches.Reset()
	a.cleared.Notify(struct{}{})
}

// OnCredentialsCleared registers fn to run after the server rejected the
// stored token. Stores have already been reset when fn runs.
func (a *App) OnCredentialsCleared(fn func()) func() {
	return a.cleared.Add(func(struct{}) { fn() })
}

// RequestCode checks the institutional domain locally and only then asks
// the server to send a code.
func (a *App) RequestCode(ctx context.Context, email string) error {
	if err := domain.ValidateInstitutionalEmail(email, a.Cfg.Auth.EmailSuffix); err != nil {
		return apierr.Validation(err.Error(), err)
	}
	return a.Session.SendVerificationCode(ctx, email)
}

// Warmup fetches the candidate queue and the match list concurrently. Fetch
// failures land in the match store's error slot.
func (a *App) Warmup(ctx context.Context) error {
	if !a.Session.State().IsAuthenticated {
		return ErrNotAuthenticated
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Matches.FetchCandidates(gctx)
		return nil
	})
	g.Go(func() error {
		a.Matches.FetchMatches(gctx, api.MatchFilterAll)
		return nil
	})
	return g.Wait()
}

// OpenChat builds a polling conversation for matchID. Run it with a context
// that is cancelled when the chat closes.
func (a *App) OpenChat(matchID string) (*chat.Conversation, error) {
	st := a.Session.State()
	if !st.IsAuthenticated || st.User == nil {
		return nil, ErrNotAuthenticated
	}
	if matchID == "" {
		return nil, fmt.Errorf("app: match id required")
	}
	feed := chat.NewPollingFeed(a.API.Chat, chat.PollOptions{
		Interval: a.Cfg.Chat.PollInterval.Duration,
		PageSize: a.Cfg.Chat.PageSize,
		Logger:   a.Log,
		Metrics:  a.Metrics,
	})
	return chat.NewConversation(matchID, st.User.ID, a.API.Chat, feed, a.Log), nil
}

// ServeMetrics exposes Prometheus metrics on the configured address until
// ctx is done. It is a no-op without an address.
func (a *App) ServeMetrics(ctx context.Context) error {
	if a.Cfg.Telemetry.MetricsAddr == "" {
		return nil
	}
	return a.Metrics.Serve(ctx, a.Cfg.Telemetry.MetricsAddr, a.Log)
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	var errs []error
	if a.Secure != nil {
		errs = append(errs, a.Secure.Close())
	}
	if a.shutdownOTel != nil {
		errs = append(errs, a.shutdownOTel(ctx))
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
