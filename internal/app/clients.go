package app

import (
	"context"
	"fmt"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/config"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/observability"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

type Clients struct {
	Secure    securestore.Store
	Transport *transport.Client
}

func wireClients(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics *observability.Metrics) (Clients, error) {
	log.Debug("Wiring clients...", "storage_backend", cfg.Storage.Backend)

	secure, err := securestore.Open(ctx, securestore.Options{
		Backend:     cfg.Storage.Backend,
		Path:        cfg.Storage.Path,
		Passphrase:  cfg.Storage.Passphrase,
		RedisAddr:   cfg.Storage.RedisAddr,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init secure store: %w", err)
	}

	t, err := transport.New(transport.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout.Duration,
		UserAgent: cfg.API.UserAgent,
		Store:     secure,
		Logger:    log,
		Metrics:   metrics,
	})
	if err != nil {
		_ = secure.Close()
		return Clients{}, fmt.Errorf("init transport: %w", err)
	}
	return Clients{Secure: secure, Transport: t}, nil
}
