package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/mockapi"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/envutil"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/shutdown"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envutil.String("MOCK_ADDR", ":3000"), "listen address")
	seed := flag.Bool("seed", envutil.Bool("MOCK_SEED", true), "load demo mentors")
	code := flag.String("code", envutil.String("MOCK_CODE", mockapi.DefaultCode), "verification code every address receives")
	flag.Parse()

	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if logMode == "prod" || logMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := mockapi.New(mockapi.Options{
		Secret:      os.Getenv("MOCK_JWT_SECRET"),
		Code:        *code,
		EmailSuffix: envutil.String("CONNECTU_EMAIL_SUFFIX", ""),
		Logger:      log,
	})
	if *seed {
		ids := srv.SeedDemo()
		log.Info("seeded demo users", "count", len(ids))
	}

	ctx, stop := shutdown.NotifyContext(context.Background(), log)
	defer stop()

	httpSrv := &http.Server{Addr: *addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("mock server listening", "addr", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
