package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
)

// NotifyContext is cancelled on the first SIGINT or SIGTERM. A second signal
// exits the process immediately.
func NotifyContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			if log != nil {
				log.Info("shutdown signal received", "signal", sig.String())
			}
			cancel()
		case <-ctx.Done():
			signal.Stop(ch)
			return
		}
		select {
		case <-ch:
			os.Exit(130)
		case <-parent.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
