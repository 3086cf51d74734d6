package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/app"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/config"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/shutdown"
)

type command struct {
	summary string
	// needsSession commands restore the stored session first.
	needsSession bool
	run          func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"request-code":   {"mail a sign-in code to an institutional address", false, runRequestCode},
	"verify":         {"confirm the code and store the session", false, runVerify},
	"onboard":        {"complete the onboarding profile", true, runOnboard},
	"me":             {"show the signed-in profile", true, runMe},
	"update-profile": {"change bio or interests", true, runUpdateProfile},
	"candidates":     {"list suggested matches", true, runCandidates},
	"swipe":          {"request or skip a candidate", true, runSwipe},
	"matches":        {"list your matches", true, runMatches},
	"respond":        {"accept or reject a pending match", true, runRespond},
	"chat":           {"follow a match conversation (Ctrl-C to leave)", true, runChat},
	"sessions":       {"list mentoring sessions", true, runSessions},
	"leaderboard":    {"show the points leaderboard", true, runLeaderboard},
	"notifications":  {"list notifications", true, runNotifications},
	"logout":         {"sign out and forget stored credentials", true, runLogout},
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, cmd, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, cmd command, args []string) error {
	ctx, stop := shutdown.NotifyContext(context.Background(), log)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	a.OnCredentialsCleared(func() {
		fmt.Fprintln(os.Stderr, "Your session expired. Run `connectu request-code` to sign in again.")
	})
	go func() {
		if err := a.ServeMetrics(ctx); err != nil {
			log.Warn("metrics listener stopped", "error", err)
		}
	}()

	if cmd.needsSession {
		a.Session.LoadUser(ctx)
		if !a.Session.State().IsAuthenticated {
			return errors.New("not signed in; run request-code and verify first")
		}
	}
	return cmd.run(ctx, a, args, os.Stdout)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: connectu <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, commands[name].summary)
	}
}
