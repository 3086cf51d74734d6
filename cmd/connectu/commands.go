package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/app"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/chat"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/format"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/store"
)

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet("connectu "+name, flag.ContinueOnError)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runRequestCode(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("request-code")
	email := fs.String("email", "", "institutional e-mail address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.RequestCode(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintf(out, "Code sent to %s. Run `connectu verify -email %s -code <code>`.\n", *email, *email)
	return nil
}

func runVerify(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("verify")
	email := fs.String("email", "", "address the code was sent to")
	code := fs.String("code", "", "six digit code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Session.VerifyCode(ctx, *email, *code); err != nil {
		return err
	}
	st := a.Session.State()
	fmt.Fprintf(out, "Signed in as %s.\n", st.User.Email)
	if st.Status() == store.StatusAuthenticatedIncomplete {
		fmt.Fprintln(out, "Finish your profile with `connectu onboard`.")
	}
	return nil
}

func runOnboard(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("onboard")
	first := fs.String("first-name", "", "first name")
	last := fs.String("last-name", "", "last name")
	career := fs.String("career", "", "degree programme")
	semester := fs.Int("semester", 1, "current semester")
	university := fs.String("university", "", "university")
	interests := fs.String("interests", "", "comma separated career interests")
	strengths := fs.String("strengths", "", "comma separated strong courses")
	weaknesses := fs.String("weaknesses", "", "comma separated courses you need help with")
	style := fs.String("study-style", "", "visual, practical, theoretical or collaborative")
	if err := fs.Parse(args); err != nil {
		return err
	}
	err := a.Session.CompleteOnboarding(ctx, domain.OnboardingData{
		FirstName:       *first,
		LastName:        *last,
		Career:          *career,
		Semester:        *semester,
		University:      *university,
		CareerInterests: splitList(*interests),
		Strengths:       splitList(*strengths),
		Weaknesses:      splitList(*weaknesses),
		StudyStyle:      domain.StudyStyle(*style),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Profile complete. Try `connectu candidates`.")
	return nil
}

func runMe(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	st := a.Session.State()
	u := st.User
	fmt.Fprintf(out, "[%s] %s <%s>\n", format.Initials(u.FirstName, u.LastName), u.FullName(), u.Email)
	fmt.Fprintf(out, "%s, semester %d\n", u.Career, u.Semester)
	if u.Bio != "" {
		fmt.Fprintln(out, u.Bio)
	}
	if p := st.Profile; p != nil {
		fmt.Fprintln(out, format.Level(p.Points))
		fmt.Fprintf(out, "Academic risk: %s\n", format.Risk(p.RiskScore).Label)
		for _, f := range p.RiskFactors {
			fmt.Fprintf(out, "  - %s (%s): %s\n", f.Description, f.Severity, f.Suggestion)
		}
	}
	if exp, ok := a.Session.TokenExpiry(); ok {
		fmt.Fprintf(out, "Session expires %s\n", format.Relative(exp, time.Now()))
	}
	return nil
}

func runUpdateProfile(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("update-profile")
	bio := fs.String("bio", "", "new bio")
	interests := fs.String("interests", "", "comma separated career interests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var patch domain.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bio":
			patch.Bio = bio
		case "interests":
			patch.CareerInterests = splitList(*interests)
		}
	})
	if err := a.Session.UpdateProfile(ctx, patch); err != nil {
		return err
	}
	fmt.Fprintln(out, "Profile updated.")
	return nil
}

func runCandidates(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	a.Matches.FetchCandidates(ctx)
	st := a.Matches.State()
	if st.Error != "" {
		return errors.New(st.Error)
	}
	if len(st.Candidates) == 0 {
		fmt.Fprintln(out, "No candidates right now.")
		return nil
	}
	for _, c := range st.Candidates {
		fmt.Fprintf(out, "%s  %-24s %-8s %3.0f%%  %s\n",
			c.ID, c.User.FirstName+" "+c.User.LastName, c.MatchType, c.CompatibilityScore,
			format.Truncate(strings.Join(c.MatchReasons, "; "), 60))
	}
	return nil
}

func runSwipe(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("swipe")
	id := fs.String("id", "", "candidate id")
	dir := fs.String("dir", "right", "right to request, left to skip")
	msg := fs.String("message", "", "optional note sent with a request")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.Matches.FetchCandidates(ctx)
	switch *dir {
	case "right":
		resp, err := a.Matches.SwipeRight(ctx, *id, *msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.Message)
	case "left":
		if err := a.Matches.SwipeLeft(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(out, "Skipped.")
	default:
		return fmt.Errorf("dir must be right or left, got %q", *dir)
	}
	return nil
}

func runMatches(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("matches")
	status := fs.String("status", "all", "all, pending, active or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.Matches.FetchMatches(ctx, *status)
	st := a.Matches.State()
	if st.Error != "" {
		return errors.New(st.Error)
	}
	now := time.Now()
	for _, m := range st.Matches {
		line := fmt.Sprintf("%s  %-24s %-9s %s", m.ID, m.OtherUser.FirstName+" "+m.OtherUser.LastName, m.Status, format.Relative(m.CreatedAt, now))
		if m.LastMessage != nil {
			line += "  " + format.Truncate(m.LastMessage.Content, 40)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runRespond(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("respond")
	id := fs.String("id", "", "match id")
	action := fs.String("action", "accept", "accept or reject")
	msg := fs.String("message", "", "optional reply")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.Matches.FetchMatches(ctx, "pending")
	resp, err := a.Matches.RespondToMatch(ctx, *id, domain.ResponseAction(*action), *msg)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, resp.Message)
	if resp.PointsEarned != nil {
		fmt.Fprintf(out, "+%d points\n", *resp.PointsEarned)
	}
	return nil
}

func runChat(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("chat")
	matchID := fs.String("match", "", "match id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	conv, err := a.OpenChat(*matchID)
	if err != nil {
		return err
	}
	self := a.Session.State().User.ID

	var mu sync.Mutex
	printed := map[string]bool{}
	unsubscribe := conv.Subscribe(func(s chat.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		for _, m := range s.Messages {
			if printed[m.ID] {
				continue
			}
			printed[m.ID] = true
			who := "them"
			if m.SenderID == self {
				who = "you"
			}
			fmt.Fprintf(out, "[%s] %s: %s\n", format.MessageTime(m.CreatedAt, now), who, m.Content)
		}
	})
	defer unsubscribe()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if _, err := conv.Send(ctx, text); err != nil {
				fmt.Fprintln(os.Stderr, "send failed:", err)
			}
		}
	}()
	return conv.Run(ctx)
}

func runSessions(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("sessions")
	status := fs.String("status", "upcoming", "upcoming, completed, cancelled or all")
	limit := fs.Int("limit", 10, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := a.API.Sessions.List(ctx, *status, *limit, "")
	if err != nil {
		return err
	}
	for _, s := range resp.Sessions {
		with := ""
		if s.Match != nil {
			with = " with " + s.Match.OtherUser.FirstName
		}
		fmt.Fprintf(out, "%s  %s  %s (%d min)%s\n", s.ID, format.SessionDate(s.ScheduledAt.Local()), s.Title, s.Duration, with)
	}
	return nil
}

func runLeaderboard(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("leaderboard")
	timeframe := fs.String("timeframe", "monthly", "weekly, monthly or all_time")
	category := fs.String("category", "points", "points, sessions or success_rate")
	limit := fs.Int("limit", 10, "rows to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := a.API.Gamification.Leaderboard(ctx, *timeframe, *limit, *category)
	if err != nil {
		return err
	}
	for _, e := range resp.Leaderboard {
		marker := " "
		if e.IsCurrentUser {
			marker = "*"
		}
		fmt.Fprintf(out, "%s%3d  %-24s %8s pts  %d sessions\n", marker, e.Rank, e.User.FirstName+" "+e.User.LastName, format.Count(e.Points), e.Sessions)
	}
	fmt.Fprintf(out, "Your rank: %d of %d\n", resp.MyRank, resp.TotalParticipants)
	return nil
}

func runNotifications(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlags("notifications")
	unread := fs.Bool("unread", false, "only unread")
	markAll := fs.Bool("mark-read", false, "mark everything read after listing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := a.API.Notifications.List(ctx, 0, *unread)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, n := range resp.Notifications {
		dot := " "
		if !n.IsRead {
			dot = "•"
		}
		fmt.Fprintf(out, "%s %-16s %s: %s (%s)\n", dot, n.Type, n.Title, n.Body, format.Relative(n.CreatedAt, now))
	}
	fmt.Fprintf(out, "%d unread\n", resp.UnreadCount)
	if *markAll {
		if _, err := a.API.Notifications.MarkAllRead(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runLogout(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Matches.Reset()
	fmt.Fprintln(out, "Signed out.")
	return nil
}
