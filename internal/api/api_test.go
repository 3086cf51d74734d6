package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

// recordingDoer captures every request and answers with a canned body.
type recordingDoer struct {
	reqs []transport.Request
	body string
	err  error
}

func (d *recordingDoer) Do(ctx context.Context, req transport.Request, out any) error {
	raw, err := d.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (d *recordingDoer) DoRaw(ctx context.Context, req transport.Request) ([]byte, error) {
	d.reqs = append(d.reqs, req)
	if d.err != nil {
		return nil, d.err
	}
	if d.body == "" {
		return nil, nil
	}
	return []byte(d.body), nil
}

func (d *recordingDoer) last(t *testing.T) transport.Request {
	t.Helper()
	if len(d.reqs) == 0 {
		t.Fatalf("no request recorded")
	}
	return d.reqs[len(d.reqs)-1]
}

func TestQueryDefaults(t *testing.T) {
	ctx := context.Background()
	d := &recordingDoer{body: `{}`}
	c := New(d)

	cases := []struct {
		name string
		call func() error
		path string
		want map[string]string
	}{
		{"candidates", func() error { _, err := c.Matching.GetCandidates(ctx, 0, 0); return err },
			"/matches/candidates", map[string]string{"limit": "20", "offset": "0"}},
		{"my matches", func() error { _, err := c.Matching.GetMyMatches(ctx, "", ""); return err },
			"/matches/my-matches", map[string]string{"status": "all", "role": "all"}},
		{"messages", func() error { _, err := c.Chat.GetMessages(ctx, "m1", 0, ""); return err },
			"/matches/m1/messages", map[string]string{"limit": "50"}},
		{"sessions", func() error { _, err := c.Sessions.List(ctx, "", 0, ""); return err },
			"/sessions", map[string]string{"status": "upcoming", "limit": "10"}},
		{"feed", func() error { _, err := c.Feed.List(ctx, FeedQuery{}); return err },
			"/feed", map[string]string{"limit": "20", "offset": "0"}},
		{"leaderboard", func() error { _, err := c.Gamification.Leaderboard(ctx, "", 0, ""); return err },
			"/gamification/leaderboard", map[string]string{"timeframe": "monthly", "limit": "50", "category": "points"}},
		{"points history", func() error { _, err := c.Gamification.PointsHistory(ctx, 0); return err },
			"/gamification/points/history", map[string]string{"limit": "50"}},
		{"notifications", func() error { _, err := c.Notifications.List(ctx, 0, false); return err },
			"/notifications", map[string]string{"limit": "20", "unreadOnly": "false"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			req := d.last(t)
			if req.Method != http.MethodGet || req.Path != tc.path {
				t.Fatalf("got %s %s", req.Method, req.Path)
			}
			if len(req.Query) != len(tc.want) {
				t.Fatalf("query=%v", req.Query)
			}
			for k, v := range tc.want {
				if req.Query.Get(k) != v {
					t.Fatalf("%s=%q want %q", k, req.Query.Get(k), v)
				}
			}
		})
	}
}

func TestOptionalQueryParams(t *testing.T) {
	ctx := context.Background()
	d := &recordingDoer{body: `{}`}
	c := New(d)

	if _, err := c.Chat.GetMessages(ctx, "m1", 10, "msg-9"); err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if got := d.last(t).Query.Get("before"); got != "msg-9" {
		t.Fatalf("before=%q", got)
	}
	if _, err := c.Sessions.List(ctx, "past", 5, "m1"); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := d.last(t).Query.Get("matchId"); got != "m1" {
		t.Fatalf("matchId=%q", got)
	}
	if _, err := c.Feed.List(ctx, FeedQuery{Tags: []string{"java", "cloud"}, ContentType: domain.ContentTip}); err != nil {
		t.Fatalf("Feed.List: %v", err)
	}
	q := d.last(t).Query
	if q.Get("tags") != "java,cloud" || q.Get("contentType") != "tip" {
		t.Fatalf("feed query=%v", q)
	}
}

func TestSendMessageDefaultsToText(t *testing.T) {
	d := &recordingDoer{body: `{"success":true,"data":{"message":{"id":"x1","content":"hola"}}}`}
	c := New(d)
	msg, err := c.Chat.SendMessage(context.Background(), "m1", "hola", "")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg == nil || msg.ID != "x1" {
		t.Fatalf("msg=%+v", msg)
	}
	raw, _ := json.Marshal(d.last(t).Body)
	if !strings.Contains(string(raw), `"messageType":"text"`) {
		t.Fatalf("body=%s", raw)
	}
	if d.last(t).Route != "/matches/:id/messages" {
		t.Fatalf("route=%q", d.last(t).Route)
	}
}

func TestValidationNeverReachesTransport(t *testing.T) {
	ctx := context.Background()
	d := &recordingDoer{body: `{}`}
	c := New(d)

	long := strings.Repeat("a", domain.MaxBioLength+1)
	checks := []func() error{
		func() error { _, err := c.Chat.SendMessage(ctx, "m1", "   ", ""); return err },
		func() error { _, err := c.Users.UpdateProfile(ctx, domain.ProfilePatch{Bio: &long}); return err },
		func() error {
			_, err := c.Sessions.Create(ctx, domain.NewSession{MatchID: "m1", Duration: 15, ScheduledAt: time.Now()})
			return err
		},
		func() error { _, err := c.Sessions.Complete(ctx, "s1", domain.SessionFeedback{Rating: 6}); return err },
		func() error { _, err := c.Matching.RespondToMatch(ctx, "m1", "maybe", ""); return err },
	}
	for i, check := range checks {
		err := check()
		if !apierr.IsKind(err, apierr.KindValidation) {
			t.Fatalf("check %d: err=%v", i, err)
		}
	}
	if len(d.reqs) != 0 {
		t.Fatalf("requests sent: %d", len(d.reqs))
	}
}

func TestErrorsPropagateUntouched(t *testing.T) {
	want := &apierr.Error{Kind: apierr.KindServer, Status: 500, Message: transport.MsgServer}
	d := &recordingDoer{err: want}
	c := New(d)
	_, err := c.Users.GetMe(context.Background())
	if !errors.Is(err, want) {
		t.Fatalf("err=%v", err)
	}
	if len(d.reqs) != 1 {
		t.Fatalf("retried: %d requests", len(d.reqs))
	}
}

func TestRespondPathAndBody(t *testing.T) {
	d := &recordingDoer{body: `{"success":true,"match":{"id":"m 1","status":"active"},"pointsEarned":50}`}
	c := New(d)
	resp, err := c.Matching.RespondToMatch(context.Background(), "m 1", domain.ActionAccept, "")
	if err != nil {
		t.Fatalf("RespondToMatch: %v", err)
	}
	if resp.Match.Status != domain.MatchActive || resp.PointsEarned == nil || *resp.PointsEarned != 50 {
		t.Fatalf("resp=%+v", resp)
	}
	req := d.last(t)
	if req.Path != "/matches/m%201/respond" {
		t.Fatalf("path=%q", req.Path)
	}
	raw, _ := json.Marshal(req.Body)
	if string(raw) != `{"action":"accept"}` {
		t.Fatalf("body=%s", raw)
	}
}

func TestUploadProfileImageIsMultipart(t *testing.T) {
	d := &recordingDoer{body: `{"success":true,"data":{"imageUrl":"https://cdn/x.png"}}`}
	c := New(d)
	resp, err := c.Users.UploadProfileImage(context.Background(), "/tmp/me.png", strings.NewReader("PNGDATA"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.Data.ImageURL != "https://cdn/x.png" {
		t.Fatalf("url=%q", resp.Data.ImageURL)
	}
	req := d.last(t)
	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type=%q", req.ContentType)
	}
	mr := multipart.NewReader(req.RawBody, params["boundary"])
	part, err := mr.NextPart()
	if err != nil {
		t.Fatalf("NextPart: %v", err)
	}
	if part.FormName() != "image" || part.FileName() != "me.png" {
		t.Fatalf("part %s %s", part.FormName(), part.FileName())
	}
	data, _ := io.ReadAll(part)
	if string(data) != "PNGDATA" {
		t.Fatalf("data=%q", data)
	}
}

func TestCertificateReturnsRawBytes(t *testing.T) {
	d := &recordingDoer{body: "%PDF-1.4"}
	c := New(d)
	b, err := c.Gamification.Certificate(context.Background(), "volunteer")
	if err != nil {
		t.Fatalf("Certificate: %v", err)
	}
	if string(b) != "%PDF-1.4" {
		t.Fatalf("bytes=%q", b)
	}
	if d.last(t).Path != "/gamification/certificates/volunteer" {
		t.Fatalf("path=%q", d.last(t).Path)
	}
}

func TestMarkAsReadSkipsEmpty(t *testing.T) {
	d := &recordingDoer{}
	c := New(d)
	if err := c.Chat.MarkAsRead(context.Background(), "m1", nil); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if len(d.reqs) != 0 {
		t.Fatalf("sent %d requests", len(d.reqs))
	}
}
