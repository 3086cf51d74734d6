package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

const (
	DefaultLeaderboardTimeframe = "monthly"
	DefaultLeaderboardCategory  = "points"
	DefaultLeaderboardLimit     = 50
	DefaultPointsHistoryLimit   = 50
)

type GamificationAPI struct{ t Doer }

func (g *GamificationAPI) MyProgress(ctx context.Context) (*domain.GamificationData, error) {
	var out domain.GamificationData
	if err := g.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/gamification/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GamificationAPI) Leaderboard(ctx context.Context, timeframe string, limit int, category string) (*LeaderboardResponse, error) {
	if timeframe == "" {
		timeframe = DefaultLeaderboardTimeframe
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if category == "" {
		category = DefaultLeaderboardCategory
	}
	var out LeaderboardResponse
	err := g.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/gamification/leaderboard",
		Query:  url.Values{"timeframe": {timeframe}, "limit": {strconv.Itoa(limit)}, "category": {category}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Certificate downloads the certificate document as raw bytes.
func (g *GamificationAPI) Certificate(ctx context.Context, certificateType string) ([]byte, error) {
	return g.t.DoRaw(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/gamification/certificates/" + escape(certificateType),
		Route:  "/gamification/certificates/:type",
	})
}

func (g *GamificationAPI) PointsHistory(ctx context.Context, limit int) (*PointsHistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultPointsHistoryLimit
	}
	var out PointsHistoryResponse
	err := g.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/gamification/points/history",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
