package api

import (
	"encoding/json"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// Response is the generic {success, data, message, error} envelope.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty is used for endpoints whose data payload the client ignores.
type Empty = Response[json.RawMessage]

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type OnboardingResponse struct {
	Success bool            `json:"success"`
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile"`
}

type MeResponse struct {
	User    *domain.User      `json:"user"`
	Profile *domain.Profile   `json:"profile,omitempty"`
	Stats   *domain.UserStats `json:"stats,omitempty"`
}

type UserPayload struct {
	User *domain.User `json:"user"`
}

type ImagePayload struct {
	ImageURL string `json:"imageUrl"`
}

type GradesPayload struct {
	GradesAdded int     `json:"gradesAdded"`
	GPA         float64 `json:"gpa"`
	RiskScore   float64 `json:"riskScore"`
}

type CandidatesResponse struct {
	Candidates []*domain.Candidate `json:"candidates"`
	Pagination *Pagination         `json:"pagination,omitempty"`
}

type MatchCounts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

type MatchesResponse struct {
	Matches []*domain.Match `json:"matches"`
	Counts  *MatchCounts    `json:"counts,omitempty"`
}

type MatchRequestResponse struct {
	Success bool          `json:"success"`
	Match   *domain.Match `json:"match"`
	Message string        `json:"message"`
}

type MatchRespondResponse struct {
	Success      bool          `json:"success"`
	Match        *domain.Match `json:"match"`
	PointsEarned *int          `json:"pointsEarned,omitempty"`
	Message      string        `json:"message"`
}

type MessagesResponse struct {
	Messages   []*domain.Message `json:"messages"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

type MessagePayload struct {
	Message *domain.Message `json:"message"`
}

type SessionCreateResponse struct {
	Success    bool            `json:"success"`
	Session    *domain.Session `json:"session"`
	EmailsSent []string        `json:"emailsSent"`
}

type SessionStats struct {
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type SessionsResponse struct {
	Sessions []*domain.Session `json:"sessions"`
	Stats    *SessionStats     `json:"stats,omitempty"`
}

type SessionCompleteResponse struct {
	Success        bool            `json:"success"`
	Session        *domain.Session `json:"session"`
	PointsEarned   int             `json:"pointsEarned"`
	NewLevel       *int            `json:"newLevel,omitempty"`
	BadgesUnlocked []domain.Badge  `json:"badgesUnlocked"`
}

type SessionPayload struct {
	Session *domain.Session `json:"session"`
}

type FeedResponse struct {
	Resources  []*domain.FeedResource `json:"resources"`
	Pagination *Pagination            `json:"pagination,omitempty"`
}

type ResourcePayload struct {
	Resource     *domain.FeedResource `json:"resource"`
	PointsEarned int                  `json:"pointsEarned"`
}

type LikePayload struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"totalLikes"`
}

type LeaderboardResponse struct {
	Leaderboard       []domain.LeaderboardEntry `json:"leaderboard"`
	MyRank            int                       `json:"myRank"`
	TotalParticipants int                       `json:"totalParticipants"`
}

type PointsHistoryResponse struct {
	Transactions []domain.PointTransaction `json:"transactions"`
	TotalPoints  int                       `json:"totalPoints"`
	TotalEarned  int                       `json:"totalEarned"`
	TotalSpent   int                       `json:"totalSpent"`
}

type NotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

type MarkedPayload struct {
	MarkedAsRead int `json:"markedAsRead"`
}
