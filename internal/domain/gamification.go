package domain

import "time"

type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	EarnedAt    *time.Time `json:"earnedAt,omitempty"`
}

type Certificate struct {
	Type        string `json:"type"`
	Hours       int    `json:"hours"`
	DownloadURL string `json:"downloadUrl"`
}

type NextReward struct {
	Level        int    `json:"level"`
	Description  string `json:"description"`
	PointsNeeded int    `json:"pointsNeeded"`
}

type GamificationStats struct {
	TotalSessions    int     `json:"totalSessions"`
	HoursVolunteered float64 `json:"hoursVolunteered"`
	MenteesHelped    int     `json:"menteesHelped"`
	SuccessRate      float64 `json:"successRate"`
}

type Rewards struct {
	CertificatesAvailable []Certificate `json:"certificatesAvailable"`
	NextReward            *NextReward   `json:"nextReward,omitempty"`
}

type GamificationData struct {
	Level             int               `json:"level"`
	CurrentPoints     int               `json:"currentPoints"`
	PointsToNextLevel int               `json:"pointsToNextLevel"`
	Badges            []Badge           `json:"badges"`
	Stats             GamificationStats `json:"stats"`
	Rewards           Rewards           `json:"rewards"`
}

type LeaderboardEntry struct {
	Rank          int         `json:"rank"`
	User          UserSummary `json:"user"`
	Points        int         `json:"points"`
	Sessions      int         `json:"sessions"`
	SuccessRate   float64     `json:"successRate"`
	IsCurrentUser bool        `json:"isCurrentUser,omitempty"`
}

type PointTransaction struct {
	ID          string    `json:"id"`
	Points      int       `json:"points"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	ReferenceID string    `json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Points awarded by the server per action. Informational only; the client
// never computes balances.
const (
	PointsFirstMatch         = 50
	PointsCompleteSession    = 100
	PointsFiveStarRating     = 50
	PointsMenteePassesCourse = 500
	PointsCreateResource     = 20
	PointsResourceTenLikes   = 30
	PointsDailyLogin         = 10
)

type Level struct {
	Level          int
	PointsRequired int
	Name           string
}

var Levels = []Level{
	{Level: 1, PointsRequired: 0, Name: "Novice"},
	{Level: 2, PointsRequired: 500, Name: "Apprentice"},
	{Level: 3, PointsRequired: 1500, Name: "Junior Mentor"},
	{Level: 4, PointsRequired: 3000, Name: "Senior Mentor"},
	{Level: 5, PointsRequired: 5000, Name: "Expert"},
	{Level: 6, PointsRequired: 10000, Name: "Master"},
}

// LevelFor returns the highest level reached with points, and the next level
// (nil at the top).
func LevelFor(points int) (Level, *Level) {
	cur := Levels[0]
	for i, l := range Levels {
		if points < l.PointsRequired {
			next := Levels[i]
			return cur, &next
		}
		cur = l
	}
	return cur, nil
}
