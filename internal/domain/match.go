package domain

import (
	"fmt"
	"time"
)

type MatchType string

const (
	MatchMentor           MatchType = "MENTOR"
	MatchPeer             MatchType = "PEER"
	MatchVocationalBridge MatchType = "VOCATIONAL_BRIDGE"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchMentor, MatchPeer, MatchVocationalBridge:
		return true
	}
	return false
}

type MentorStats struct {
	SuccessRate   float64 `json:"successRate"`
	AvgRating     float64 `json:"avgRating"`
	TotalSessions int     `json:"totalSessions"`
}

// Candidate is a prospective match in the discovery queue. Keyed by ID, which
// is never a match id.
type Candidate struct {
	ID                 string       `json:"id"`
	User               UserSummary  `json:"user"`
	CompatibilityScore float64      `json:"compatibilityScore"`
	MatchType          MatchType    `json:"matchType"`
	MatchReasons       []string     `json:"matchReasons"`
	CommonInterests    []string     `json:"commonInterests"`
	MentorStats        *MentorStats `json:"mentorStats,omitempty"`
}

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchAccepted  MatchStatus = "accepted"
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
	MatchRejected  MatchStatus = "rejected"
)

var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchPending:  {MatchAccepted, MatchActive, MatchRejected},
	MatchAccepted: {MatchActive, MatchRejected},
	MatchActive:   {MatchCompleted},
}

func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchRejected
}

// CanTransition reports whether the forward-only match lifecycle allows s -> to.
func (s MatchStatus) CanTransition(to MatchStatus) bool {
	for _, next := range matchTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type MessagePreview struct {
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
	IsRead  bool      `json:"isRead"`
}

type SessionSummary struct {
	ID          string    `json:"id"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Duration    int       `json:"duration"`
}

type MatchStats struct {
	TotalSessions int `json:"totalSessions"`
	TotalMessages int `json:"totalMessages"`
}

type Match struct {
	ID                 string          `json:"id"`
	Status             MatchStatus     `json:"status"`
	MatchType          MatchType       `json:"matchType"`
	CompatibilityScore float64         `json:"compatibilityScore"`
	CreatedAt          time.Time       `json:"createdAt"`
	AcceptedAt         *time.Time      `json:"acceptedAt,omitempty"`
	OtherUser          UserSummary     `json:"otherUser"`
	LastMessage        *MessagePreview `json:"lastMessage,omitempty"`
	UpcomingSession    *SessionSummary `json:"upcomingSession,omitempty"`
	Stats              *MatchStats     `json:"stats,omitempty"`
}

// WithStatus returns a shallow copy of m carrying the new status. The
// receiver is left untouched.
func (m *Match) WithStatus(to MatchStatus) (*Match, error) {
	if !m.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: match %s %s -> %s", ErrInvalidTransition, m.ID, m.Status, to)
	}
	cp := *m
	cp.Status = to
	return &cp, nil
}

type ResponseAction string

const (
	ActionAccept ResponseAction = "accept"
	ActionReject ResponseAction = "reject"
)

func (a ResponseAction) Valid() bool {
	return a == ActionAccept || a == ActionReject
}

// ResultingStatus is the local status a confirmed response moves a match to.
func (a ResponseAction) ResultingStatus() MatchStatus {
	if a == ActionAccept {
		return MatchActive
	}
	return MatchRejected
}
