package domain

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

func (s SessionStatus) CanTransition(to SessionStatus) bool {
	return s == SessionScheduled && to.Terminal()
}

type SessionMatch struct {
	ID        string      `json:"id"`
	OtherUser UserSummary `json:"otherUser"`
}

type Session struct {
	ID                    string        `json:"id"`
	MatchID               string        `json:"matchId"`
	ScheduledAt           time.Time     `json:"scheduledAt"`
	Duration              int           `json:"duration"`
	Title                 string        `json:"title"`
	Description           string        `json:"description,omitempty"`
	Status                SessionStatus `json:"status"`
	GoogleCalendarEventID string        `json:"googleCalendarEventId,omitempty"`
	CalendarLink          string        `json:"calendarLink,omitempty"`
	MeetingLink           string        `json:"meetingLink,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	CompletedAt           *time.Time    `json:"completedAt,omitempty"`
	CancelledAt           *time.Time    `json:"cancelledAt,omitempty"`
	Rating                *int          `json:"rating,omitempty"`
	Feedback              string        `json:"feedback,omitempty"`
	Match                 *SessionMatch `json:"match,omitempty"`
}

// EndsAt is the scheduled end of the meeting.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.Duration) * time.Minute)
}

type NewSession struct {
	MatchID                   string    `json:"matchId"`
	ScheduledAt               time.Time `json:"scheduledAt"`
	Duration                  int       `json:"duration"`
	Title                     string    `json:"title"`
	Description               string    `json:"description,omitempty"`
	CreateGoogleCalendarEvent bool      `json:"createGoogleCalendarEvent,omitempty"`
}

type SessionFeedback struct {
	Rating        int      `json:"rating"`
	Feedback      string   `json:"feedback,omitempty"`
	TopicsCovered []string `json:"topicsCovered,omitempty"`
	WasHelpful    *bool    `json:"wasHelpful,omitempty"`
}
