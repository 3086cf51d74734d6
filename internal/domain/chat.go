package domain

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageText           MessageType = "text"
	MessageCalendarInvite MessageType = "calendar_invite"
	MessageResource       MessageType = "resource"
	MessageSystem         MessageType = "system"
)

type Message struct {
	ID          string          `json:"id"`
	MatchID     string          `json:"matchId"`
	SenderID    string          `json:"senderId"`
	Content     string          `json:"content"`
	MessageType MessageType     `json:"messageType"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	IsRead      bool            `json:"isRead"`
}
