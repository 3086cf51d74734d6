package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifyNewMatch         NotificationType = "new_match"
	NotifyNewMessage       NotificationType = "new_message"
	NotifySessionReminder  NotificationType = "session_reminder"
	NotifyBadgeUnlocked    NotificationType = "badge_unlocked"
	NotifyLevelUp          NotificationType = "level_up"
	NotifySessionCompleted NotificationType = "session_completed"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Data      json.RawMessage  `json:"data,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
