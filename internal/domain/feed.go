package domain

import "time"

type ContentType string

const (
	ContentTip          ContentType = "tip"
	ContentVideo        ContentType = "video"
	ContentGuide        ContentType = "guide"
	ContentSuccessStory ContentType = "success_story"
)

type FeedResource struct {
	ID          string      `json:"id"`
	Author      UserSummary `json:"author"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"contentType"`
	Content     string      `json:"content"`
	MediaURL    string      `json:"mediaUrl,omitempty"`
	Tags        []string    `json:"tags"`
	Likes       int         `json:"likes"`
	Views       int         `json:"views"`
	IsLiked     bool        `json:"isLiked"`
	CreatedAt   time.Time   `json:"createdAt"`
}
