package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// pushNotification queues a notification for userID. Callers hold s.mu.
func (s *Server) pushNotification(userID string, kind domain.NotificationType, title, body string, data any) {
	n := &domain.Notification{
		ID:        newID(),
		Type:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.opts.Now(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = raw
		}
	}
	s.notifications[userID] = append(s.notifications[userID], n)
}

func (s *Server) listNotifications(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	unreadOnly := c.Query("unreadOnly") == "true"
	uid := currentUser(c)

	s.mu.Lock()
	all := s.notifications[uid]
	out := make([]*domain.Notification, 0, limit)
	unread := 0
	for i := len(all) - 1; i >= 0; i-- {
		n := all[i]
		if !n.IsRead {
			unread++
		}
		if (unreadOnly && n.IsRead) || len(out) >= limit {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	s.mu.Unlock()

	respondOK(c, gin.H{"notifications": out, "unreadCount": unread})
}

func (s *Server) readNotification(c *gin.Context) {
	s.mu.Lock()
	n := s.findNotification(currentUser(c), c.Param("id"))
	if n != nil {
		n.IsRead = true
	}
	s.mu.Unlock()
	if n == nil {
		respondError(c, http.StatusNotFound, "not_found", errors.New("Notification not found"))
		return
	}
	respondOK(c, gin.H{"success": true})
}

func (s *Server) readAllNotifications(c *gin.Context) {
	s.mu.Lock()
	marked := 0
	for _, n := range s.notifications[currentUser(c)] {
		if !n.IsRead {
			n.IsRead = true
			marked++
		}
	}
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true, "data": gin.H{"markedAsRead": marked}})
}

func (s *Server) deleteNotification(c *gin.Context) {
	uid := currentUser(c)
	id := c.Param("id")
	s.mu.Lock()
	list := s.notifications[uid]
	found := false
	for i, n := range list {
		if n.ID == id {
			s.notifications[uid] = append(list[:i:i], list[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		respondError(c, http.StatusNotFound, "not_found", errors.New("Notification not found"))
		return
	}
	respondOK(c, gin.H{"success": true})
}

// findNotification returns the caller's notification by id. Callers hold s.mu.
func (s *Server) findNotification(userID, id string) *domain.Notification {
	for _, n := range s.notifications[userID] {
		if n.ID == id {
			return n
		}
	}
	return nil
}
