package mockapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// participantMatch resolves :id for the caller. Callers hold s.mu.
func (s *Server) participantMatch(c *gin.Context) (*matchRecord, bool) {
	uid := currentUser(c)
	m, ok := s.matches[c.Param("id")]
	if !ok || (m.requesterID != uid && m.targetID != uid) {
		return nil, false
	}
	return m, true
}

func (s *Server) listMessages(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	before := c.Query("before")

	s.mu.Lock()
	m, ok := s.participantMatch(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Match not found"))
		return
	}
	all := s.messages[m.id]
	end := len(all)
	if before != "" {
		for i, msg := range all {
			if msg.ID == before {
				end = i
				break
			}
		}
	}
	// Newest first, copies so readers never share state with the store.
	out := make([]*domain.Message, 0, limit)
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	total := len(all)
	s.mu.Unlock()

	respondOK(c, gin.H{
		"messages":   out,
		"pagination": gin.H{"total": total, "limit": limit, "hasMore": end > len(out)},
	})
}

func (s *Server) sendMessage(c *gin.Context) {
	var req struct {
		Content     string             `json:"content"`
		MessageType domain.MessageType `json:"messageType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := domain.ValidateMessage(req.Content); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_message", err)
		return
	}
	if req.MessageType == "" {
		req.MessageType = domain.MessageText
	}
	uid := currentUser(c)

	s.mu.Lock()
	m, ok := s.participantMatch(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Match not found"))
		return
	}
	if m.status != domain.MatchActive && m.status != domain.MatchAccepted {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "match_inactive", errors.New("Match is not active"))
		return
	}
	msg := &domain.Message{
		ID:          newID(),
		MatchID:     m.id,
		SenderID:    uid,
		Content:     req.Content,
		MessageType: req.MessageType,
		CreatedAt:   s.opts.Now(),
	}
	s.messages[m.id] = append(s.messages[m.id], msg)
	other := m.targetID
	if other == uid {
		other = m.requesterID
	}
	s.pushNotification(other, domain.NotifyNewMessage, "New message", s.users[uid].user.FullName(), gin.H{"matchId": m.id})
	out := *msg
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "data": gin.H{"message": out}})
}

func (s *Server) markRead(c *gin.Context) {
	var req struct {
		MessageIDs []string `json:"messageIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ids := make(map[string]bool, len(req.MessageIDs))
	for _, id := range req.MessageIDs {
		ids[id] = true
	}
	uid := currentUser(c)

	s.mu.Lock()
	m, ok := s.participantMatch(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Match not found"))
		return
	}
	marked := 0
	for _, msg := range s.messages[m.id] {
		// Only the recipient can mark a message read.
		if ids[msg.ID] && msg.SenderID != uid && !msg.IsRead {
			msg.IsRead = true
			marked++
		}
	}
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true, "data": gin.H{"markedAsRead": marked}})
}
