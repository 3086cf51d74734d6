package mockapi

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// participantSession resolves :id for the caller. Callers hold s.mu.
func (s *Server) participantSession(c *gin.Context) (*domain.Session, *matchRecord, bool) {
	uid := currentUser(c)
	sess, ok := s.sessions[c.Param("id")]
	if !ok {
		return nil, nil, false
	}
	m, ok := s.matches[sess.MatchID]
	if !ok || (m.requesterID != uid && m.targetID != uid) {
		return nil, nil, false
	}
	return sess, m, true
}

func (s *Server) createSession(c *gin.Context) {
	var req domain.NewSession
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := domain.ValidateSessionDuration(req.Duration); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_duration", err)
		return
	}
	if req.Title == "" || req.ScheduledAt.IsZero() {
		respondError(c, http.StatusBadRequest, "missing_fields", errors.New("title and scheduledAt are required"))
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	m, ok := s.matches[req.MatchID]
	if !ok || (m.requesterID != uid && m.targetID != uid) {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Match not found"))
		return
	}
	if m.status != domain.MatchActive {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "match_inactive", errors.New("Match is not active"))
		return
	}
	sess := &domain.Session{
		ID:          newID(),
		MatchID:     m.id,
		ScheduledAt: req.ScheduledAt.UTC(),
		Duration:    req.Duration,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.SessionScheduled,
		MeetingLink: "https://meet.example.edu.pe/" + m.id[:8],
		CreatedAt:   s.opts.Now(),
	}
	s.sessions[sess.ID] = sess
	var emails []string
	for _, id := range []string{m.requesterID, m.targetID} {
		emails = append(emails, s.users[id].user.Email)
		if id != uid {
			s.pushNotification(id, domain.NotifySessionReminder, "Session scheduled", sess.Title, gin.H{"sessionId": sess.ID})
		}
	}
	out := s.renderSession(sess, uid)
	s.mu.Unlock()

	if !req.CreateGoogleCalendarEvent {
		emails = []string{}
	}
	respondOK(c, gin.H{"success": true, "session": out, "emailsSent": emails})
}

func (s *Server) listSessions(c *gin.Context) {
	status := c.DefaultQuery("status", "upcoming")
	limit := queryInt(c, "limit", 10)
	matchID := c.Query("matchId")
	uid := currentUser(c)
	now := s.opts.Now()

	s.mu.Lock()
	out := []*domain.Session{}
	var upcoming, completed, cancelled int
	for _, sess := range s.sessions {
		m := s.matches[sess.MatchID]
		if m == nil || (m.requesterID != uid && m.targetID != uid) {
			continue
		}
		if matchID != "" && sess.MatchID != matchID {
			continue
		}
		isUpcoming := sess.Status == domain.SessionScheduled && !sess.EndsAt().Before(now)
		switch {
		case isUpcoming:
			upcoming++
		case sess.Status == domain.SessionCompleted:
			completed++
		case sess.Status == domain.SessionCancelled:
			cancelled++
		}
		var keep bool
		switch status {
		case "upcoming":
			keep = isUpcoming
		case "all":
			keep = true
		default:
			keep = string(sess.Status) == status
		}
		if keep {
			out = append(out, s.renderSession(sess, uid))
		}
	}
	s.mu.Unlock()
	stats := gin.H{"upcoming": upcoming, "completed": completed, "cancelled": cancelled}

	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	respondOK(c, gin.H{"sessions": window(out, 0, limit), "stats": stats})
}

func (s *Server) completeSession(c *gin.Context) {
	var req domain.SessionFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := domain.ValidateRating(req.Rating); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_rating", err)
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	sess, m, ok := s.participantSession(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Session not found"))
		return
	}
	if !sess.Status.CanTransition(domain.SessionCompleted) {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "invalid_status", errors.New("Session is not scheduled"))
		return
	}
	now := s.opts.Now()
	rating := req.Rating
	sess.Status = domain.SessionCompleted
	sess.CompletedAt = &now
	sess.Rating = &rating
	sess.Feedback = req.Feedback

	before := s.users[uid].profile.Level
	earned := domain.PointsCompleteSession
	s.award(uid, domain.PointsCompleteSession, "complete_session", "Completed a session", sess.ID)
	if rating == 5 {
		earned += domain.PointsFiveStarRating
		s.award(uid, domain.PointsFiveStarRating, "five_star_rating", "Five star session", sess.ID)
	}
	for _, id := range []string{m.requesterID, m.targetID} {
		rec := s.users[id]
		n := float64(rec.stats.SessionsCompleted)
		rec.stats.AvgRating = (rec.stats.AvgRating*n + float64(rating)) / (n + 1)
		rec.stats.SessionsCompleted++
	}
	var newLevel *int
	if after := s.users[uid].profile.Level; after != before {
		newLevel = &after
		s.pushNotification(uid, domain.NotifyLevelUp, "Level up", domain.Levels[after-1].Name, nil)
	}
	out := s.renderSession(sess, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{
		"success":        true,
		"session":        out,
		"pointsEarned":   earned,
		"newLevel":       newLevel,
		"badgesUnlocked": []domain.Badge{},
	})
}

func (s *Server) cancelSession(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	uid := currentUser(c)

	s.mu.Lock()
	sess, _, ok := s.participantSession(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Session not found"))
		return
	}
	if !sess.Status.CanTransition(domain.SessionCancelled) {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "invalid_status", errors.New("Session is not scheduled"))
		return
	}
	now := s.opts.Now()
	sess.Status = domain.SessionCancelled
	sess.CancelledAt = &now
	sess.Feedback = req.Reason
	out := s.renderSession(sess, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "data": gin.H{"session": out}})
}

func (s *Server) rescheduleSession(c *gin.Context) {
	var req struct {
		NewScheduledAt time.Time `json:"newScheduledAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.NewScheduledAt.IsZero() {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("newScheduledAt is required"))
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	sess, _, ok := s.participantSession(c)
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Session not found"))
		return
	}
	if sess.Status != domain.SessionScheduled {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "invalid_status", errors.New("Session is not scheduled"))
		return
	}
	sess.ScheduledAt = req.NewScheduledAt.UTC()
	out := s.renderSession(sess, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "data": gin.H{"session": out}})
}

// renderSession copies sess with the viewer's counterpart attached. Callers
// hold s.mu.
func (s *Server) renderSession(sess *domain.Session, viewer string) *domain.Session {
	cp := *sess
	if m, ok := s.matches[sess.MatchID]; ok {
		otherID := m.targetID
		if viewer == m.targetID {
			otherID = m.requesterID
		}
		if other, ok := s.users[otherID]; ok {
			cp.Match = &domain.SessionMatch{ID: m.id, OtherUser: summarize(other)}
		}
	}
	return &cp
}
