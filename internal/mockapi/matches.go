package mockapi

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

func (s *Server) candidates(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	uid := currentUser(c)

	s.mu.Lock()
	me := s.users[uid]
	paired := map[string]bool{}
	for _, m := range s.matches {
		if m.requesterID == uid {
			paired[m.targetID] = true
		}
		if m.targetID == uid {
			paired[m.requesterID] = true
		}
	}
	var all []*domain.Candidate
	for id, rec := range s.users {
		if id == uid || !rec.user.OnboardingCompleted || paired[id] || me.skipped[id] {
			continue
		}
		all = append(all, s.candidateFor(me, rec))
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CompatibilityScore != all[j].CompatibilityScore {
			return all[i].CompatibilityScore > all[j].CompatibilityScore
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	page := window(all, offset, limit)
	respondOK(c, gin.H{
		"candidates": page,
		"pagination": gin.H{"total": total, "limit": limit, "offset": offset, "hasMore": offset+len(page) < total},
	})
}

// candidateFor scores other as seen by me. Callers hold s.mu.
func (s *Server) candidateFor(me, other *userRecord) *domain.Candidate {
	common := intersect(me.profile.CareerInterests, other.profile.CareerInterests)
	helps := intersect(me.profile.Weaknesses, other.profile.Strengths)

	score := 40.0 + 10*float64(len(common)) + 15*float64(len(helps))
	if me.user.Career != "" && me.user.Career == other.user.Career {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	kind := domain.MatchPeer
	if other.user.Semester >= me.user.Semester+2 {
		kind = domain.MatchMentor
	}
	reasons := []string{}
	if len(helps) > 0 {
		reasons = append(reasons, "Strong in "+strings.Join(helps, ", "))
	}
	if len(common) > 0 {
		reasons = append(reasons, "Shares your interest in "+strings.Join(common, ", "))
	}
	cand := &domain.Candidate{
		ID:                 other.user.ID,
		User:               summarize(other),
		CompatibilityScore: score,
		MatchType:          kind,
		MatchReasons:       reasons,
		CommonInterests:    common,
	}
	if kind == domain.MatchMentor {
		cand.MentorStats = &domain.MentorStats{
			SuccessRate:   successRate(other),
			AvgRating:     other.stats.AvgRating,
			TotalSessions: other.stats.SessionsCompleted,
		}
	}
	return cand
}

func (s *Server) requestMatch(c *gin.Context) {
	var req struct {
		CandidateID string `json:"candidateId"`
		Message     string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CandidateID == "" {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("candidateId is required"))
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	target, ok := s.users[req.CandidateID]
	if !ok || req.CandidateID == uid {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Candidate not found"))
		return
	}
	for _, m := range s.matches {
		if (m.requesterID == uid && m.targetID == target.user.ID) || (m.targetID == uid && m.requesterID == target.user.ID) {
			s.mu.Unlock()
			respondError(c, http.StatusBadRequest, "duplicate_match", errors.New("Match already exists"))
			return
		}
	}
	me := s.users[uid]
	cand := s.candidateFor(me, target)
	m := &matchRecord{
		id:          newID(),
		requesterID: uid,
		targetID:    target.user.ID,
		status:      domain.MatchPending,
		matchType:   cand.MatchType,
		score:       cand.CompatibilityScore,
		createdAt:   s.opts.Now(),
	}
	s.matches[m.id] = m
	s.matchOrder = append(s.matchOrder, m.id)
	if strings.TrimSpace(req.Message) != "" {
		s.messages[m.id] = append(s.messages[m.id], &domain.Message{
			ID:          newID(),
			MatchID:     m.id,
			SenderID:    uid,
			Content:     req.Message,
			MessageType: domain.MessageText,
			CreatedAt:   s.opts.Now(),
		})
	}
	s.pushNotification(target.user.ID, domain.NotifyNewMatch, "New match request", me.user.FullName()+" wants to connect", gin.H{"matchId": m.id})
	out := s.renderMatch(m, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "match": out, "message": "Match request sent"})
}

func (s *Server) skipCandidate(c *gin.Context) {
	var req struct {
		CandidateID string `json:"candidateId"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CandidateID == "" {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("candidateId is required"))
		return
	}
	s.mu.Lock()
	s.users[currentUser(c)].skipped[req.CandidateID] = true
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true})
}

func (s *Server) myMatches(c *gin.Context) {
	status := strings.ToLower(c.DefaultQuery("status", "all"))
	role := strings.ToLower(c.DefaultQuery("role", "all"))
	uid := currentUser(c)

	s.mu.Lock()
	out := []*domain.Match{}
	counts := map[string]int{"all": 0, "pending": 0, "active": 0, "completed": 0}
	for _, id := range s.matchOrder {
		m := s.matches[id]
		if m.requesterID != uid && m.targetID != uid {
			continue
		}
		counts["all"]++
		if _, ok := counts[string(m.status)]; ok {
			counts[string(m.status)]++
		}
		if status != "all" && string(m.status) != status {
			continue
		}
		// The requester is the mentee side of a mentorship.
		switch role {
		case "mentor":
			if m.targetID != uid {
				continue
			}
		case "mentee":
			if m.requesterID != uid {
				continue
			}
		}
		out = append(out, s.renderMatch(m, uid))
	}
	s.mu.Unlock()

	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	respondOK(c, gin.H{"matches": out, "counts": counts})
}

func (s *Server) respond(c *gin.Context) {
	var req struct {
		Action  domain.ResponseAction `json:"action"`
		Message string                `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Action.Valid() {
		respondError(c, http.StatusBadRequest, "invalid_action", errors.New("action must be accept or reject"))
		return
	}
	uid := currentUser(c)

	s.mu.Lock()
	m, ok := s.matches[c.Param("id")]
	if !ok || (m.requesterID != uid && m.targetID != uid) {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Match not found"))
		return
	}
	if m.targetID != uid {
		s.mu.Unlock()
		respondError(c, http.StatusForbidden, "forbidden", errors.New("Only the requested user can respond"))
		return
	}
	next := req.Action.ResultingStatus()
	if !m.status.CanTransition(next) {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "invalid_status", errors.New("Match is no longer pending"))
		return
	}
	m.status = next
	var points *int
	msg := "Match rejected"
	if next == domain.MatchActive {
		now := s.opts.Now()
		m.acceptedAt = &now
		earned := domain.PointsFirstMatch
		points = &earned
		s.award(uid, earned, "first_match", "Accepted a match", m.id)
		s.award(m.requesterID, earned, "first_match", "Match accepted", m.id)
		s.pushNotification(m.requesterID, domain.NotifyNewMatch, "Match accepted", s.users[uid].user.FullName()+" accepted your request", gin.H{"matchId": m.id})
		msg = "Match accepted"
	}
	out := s.renderMatch(m, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "match": out, "pointsEarned": points, "message": msg})
}

// renderMatch builds the viewer's side of m. Callers hold s.mu.
func (s *Server) renderMatch(m *matchRecord, viewer string) *domain.Match {
	otherID := m.targetID
	if viewer == m.targetID {
		otherID = m.requesterID
	}
	out := &domain.Match{
		ID:                 m.id,
		Status:             m.status,
		MatchType:          m.matchType,
		CompatibilityScore: m.score,
		CreatedAt:          m.createdAt,
		AcceptedAt:         m.acceptedAt,
		Stats:              &domain.MatchStats{TotalMessages: len(s.messages[m.id])},
	}
	if other, ok := s.users[otherID]; ok {
		out.OtherUser = summarize(other)
	}
	if msgs := s.messages[m.id]; len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		out.LastMessage = &domain.MessagePreview{Content: last.Content, SentAt: last.CreatedAt, IsRead: last.IsRead}
	}
	for _, sess := range s.sessions {
		if sess.MatchID != m.id {
			continue
		}
		out.Stats.TotalSessions++
		if sess.Status == domain.SessionScheduled && (out.UpcomingSession == nil || sess.ScheduledAt.Before(out.UpcomingSession.ScheduledAt)) {
			out.UpcomingSession = &domain.SessionSummary{ID: sess.ID, ScheduledAt: sess.ScheduledAt, Duration: sess.Duration}
		}
	}
	return out
}

func summarize(rec *userRecord) domain.UserSummary {
	return domain.UserSummary{
		ID:           rec.user.ID,
		FirstName:    rec.user.FirstName,
		LastName:     rec.user.LastName,
		Career:       rec.user.Career,
		Semester:     rec.user.Semester,
		ProfileImage: rec.user.ProfileImage,
		Bio:          rec.user.Bio,
		Level:        rec.profile.Level,
	}
}

func successRate(rec *userRecord) float64 {
	total := rec.stats.MentorshipsAsMentor
	if total == 0 {
		return 0
	}
	rate := float64(rec.stats.SessionsCompleted) / float64(total*4) * 100
	if rate > 100 {
		rate = 100
	}
	return rate
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[strings.ToLower(v)] = true
	}
	out := []string{}
	for _, v := range a {
		if set[strings.ToLower(v)] {
			out = append(out, v)
		}
	}
	return out
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
