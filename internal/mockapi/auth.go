package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

func (s *Server) sendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("email is required"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := domain.ValidateInstitutionalEmail(email, s.opts.EmailSuffix); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_email", errors.New("Institutional email required"))
		return
	}

	now := s.opts.Now()
	s.mu.Lock()
	recent := s.codeRequests[email][:0]
	for _, at := range s.codeRequests[email] {
		if now.Sub(at) < time.Minute {
			recent = append(recent, at)
		}
	}
	if len(recent) >= s.opts.CodeRequestsPerMinute {
		s.codeRequests[email] = recent
		s.mu.Unlock()
		respondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("too many code requests"))
		return
	}
	s.codeRequests[email] = append(recent, now)
	s.codes[email] = s.opts.Code
	s.mu.Unlock()

	s.log.Info("verification code issued", "email", email)
	respondOK(c, gin.H{"success": true, "message": "Verification code sent"})
}

func (s *Server) verify(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("email and code are required"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	want, ok := s.codes[email]
	if !ok || want != strings.TrimSpace(req.Code) {
		s.mu.Unlock()
		respondError(c, http.StatusBadRequest, "invalid_code", errors.New("Invalid or expired code"))
		return
	}
	delete(s.codes, email)
	id, exists := s.byEmail[email]
	if !exists {
		id = newID()
		s.byEmail[email] = id
		s.users[id] = &userRecord{
			user:    domain.User{ID: id, Email: email},
			profile: domain.Profile{Level: 1, Badges: []string{}, RiskFactors: []domain.RiskFactor{}},
			skipped: map[string]bool{},
		}
	}
	user := s.users[id].user
	s.mu.Unlock()

	token, err := s.issueToken(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token", err)
		return
	}
	respondOK(c, gin.H{"success": true, "token": token, "user": user})
}

func (s *Server) onboarding(c *gin.Context) {
	var req domain.OnboardingData
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Career) == "" || len(req.CareerInterests) == 0 {
		respondError(c, http.StatusBadRequest, "missing_fields", errors.New("firstName, career and careerInterests are required"))
		return
	}

	s.mu.Lock()
	rec := s.users[currentUser(c)]
	rec.user.FirstName = req.FirstName
	rec.user.LastName = req.LastName
	rec.user.Career = req.Career
	rec.user.Semester = req.Semester
	rec.user.University = req.University
	rec.user.OnboardingCompleted = true
	rec.profile.CareerInterests = req.CareerInterests
	rec.profile.FutureRoles = req.FutureRoles
	rec.profile.IndustryPreference = req.IndustryPreference
	rec.profile.SkillsToLearn = req.SkillsToLearn
	rec.profile.Strengths = req.Strengths
	rec.profile.Weaknesses = req.Weaknesses
	rec.profile.StudyStyle = req.StudyStyle
	rec.profile.AvailableTimes = req.AvailableTimes.Normalized()
	rec.profile.RiskScore, rec.profile.RiskFactors = assessRisk(rec)
	user, profile := rec.user, rec.profile
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "user": user, "profile": profile})
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	s.revoked[c.GetString(ctxToken)] = true
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true})
}
