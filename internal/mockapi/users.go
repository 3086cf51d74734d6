package mockapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

const maxImageBytes = 5 << 20

func (s *Server) getMe(c *gin.Context) {
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	user, profile, stats := rec.user, rec.profile, rec.stats
	s.mu.Unlock()
	respondOK(c, gin.H{"user": user, "profile": profile, "stats": stats})
}

func (s *Server) updateMe(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if patch.Bio != nil {
		if err := domain.ValidateBio(*patch.Bio); err != nil {
			respondError(c, http.StatusBadRequest, "bio_too_long", err)
			return
		}
	}
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	if patch.Bio != nil {
		rec.user.Bio = *patch.Bio
	}
	if len(patch.CareerInterests) > 0 {
		rec.profile.CareerInterests = patch.CareerInterests
	}
	if patch.AvailableTimes != nil {
		rec.profile.AvailableTimes = patch.AvailableTimes.Normalized()
	}
	user := rec.user
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true, "data": gin.H{"user": user}})
}

func (s *Server) uploadProfileImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing_image", errors.New("image file is required"))
		return
	}
	if fh.Size > maxImageBytes {
		respondError(c, http.StatusBadRequest, "image_too_large", fmt.Errorf("image exceeds %d bytes", maxImageBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_image", err)
		return
	}
	_, _ = io.Copy(io.Discard, f)
	_ = f.Close()

	uid := currentUser(c)
	url := fmt.Sprintf("/media/profile/%s%s", uid, filepath.Ext(fh.Filename))
	s.mu.Lock()
	s.users[uid].user.ProfileImage = url
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true, "data": gin.H{"imageUrl": url}})
}

func (s *Server) addGrades(c *gin.Context) {
	var req struct {
		Grades []domain.Grade `json:"grades"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Grades) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("grades are required"))
		return
	}
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	rec.grades = append(rec.grades, req.Grades...)
	gpa := averageGrade(rec.grades)
	rec.profile.GPA = &gpa
	rec.profile.RiskScore, rec.profile.RiskFactors = assessRisk(rec)
	risk := rec.profile.RiskScore
	s.mu.Unlock()
	respondOK(c, gin.H{"success": true, "data": gin.H{"gradesAdded": len(req.Grades), "gpa": gpa, "riskScore": risk}})
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	rec, ok := s.users[c.Param("id")]
	var user domain.User
	if ok {
		user = rec.user
		user.Email = ""
	}
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", errors.New("User not found"))
		return
	}
	respondOK(c, user)
}

func averageGrade(grades []domain.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Grade
	}
	return sum / float64(len(grades))
}

// assessRisk scores on the 0-20 Peruvian scale: failed courses and a low
// average raise the score. Callers hold s.mu.
func assessRisk(rec *userRecord) (float64, []domain.RiskFactor) {
	factors := []domain.RiskFactor{}
	score := 0.0
	failed := 0
	for _, g := range rec.grades {
		if g.Status == domain.GradeFailed || (g.Status == "" && g.Grade < 11) {
			failed++
		}
	}
	if failed > 0 {
		score += float64(failed) * 20
		sev := domain.SeverityMedium
		if failed > 1 {
			sev = domain.SeverityHigh
		}
		factors = append(factors, domain.RiskFactor{
			Type:        "failed_courses",
			Description: fmt.Sprintf("%d failed course(s)", failed),
			Severity:    sev,
			Suggestion:  "Find a mentor who passed these courses",
		})
	}
	if rec.profile.GPA != nil && *rec.profile.GPA < 13 {
		score += (13 - *rec.profile.GPA) * 10
		factors = append(factors, domain.RiskFactor{
			Type:        "low_gpa",
			Description: fmt.Sprintf("Average %.1f is below 13", *rec.profile.GPA),
			Severity:    domain.SeverityMedium,
			Suggestion:  "Schedule weekly study sessions",
		})
	}
	if len(rec.profile.Weaknesses) > 2 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score, factors
}
