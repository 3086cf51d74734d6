package mockapi

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// MinCertificateHours is the volunteering needed before a certificate is issued.
const MinCertificateHours = 10

// award credits points and recomputes the level. Callers hold s.mu.
func (s *Server) award(userID string, points int, action, description, ref string) {
	rec, ok := s.users[userID]
	if !ok {
		return
	}
	rec.points = append(rec.points, domain.PointTransaction{
		ID:          newID(),
		Points:      points,
		Action:      action,
		Description: description,
		ReferenceID: ref,
		CreatedAt:   s.opts.Now(),
	})
	rec.profile.Points += points
	lvl, _ := domain.LevelFor(rec.profile.Points)
	rec.profile.Level = lvl.Level
}

func hoursVolunteered(rec *userRecord) float64 {
	return float64(rec.stats.SessionsCompleted)
}

func (s *Server) myProgress(c *gin.Context) {
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	points := rec.profile.Points
	stats := domain.GamificationStats{
		TotalSessions:    rec.stats.SessionsCompleted,
		HoursVolunteered: hoursVolunteered(rec),
		MenteesHelped:    rec.stats.MentorshipsAsMentor,
		SuccessRate:      successRate(rec),
	}
	badges := make([]domain.Badge, 0, len(rec.profile.Badges))
	for _, name := range rec.profile.Badges {
		badges = append(badges, domain.Badge{ID: name, Name: name})
	}
	s.mu.Unlock()

	cur, next := domain.LevelFor(points)
	out := domain.GamificationData{
		Level:         cur.Level,
		CurrentPoints: points,
		Badges:        badges,
		Stats:         stats,
		Rewards:       domain.Rewards{CertificatesAvailable: []domain.Certificate{}},
	}
	if next != nil {
		out.PointsToNextLevel = next.PointsRequired - points
		out.Rewards.NextReward = &domain.NextReward{
			Level:        next.Level,
			Description:  next.Name,
			PointsNeeded: out.PointsToNextLevel,
		}
	}
	if hours := int(stats.HoursVolunteered); hours >= MinCertificateHours {
		out.Rewards.CertificatesAvailable = append(out.Rewards.CertificatesAvailable, domain.Certificate{
			Type:        "volunteer",
			Hours:       hours,
			DownloadURL: "/api/gamification/certificates/volunteer",
		})
	}
	respondOK(c, out)
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	category := c.DefaultQuery("category", "points")
	timeframe := c.DefaultQuery("timeframe", "monthly")
	uid := currentUser(c)

	var since time.Time
	now := s.opts.Now()
	switch timeframe {
	case "weekly":
		since = now.AddDate(0, 0, -7)
	case "monthly":
		since = now.AddDate(0, -1, 0)
	}

	s.mu.Lock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.users))
	for id, rec := range s.users {
		if !rec.user.OnboardingCompleted {
			continue
		}
		pts := 0
		for _, tx := range rec.points {
			if !tx.CreatedAt.Before(since) {
				pts += tx.Points
			}
		}
		entries = append(entries, domain.LeaderboardEntry{
			User:          summarize(rec),
			Points:        pts,
			Sessions:      rec.stats.SessionsCompleted,
			SuccessRate:   successRate(rec),
			IsCurrentUser: id == uid,
		})
	}
	s.mu.Unlock()

	key := func(e domain.LeaderboardEntry) float64 {
		switch category {
		case "sessions":
			return float64(e.Sessions)
		case "success_rate":
			return e.SuccessRate
		default:
			return float64(e.Points)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if key(entries[i]) != key(entries[j]) {
			return key(entries[i]) > key(entries[j])
		}
		return entries[i].User.ID < entries[j].User.ID
	})
	myRank := 0
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].IsCurrentUser {
			myRank = i + 1
		}
	}
	respondOK(c, gin.H{
		"leaderboard":       window(entries, 0, limit),
		"myRank":            myRank,
		"totalParticipants": len(entries),
	})
}

func (s *Server) certificate(c *gin.Context) {
	kind := c.Param("type")
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	name := rec.user.FullName()
	hours := int(hoursVolunteered(rec))
	s.mu.Unlock()

	if hours < MinCertificateHours {
		respondError(c, http.StatusBadRequest, "not_eligible", fmt.Errorf("At least %d volunteer hours required", MinCertificateHours))
		return
	}
	c.Data(http.StatusOK, "application/pdf", certificatePDF(kind, name, hours))
}

func (s *Server) pointsHistory(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	s.mu.Lock()
	rec := s.users[currentUser(c)]
	txs := make([]domain.PointTransaction, 0, len(rec.points))
	earned, spent := 0, 0
	for i := len(rec.points) - 1; i >= 0; i-- {
		tx := rec.points[i]
		if tx.Points >= 0 {
			earned += tx.Points
		} else {
			spent -= tx.Points
		}
		txs = append(txs, tx)
	}
	total := rec.profile.Points
	s.mu.Unlock()

	respondOK(c, gin.H{
		"transactions": window(txs, 0, limit),
		"totalPoints":  total,
		"totalEarned":  earned,
		"totalSpent":   spent,
	})
}

// certificatePDF renders a one-page PDF with a single text line.
func certificatePDF(kind, name string, hours int) []byte {
	text := fmt.Sprintf("ConnectU %s certificate: %s, %d hours", kind, name, hours)
	stream := fmt.Sprintf("BT /F1 18 Tf 72 720 Td (%s) Tj ET", escapePDF(text))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func escapePDF(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
