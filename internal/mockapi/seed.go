package mockapi

import (
	"strings"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

// SeedUser describes an already onboarded account.
type SeedUser struct {
	Email      string
	FirstName  string
	LastName   string
	Career     string
	Semester   int
	University string
	Interests  []string
	Strengths  []string
	Weaknesses []string
	Bio        string

	Points              int
	SessionsCompleted   int
	MentorshipsAsMentor int
	AvgRating           float64
}

// AddUser registers u and returns its id. Re-adding an e-mail returns the
// existing id unchanged.
func (s *Server) AddUser(u SeedUser) string {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byEmail[email]; ok {
		return id
	}
	id := newID()
	lvl, _ := domain.LevelFor(u.Points)
	s.byEmail[email] = id
	s.users[id] = &userRecord{
		user: domain.User{
			ID:                  id,
			Email:               email,
			FirstName:           u.FirstName,
			LastName:            u.LastName,
			Career:              u.Career,
			Semester:            u.Semester,
			University:          u.University,
			Bio:                 u.Bio,
			OnboardingCompleted: true,
		},
		profile: domain.Profile{
			CareerInterests: u.Interests,
			Strengths:       u.Strengths,
			Weaknesses:      u.Weaknesses,
			RiskFactors:     []domain.RiskFactor{},
			Level:           lvl.Level,
			Points:          u.Points,
			Badges:          []string{},
			AvailableTimes:  domain.Availability{}.Normalized(),
		},
		stats: domain.UserStats{
			SessionsCompleted:   u.SessionsCompleted,
			MentorshipsAsMentor: u.MentorshipsAsMentor,
			AvgRating:           u.AvgRating,
		},
		skipped: map[string]bool{},
	}
	if u.Points > 0 {
		s.users[id].points = []domain.PointTransaction{{
			ID: newID(), Points: u.Points, Action: "seed", Description: "Initial balance", CreatedAt: s.opts.Now(),
		}}
	}
	return id
}

// TokenFor issues a bearer token for an existing user, letting tests act as
// the other side of a match.
func (s *Server) TokenFor(userID string) (string, error) {
	return s.issueToken(userID)
}

// SeedDemo loads a small set of mentors and peers for local development.
func (s *Server) SeedDemo() []string {
	demo := []SeedUser{
		{
			Email: "maria.quispe@utec.edu.pe", FirstName: "María", LastName: "Quispe",
			Career: "Computer Science", Semester: 8, University: "UTEC",
			Interests: []string{"software", "data science"}, Strengths: []string{"calculus", "algorithms"},
			Bio: "Teaching assistant for Algorithms I.", Points: 3200, SessionsCompleted: 24, MentorshipsAsMentor: 6, AvgRating: 4.8,
		},
		{
			Email: "jorge.ramirez@utec.edu.pe", FirstName: "Jorge", LastName: "Ramírez",
			Career: "Industrial Engineering", Semester: 6, University: "UTEC",
			Interests: []string{"operations", "data science"}, Strengths: []string{"statistics", "physics"},
			Points: 1600, SessionsCompleted: 11, MentorshipsAsMentor: 3, AvgRating: 4.5,
		},
		{
			Email: "lucia.flores@tecsup.edu.pe", FirstName: "Lucía", LastName: "Flores",
			Career: "Computer Science", Semester: 3, University: "TECSUP",
			Interests: []string{"software", "design"}, Strengths: []string{"programming"}, Weaknesses: []string{"calculus"},
			Points: 200,
		},
	}
	ids := make([]string, 0, len(demo))
	for _, u := range demo {
		ids = append(ids, s.AddUser(u))
	}
	return ids
}
