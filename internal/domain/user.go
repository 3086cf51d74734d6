package domain

import (
	"sort"
	"strings"
)

// User is the authenticated identity.
type User struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Career              string `json:"career"`
	Semester            int    `json:"semester"`
	University          string `json:"university"`
	ProfileImage        string `json:"profileImage,omitempty"`
	Bio                 string `json:"bio,omitempty"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserSummary is the identity slice shown on cards, match rows and feed items.
type UserSummary struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	Career       string `json:"career,omitempty"`
	Semester     int    `json:"semester,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Level        int    `json:"level,omitempty"`
}

type StudyStyle string

const (
	StudyVisual        StudyStyle = "visual"
	StudyPractical     StudyStyle = "practical"
	StudyTheoretical   StudyStyle = "theoretical"
	StudyCollaborative StudyStyle = "collaborative"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type RiskFactor struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Suggestion  string   `json:"suggestion"`
}

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Availability maps each weekday to its free windows, formatted "HH:MM-HH:MM".
type Availability map[Weekday][]string

// Normalized returns a copy with every weekday present and windows sorted
// and de-duplicated.
func (a Availability) Normalized() Availability {
	out := make(Availability, len(Weekdays))
	for _, d := range Weekdays {
		seen := map[string]struct{}{}
		slots := []string{}
		for _, s := range a[d] {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			slots = append(slots, s)
		}
		sort.Strings(slots)
		out[d] = slots
	}
	return out
}

func (a Availability) TotalSlots() int {
	n := 0
	for _, d := range Weekdays {
		n += len(a[d])
	}
	return n
}

type Profile struct {
	CareerInterests    []string     `json:"careerInterests"`
	FutureRoles        []string     `json:"futureRoles,omitempty"`
	IndustryPreference []string     `json:"industryPreference,omitempty"`
	SkillsToLearn      []string     `json:"skillsToLearn,omitempty"`
	Strengths          []string     `json:"strengths,omitempty"`
	Weaknesses         []string     `json:"weaknesses,omitempty"`
	StudyStyle         StudyStyle   `json:"studyStyle,omitempty"`
	GPA                *float64     `json:"gpa,omitempty"`
	RiskScore          float64      `json:"riskScore"`
	RiskType           string       `json:"riskType,omitempty"`
	RiskFactors        []RiskFactor `json:"riskFactors"`
	Level              int          `json:"level"`
	Points             int          `json:"points"`
	Badges             []string     `json:"badges"`
	AvailableTimes     Availability `json:"availableTimes,omitempty"`
}

type UserStats struct {
	MentorshipsAsMentee int     `json:"mentorshipsAsmentee"`
	MentorshipsAsMentor int     `json:"mentorshipsAsMentor"`
	SessionsCompleted   int     `json:"sessionsCompleted"`
	AvgRating           float64 `json:"avgRating"`
}

type GradeStatus string

const (
	GradeApproved   GradeStatus = "approved"
	GradeInProgress GradeStatus = "in_progress"
	GradeFailed     GradeStatus = "failed"
)

type Grade struct {
	CourseName string      `json:"courseName"`
	Grade      float64     `json:"grade"`
	Semester   string      `json:"semester"`
	Status     GradeStatus `json:"status"`
}

// OnboardingData is the full payload posted when onboarding completes.
type OnboardingData struct {
	FirstName          string       `json:"firstName"`
	LastName           string       `json:"lastName"`
	Career             string       `json:"career"`
	Semester           int          `json:"semester"`
	University         string       `json:"university"`
	CareerInterests    []string     `json:"careerInterests"`
	FutureRoles        []string     `json:"futureRoles,omitempty"`
	IndustryPreference []string     `json:"industryPreference,omitempty"`
	SkillsToLearn      []string     `json:"skillsToLearn,omitempty"`
	Weaknesses         []string     `json:"weaknesses,omitempty"`
	Strengths          []string     `json:"strengths,omitempty"`
	StudyStyle         StudyStyle   `json:"studyStyle,omitempty"`
	AvailableTimes     Availability `json:"availableTimes,omitempty"`
}

// ProfilePatch is a partial update; nil/empty fields are not sent.
type ProfilePatch struct {
	Bio             *string      `json:"bio,omitempty"`
	CareerInterests []string     `json:"careerInterests,omitempty"`
	AvailableTimes  Availability `json:"availableTimes,omitempty"`
}
