// Package format renders domain values for terminal output.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

type RiskTier struct {
	Label    string
	Severity domain.Severity
}

// Risk buckets a 0-100 academic risk score.
func Risk(score float64) RiskTier {
	switch {
	case score >= 70:
		return RiskTier{Label: "High", Severity: domain.SeverityHigh}
	case score >= 40:
		return RiskTier{Label: "Medium", Severity: domain.SeverityMedium}
	default:
		return RiskTier{Label: "Low", Severity: domain.SeverityLow}
	}
}

// Truncate cuts s to max runes and appends "..." when it had to cut.
func Truncate(s string, max int) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// Initials uses the first letter of each name, or the first two letters of
// firstName when lastName is empty.
func Initials(firstName, lastName string) string {
	first := []rune(strings.TrimSpace(firstName))
	last := []rune(strings.TrimSpace(lastName))
	if len(last) > 0 {
		if len(first) == 0 {
			return strings.ToUpper(string(last[0]))
		}
		return strings.ToUpper(string(first[0]) + string(last[0]))
	}
	if len(first) > 2 {
		first = first[:2]
	}
	return strings.ToUpper(string(first))
}

// Count abbreviates thousands with a K suffix and one decimal.
func Count(n int) string {
	if n >= 1000 {
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "K"
	}
	return strconv.Itoa(n)
}

// MessageTime is "15:04" today, "Yesterday 15:04", otherwise "02/01 15:04",
// all in now's location.
func MessageTime(t, now time.Time) string {
	t = t.In(now.Location())
	switch dayDiff(t, now) {
	case 0:
		return t.Format("15:04")
	case 1:
		return "Yesterday " + t.Format("15:04")
	default:
		return t.Format("02/01 15:04")
	}
}

// SessionDate is the long form used for scheduled sessions.
func SessionDate(t time.Time) string {
	return t.Format("Monday, 02 January at 15:04")
}

// Relative describes t relative to now, e.g. "5 minutes ago" or "in 2 hours".
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}
	var phrase string
	switch {
	case d < 45*time.Second:
		phrase = "less than a minute"
	case d < 90*time.Second:
		phrase = "1 minute"
	case d < 45*time.Minute:
		phrase = plural(int((d+30*time.Second)/time.Minute), "minute")
	case d < 90*time.Minute:
		phrase = "about 1 hour"
	case d < 24*time.Hour:
		phrase = "about " + plural(int((d+30*time.Minute)/time.Hour), "hour")
	case d < 48*time.Hour:
		phrase = "1 day"
	case d < 30*24*time.Hour:
		phrase = plural(int(d/(24*time.Hour)), "day")
	case d < 365*24*time.Hour:
		phrase = plural(int(d/(30*24*time.Hour)), "month")
	default:
		phrase = plural(int(d/(365*24*time.Hour)), "year")
	}
	if future {
		return "in " + phrase
	}
	return phrase + " ago"
}

// Level renders "Lv 3 Junior Mentor (1800 pts, 1200 to Senior Mentor)".
func Level(points int) string {
	cur, next := domain.LevelFor(points)
	if next == nil {
		return fmt.Sprintf("Lv %d %s (%d pts)", cur.Level, cur.Name, points)
	}
	return fmt.Sprintf("Lv %d %s (%d pts, %d to %s)", cur.Level, cur.Name, points, next.PointsRequired-points, next.Name)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func dayDiff(t, now time.Time) int {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
