package portals

import (
	"math"
	"strings"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// YearsOfExperience sums whole-month spans across the work history (a current
// position ends now) and rounds to the nearest year.
func YearsOfExperience(p engine.ApplicantProfile) int {
	return yearsOfExperienceAt(p, time.Now())
}

func yearsOfExperienceAt(p engine.ApplicantProfile, now time.Time) int {
	months := 0
	for _, w := range p.WorkHistory {
		end := w.End
		if w.Current || end.IsZero() {
			end = now
		}
		if m := monthsBetween(w.Start, end); m > 0 {
			months += m
		}
	}
	return int(math.Round(float64(months) / 12.0))
}

// monthsBetween counts whole months from a to b.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// educationRanks is the fixed degree vocabulary, lowest first. The first
// keyword hit per entry decides its rank.
var educationRanks = []struct {
	level    string
	keywords []string
}{
	{"High School", []string{"high school", "ged", "diploma"}},
	{"Associate", []string{"associate", "a.a", "a.s"}},
	{"Bachelor", []string{"bachelor", "b.s", "b.a", "bsc", "undergraduate"}},
	{"Master", []string{"master", "m.s", "m.a", "msc", "mba"}},
	{"PhD", []string{"phd", "ph.d", "doctor"}},
}

// HighestEducation returns the highest-ranked degree found across education
// entries, defaulting to High School when nothing matches.
func HighestEducation(p engine.ApplicantProfile) string {
	best := 0
	for _, e := range p.Education {
		degree := strings.ToLower(e.Degree)
		for rank, entry := range educationRanks {
			if rank <= best {
				continue
			}
			for _, kw := range entry.keywords {
				if strings.Contains(degree, kw) {
					best = rank
					break
				}
			}
		}
	}
	return educationRanks[best].level
}

// FirstName and LastName split the profile's full name for portals with
// separate fields.
func FirstName(p engine.ApplicantProfile) string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func LastName(p engine.ApplicantProfile) string {
	parts := strings.Fields(p.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
