package portals

import (
	"strings"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// GenerateCoverLetter substitutes the fixed bracketed placeholder set in a
// cover-letter template. Every occurrence is replaced; placeholders outside
// the fixed set stay verbatim.
func GenerateCoverLetter(template string, p engine.ApplicantProfile, job engine.JobListing) string {
	return generateCoverLetterAt(template, p, job, time.Now())
}

func generateCoverLetterAt(template string, p engine.ApplicantProfile, job engine.JobListing, now time.Time) string {
	replacer := strings.NewReplacer(
		"[Your Name]", p.Name,
		"[Your Address]", p.Address,
		"[City, State ZIP]", p.CityStateZip,
		"[Your Email]", p.Email,
		"[Your Phone]", p.Phone,
		"[Date]", now.Format("January 2, 2006"),
		"[Hiring Manager's Name]", "Hiring Manager",
		"[Company Name]", job.Company.Name,
		"[Company Address]", "",
		"[Job Title]", job.Title,
	)
	return replacer.Replace(template)
}
