package portals

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Lever handles jobs.lever.co postings. Lever serves the posting at /<id>
// and the single-page application at /<id>/apply.
type Lever struct{}

func (l *Lever) Kind() Kind { return KindLever }

func (l *Lever) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		coverLetterStep(profile, job),
		questionsStep(profile),
	}
	confirmed := bodyContainsAny(
		"application submitted",
		"thank you for your interest",
		"your application has been received",
	)
	return runFlow(ctx, session, leverApplyURL(job.ApplicationURL),
		[]string{"form#application-form", "form.application-form", "form[action*='lever']"},
		steps, confirmed, 0)
}

func leverApplyURL(postingURL string) string {
	trimmed := strings.TrimRight(postingURL, "/")
	if strings.HasSuffix(trimmed, "/apply") {
		return trimmed
	}
	return trimmed + "/apply"
}
