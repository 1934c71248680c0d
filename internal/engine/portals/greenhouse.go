package portals

import (
	"context"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Greenhouse handles boards.greenhouse.io postings. The whole application is
// one form page, so the flow normally terminates in two iterations: fill and
// submit, then confirm.
type Greenhouse struct{}

func (g *Greenhouse) Kind() Kind { return KindGreenhouse }

func (g *Greenhouse) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		coverLetterStep(profile, job),
		questionsStep(profile),
	}
	confirmed := bodyContainsAny(
		"thank you for applying",
		"your application has been submitted",
		"application submitted",
	)
	return runFlow(ctx, session, job.ApplicationURL,
		[]string{"form#application_form", "form#application-form", "form[action*='greenhouse']"},
		steps, confirmed, 0)
}
