package portals

import (
	"context"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Generic is the fallback for unrecognized career sites. It runs the full
// step set against whatever form the page exposes and accepts any of the
// common success phrasings as confirmation.
type Generic struct{}

func (g *Generic) Kind() Kind { return KindGeneric }

func (g *Generic) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		workHistoryStep(profile),
		educationStep(profile),
		skillsStep(profile),
		coverLetterStep(profile, job),
		authorizationStep(profile),
		questionsStep(profile),
	}
	confirmed := bodyContainsAny(
		"thank you for applying",
		"application received",
		"application submitted",
		"successfully applied",
		"we have received your application",
	)
	return runFlow(ctx, session, job.ApplicationURL,
		[]string{"form[action*='apply']", "form[id*='apply']", "form[class*='apply']", "form[class*='application']", "form"},
		steps, confirmed, 0)
}
