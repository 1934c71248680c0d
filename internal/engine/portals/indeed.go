package portals

import (
	"context"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// IndeedApply handles indeed.com postings that carry the hosted apply flow.
// Postings that only link out to an employer site classify as that portal
// instead, so this adapter sees actual smartapply forms.
type IndeedApply struct{}

func (i *IndeedApply) Kind() Kind { return KindIndeed }

func (i *IndeedApply) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		coverLetterStep(profile, job),
		authorizationStep(profile),
		questionsStep(profile),
	}
	confirmed := bodyContainsAny(
		"application submitted",
		"your application has been submitted",
		"you applied",
	)
	return runFlow(ctx, session, job.ApplicationURL,
		[]string{"form[action*='smartapply']", "form#ia-container form", "form"},
		steps, confirmed, 0)
}
