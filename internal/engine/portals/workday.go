package portals

import (
	"context"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// workdayFlowSteps bounds the wizard walk. Workday paginates the application
// across several screens, so the cap is higher than the single-form portals'.
const workdayFlowSteps = 5

// Workday handles myworkdayjobs.com tenants. The wizard splits the
// application across pages (contact, experience, education, questions,
// review); every screen is re-probed so tenant-specific orderings and
// omitted sections fall out naturally.
type Workday struct{}

func (w *Workday) Kind() Kind { return KindWorkday }

func (w *Workday) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
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
		"application submitted",
		"you have successfully applied",
		"thank you for applying",
	)
	return runFlow(ctx, session, job.ApplicationURL,
		[]string{"form[data-automation-id='applicationForm']", "form[data-automation-id]", "form"},
		steps, confirmed, workdayFlowSteps)
}
