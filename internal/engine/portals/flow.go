package portals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Adapter drives one ATS family through its submission flow. Apply returns
// nil only when the portal's confirmation marker was observed; any other
// outcome is the failure reason destined for the ApplicationResult.
type Adapter interface {
	Kind() Kind
	Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error
}

// ForKind selects the adapter variant for a classified portal kind.
// Total: unknown kinds get the generic adapter.
func ForKind(kind Kind) Adapter {
	switch kind {
	case KindWorkday:
		return &Workday{}
	case KindGreenhouse:
		return &Greenhouse{}
	case KindLever:
		return &Lever{}
	case KindLinkedIn:
		return &LinkedInApply{}
	case KindIndeed:
		return &IndeedApply{}
	default:
		return &Generic{}
	}
}

// ApplyToJob classifies the job's URL, runs the matching adapter in a fresh
// session, and returns one append-only result. A top-level adapter failure
// becomes a failed result carrying the error message — it never escapes as an
// error to the caller.
func ApplyToJob(ctx context.Context, profile engine.ApplicantProfile, job engine.JobListing) engine.ApplicationResult {
	result := engine.ApplicationResult{
		JobID:          job.ID,
		Company:        job.Company.Name,
		Title:          job.Title,
		ApplicationURL: job.ApplicationURL,
		Timestamp:      time.Now().UTC(),
	}

	kind := Classify(job.ApplicationURL)
	adapter := ForKind(kind)
	slog.Info("apply: starting",
		slog.String("job_id", job.ID),
		slog.String("portal", string(kind)),
		slog.String("company", job.Company.Name))

	session, err := engine.NewSession()
	if err != nil {
		result.Error = fmt.Sprintf("session init: %v", err)
		engine.IncrApplicationAttempted(false)
		return result
	}
	defer session.Close()

	if err := adapter.Apply(ctx, session, profile, job); err != nil {
		result.Error = err.Error()
		engine.IncrApplicationAttempted(false)
		slog.Warn("apply: failed",
			slog.String("job_id", job.ID),
			slog.String("portal", string(kind)),
			slog.Any("error", err))
		return result
	}

	result.Success = true
	engine.IncrApplicationAttempted(true)
	slog.Info("apply: submitted", slog.String("job_id", job.ID), slog.String("portal", string(kind)))
	return result
}

// step is one logical stage of a submission flow. The probe decides whether
// the page section is present at all; absent sections are skipped without
// error. Fill errors are absorbed at the step boundary so the flow moves on.
type step struct {
	name  string
	probe func(f *Form) bool
	fill  func(f *Form) error
}

// runFlow drives the shared probe-then-fill-then-advance loop. No fixed page
// order is assumed: each iteration re-probes every step against the current
// page, fills what is present, and advances through whatever submit control
// exists. maxSteps caps the loop in case the remote flow never reaches a
// terminal state.
func runFlow(ctx context.Context, session *engine.Session, startURL string, formSelectors []string, steps []step, confirmed func(*goquery.Document) bool, maxSteps int) error {
	if maxSteps <= 0 {
		maxSteps = engine.Cfg.MaxFlowSteps
	}

	page, err := session.Navigate(ctx, startURL)
	if err != nil {
		return err
	}

	for i := 0; i < maxSteps; i++ {
		doc, err := page.Doc()
		if err != nil {
			return err
		}
		if confirmed(doc) {
			return nil
		}

		form := FindForm(doc, page.URL, formSelectors...)
		if form == nil {
			return fmt.Errorf("no application form on %s", page.URL)
		}

		for _, st := range steps {
			if st.probe != nil && !st.probe(form) {
				slog.Debug("apply: section absent, skipping", slog.String("step", st.name))
				continue
			}
			if err := st.fill(form); err != nil {
				slog.Warn("apply: step failed, continuing", slog.String("step", st.name), slog.Any("error", err))
			}
		}

		if !form.SubmitControlPresent() {
			return fmt.Errorf("no submit control on %s", page.URL)
		}
		next, err := session.SubmitForm(ctx, form.Action, form.Values)
		if err != nil {
			return err
		}
		page = next
	}

	doc, err := page.Doc()
	if err != nil {
		return err
	}
	if confirmed(doc) {
		return nil
	}
	return fmt.Errorf("no confirmation marker after %d steps", maxSteps)
}

// bodyContainsAny builds a confirmation probe over page text markers.
func bodyContainsAny(markers ...string) func(*goquery.Document) bool {
	return func(doc *goquery.Document) bool {
		body := strings.ToLower(doc.Text())
		for _, m := range markers {
			if strings.Contains(body, strings.ToLower(m)) {
				return true
			}
		}
		return false
	}
}

// --- Shared steps consumed by the adapter variants ---

// personalInfoStep fills name/contact/link fields wherever their accessors
// are found; unmatched fields stay untouched.
func personalInfoStep(p engine.ApplicantProfile) step {
	return step{
		name: "personal_info",
		probe: func(f *Form) bool {
			return f.Has("first_name", "first-name", "given-name", "name", "email")
		},
		fill: func(f *Form) error {
			if !f.Fill(FirstName(p), "first_name", "first-name", "given-name", "firstname") {
				f.Fill(p.Name, "full_name", "full-name", "your name", "name")
			}
			f.Fill(LastName(p), "last_name", "last-name", "family-name", "lastname")
			f.Fill(p.Email, "email")
			f.Fill(p.Phone, "phone", "tel")
			f.Fill(p.Address, "address", "street")
			f.Fill(p.CityStateZip, "city", "location")
			f.Fill(p.LinkedInURL, "linkedin")
			f.Fill(p.GitHubURL, "github")
			f.Fill(p.PortfolioURL, "portfolio", "website", "url")
			return nil
		},
	}
}

// resumeStep attaches the resume reference. File controls cannot be driven
// over a form post, so only link/text accessors are filled; a bare file input
// is left for the portal's resume-optional path.
func resumeStep(p engine.ApplicantProfile) step {
	return step{
		name: "resume",
		probe: func(f *Form) bool {
			return f.Has("resume", "cv")
		},
		fill: func(f *Form) error {
			f.Fill(p.ResumePath, "resume_url", "resume_link", "resume_text", "resume", "cv")
			return nil
		},
	}
}

// coverLetterStep renders the template against the job and fills whatever
// cover-letter field exists.
func coverLetterStep(p engine.ApplicantProfile, job engine.JobListing) step {
	return step{
		name: "cover_letter",
		probe: func(f *Form) bool {
			return f.Has("cover_letter", "cover-letter", "coverletter")
		},
		fill: func(f *Form) error {
			if p.CoverLetterTemplate == "" {
				return nil
			}
			letter := GenerateCoverLetter(p.CoverLetterTemplate, p, job)
			f.Fill(letter, "cover_letter", "cover-letter", "coverletter")
			return nil
		},
	}
}

// workHistoryStep fills the most recent position into current-employment
// fields. Portals with repeating sections take the rest through their own
// "add another" controls, which a form post cannot reach.
func workHistoryStep(p engine.ApplicantProfile) step {
	return step{
		name: "work_history",
		probe: func(f *Form) bool {
			return f.Has("employer", "current_company", "job_title", "work_experience")
		},
		fill: func(f *Form) error {
			if len(p.WorkHistory) == 0 {
				return nil
			}
			latest := p.WorkHistory[0]
			f.Fill(latest.Company, "employer", "current_company", "company")
			f.Fill(latest.Title, "job_title", "current_title", "title")
			return nil
		},
	}
}

// educationStep fills school/degree fields from the first education entry.
func educationStep(p engine.ApplicantProfile) step {
	return step{
		name: "education",
		probe: func(f *Form) bool {
			return f.Has("school", "university", "degree", "education")
		},
		fill: func(f *Form) error {
			if len(p.Education) == 0 {
				f.Fill(HighestEducation(p), "education")
				return nil
			}
			first := p.Education[0]
			f.Fill(first.School, "school", "university", "institution")
			f.Fill(first.Degree, "degree")
			f.Fill(first.Field, "discipline", "field_of_study", "major")
			return nil
		},
	}
}

// skillsStep fills a comma-joined skill list.
func skillsStep(p engine.ApplicantProfile) step {
	return step{
		name: "skills",
		probe: func(f *Form) bool {
			return f.Has("skills")
		},
		fill: func(f *Form) error {
			f.Fill(strings.Join(p.Skills, ", "), "skills")
			return nil
		},
	}
}

// authorizationStep fills work-eligibility controls found by accessor rather
// than by label, so unlabeled widgets the question scan cannot pair still get
// answered. Sponsorship asks the inverse of authorization.
func authorizationStep(p engine.ApplicantProfile) step {
	return step{
		name: "authorization",
		probe: func(f *Form) bool {
			return f.Has("work_authorization", "authorized", "sponsorship", "visa", "relocat")
		},
		fill: func(f *Form) error {
			f.FillBool(p.WorkAuthorization, "work_authorization", "authorized_to_work", "eligible_to_work")
			f.FillBool(!p.WorkAuthorization, "sponsorship", "require_visa", "visa_sponsorship")
			f.FillBool(p.WillingToRelocate, "relocat")
			return nil
		},
	}
}

// questionsStep answers the screening questions present on the page through
// the keyword rule table; unresolved questions keep their defaults.
func questionsStep(p engine.ApplicantProfile) step {
	return step{
		name: "questions",
		fill: func(f *Form) error {
			for _, q := range f.Questions() {
				answer, ok := AnswerQuestion(p, q)
				if !ok {
					slog.Debug("apply: question left at default", slog.String("label", engine.TruncateRunes(q.Label, 80, "...")))
					continue
				}
				f.Set(q.Name, answer)
			}
			return nil
		},
	}
}
