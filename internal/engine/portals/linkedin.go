package portals

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

const linkedInLoginPage = "https://www.linkedin.com/login"

// LinkedInApply handles linkedin.com postings through Easy Apply. The portal
// requires an authenticated session, so the adapter signs in first with the
// credentials the orchestrator resolved for this portal.
type LinkedInApply struct{}

func (l *LinkedInApply) Kind() Kind { return KindLinkedIn }

func (l *LinkedInApply) Apply(ctx context.Context, session *engine.Session, profile engine.ApplicantProfile, job engine.JobListing) error {
	username := profile.Credentials["username"]
	password := profile.Credentials["password"]
	if username == "" || password == "" {
		return fmt.Errorf("linkedin requires stored credentials")
	}
	if err := linkedInLogin(ctx, session, username, password); err != nil {
		return fmt.Errorf("linkedin login: %w", err)
	}

	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		questionsStep(profile),
	}
	confirmed := bodyContainsAny(
		"application sent",
		"your application was sent",
		"applied",
	)
	return runFlow(ctx, session, job.ApplicationURL,
		[]string{"form.jobs-easy-apply-form", "form[action*='easy-apply']", "form"},
		steps, confirmed, 0)
}

// linkedInLogin posts the credentials through the standard login form and
// verifies the session left the guest surface.
func linkedInLogin(ctx context.Context, session *engine.Session, username, password string) error {
	page, err := session.Navigate(ctx, linkedInLoginPage)
	if err != nil {
		return err
	}
	doc, err := page.Doc()
	if err != nil {
		return err
	}
	form := FindForm(doc, page.URL, "form.login__form", "form[action*='login']", "form")
	if form == nil {
		return fmt.Errorf("login form not found")
	}
	form.Fill(username, "session_key", "username", "email")
	form.Fill(password, "session_password", "password")

	landed, err := session.SubmitForm(ctx, form.Action, form.Values)
	if err != nil {
		return err
	}
	landedDoc, err := landed.Doc()
	if err != nil {
		return err
	}
	if probe := FindForm(landedDoc, landed.URL, "form.login__form"); probe != nil {
		return fmt.Errorf("credentials rejected")
	}
	return nil
}
