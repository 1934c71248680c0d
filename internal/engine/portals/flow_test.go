package portals

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

const greenhouseFormHTML = `
<html><body>
<form id="application_form" action="https://boards.greenhouse.io/acme/jobs/1/apply" method="post">
  <input type="hidden" name="token" value="gh123">
  <input type="text" name="first_name">
  <input type="text" name="last_name">
  <input type="email" name="email">
  <input type="tel" name="phone">
  <textarea name="cover_letter"></textarea>

  <label for="q_auth">Are you legally authorized to work in the United States?</label>
  <select name="q_auth" id="q_auth">
    <option value="Yes">Yes</option>
    <option value="No">No</option>
  </select>

  <input type="submit" value="Submit Application">
</form>
</body></html>`

func applyProfile() engine.ApplicantProfile {
	return engine.ApplicantProfile{
		Name:                "Grace Hopper",
		Email:               "grace@example.com",
		Phone:               "+1 555 0100",
		WorkAuthorization:   true,
		CoverLetterTemplate: "Dear [Hiring Manager's Name], I want the [Job Title] role at [Company Name].",
	}
}

func TestStepsFillGreenhouseForm(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(greenhouseFormHTML))
	if err != nil {
		t.Fatal(err)
	}
	form := FindForm(doc, "https://boards.greenhouse.io/acme/jobs/1", "form#application_form")
	if form == nil {
		t.Fatal("form not found")
	}

	profile := applyProfile()
	job := engine.JobListing{
		Title:   "Compiler Engineer",
		Company: engine.Company{Name: "Acme"},
	}

	steps := []step{
		personalInfoStep(profile),
		resumeStep(profile),
		coverLetterStep(profile, job),
		questionsStep(profile),
	}
	for _, st := range steps {
		if st.probe != nil && !st.probe(form) {
			continue
		}
		if err := st.fill(form); err != nil {
			t.Fatalf("step %s: %v", st.name, err)
		}
	}

	if got := form.Values.Get("first_name"); got != "Grace" {
		t.Errorf("first_name = %q", got)
	}
	if got := form.Values.Get("last_name"); got != "Hopper" {
		t.Errorf("last_name = %q", got)
	}
	if got := form.Values.Get("email"); got != "grace@example.com" {
		t.Errorf("email = %q", got)
	}
	letter := form.Values.Get("cover_letter")
	if !strings.Contains(letter, "Compiler Engineer role at Acme") {
		t.Errorf("cover letter not rendered: %q", letter)
	}
	if got := form.Values.Get("q_auth"); got != "Yes" {
		t.Errorf("authorization question = %q, want Yes", got)
	}
	// Server-rendered token survives the fills.
	if got := form.Values.Get("token"); got != "gh123" {
		t.Errorf("token = %q", got)
	}
	if !form.SubmitControlPresent() {
		t.Error("submit control not detected")
	}
}

func TestAuthorizationStepFillsUnlabeledControls(t *testing.T) {
	// No <label> pairs here, so the question scan cannot reach these; the
	// authorization step finds them by accessor.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
<form action="/apply">
  <select name="work_authorization" data-automation-id="work_authorization">
    <option value="yes">Yes</option>
    <option value="no">No</option>
  </select>
  <select name="visa_sponsorship">
    <option value="Yes">Yes</option>
    <option value="No">No</option>
  </select>
  <input type="text" name="relocation" placeholder="Willing to relocate?">
  <button type="submit">Next</button>
</form>`))
	if err != nil {
		t.Fatal(err)
	}
	form := FindForm(doc, "https://jobs.example.com/apply", "form")
	if form == nil {
		t.Fatal("form not found")
	}

	profile := applyProfile()
	profile.WillingToRelocate = true
	st := authorizationStep(profile)
	if !st.probe(form) {
		t.Fatal("authorization probe must hit eligibility controls")
	}
	if err := st.fill(form); err != nil {
		t.Fatal(err)
	}

	if got := form.Values.Get("work_authorization"); got != "yes" {
		t.Errorf("work_authorization = %q, want the form's yes option", got)
	}
	// Sponsorship inverts the authorization flag.
	if got := form.Values.Get("visa_sponsorship"); got != "No" {
		t.Errorf("visa_sponsorship = %q, want No", got)
	}
	if got := form.Values.Get("relocation"); got != "Yes" {
		t.Errorf("relocation = %q, want Yes", got)
	}
}

func TestStepProbeSkipsAbsentSections(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<form action="/a"><input type="text" name="email"></form>`))
	if err != nil {
		t.Fatal(err)
	}
	form := FindForm(doc, "https://careers.example.com", "form")

	st := educationStep(applyProfile())
	if st.probe(form) {
		t.Error("education probe must miss a form without education fields")
	}
}

func TestBodyContainsAny(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><h1>Thank You for Applying!</h1></body></html>`))
	if err != nil {
		t.Fatal(err)
	}

	if !bodyContainsAny("thank you for applying")(doc) {
		t.Error("marker match is case-insensitive")
	}
	if bodyContainsAny("application submitted")(doc) {
		t.Error("absent marker must not match")
	}
}

func TestForKindTotal(t *testing.T) {
	kinds := []Kind{KindWorkday, KindGreenhouse, KindLever, KindLinkedIn, KindIndeed, KindGeneric, Kind("unknown")}
	for _, k := range kinds {
		adapter := ForKind(k)
		if adapter == nil {
			t.Fatalf("ForKind(%q) = nil", k)
		}
		if k != Kind("unknown") && adapter.Kind() != k {
			t.Errorf("ForKind(%q).Kind() = %q", k, adapter.Kind())
		}
	}
	if ForKind(Kind("unknown")).Kind() != KindGeneric {
		t.Error("unknown kinds must fall back to generic")
	}
}
