package portals

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// answerRule pairs a label predicate with an answer strategy. Rules are
// evaluated in order; the first match wins. Keyword matching against
// adversarial third-party markup is inherently fragile, so new portals get
// new rows here rather than new branching code.
type answerRule struct {
	intent string
	match  func(label string) bool
	answer func(p engine.ApplicantProfile, q Question) string
}

func labelContains(fragments ...string) func(string) bool {
	return func(label string) bool {
		for _, frag := range fragments {
			if strings.Contains(label, frag) {
				return true
			}
		}
		return false
	}
}

var answerRules = []answerRule{
	{
		intent: "sponsorship",
		match:  labelContains("sponsor", "visa"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			// Sponsorship questions invert the authorization flag.
			return boolAnswer(q, !p.WorkAuthorization)
		},
	},
	{
		intent: "work_authorization",
		match:  labelContains("authorized", "authorization", "legally", "eligible to work"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			return boolAnswer(q, p.WorkAuthorization)
		},
	},
	{
		intent: "relocation",
		match:  labelContains("relocat", "willing to move"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			return boolAnswer(q, p.WillingToRelocate)
		},
	},
	{
		intent: "salary",
		match:  labelContains("salary", "compensation", "pay expectation", "desired pay"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			if p.SalaryExpectation > 0 {
				return fmt.Sprintf("%d", p.SalaryExpectation)
			}
			return "Negotiable"
		},
	},
	{
		intent: "start_date",
		match:  labelContains("start date", "available to start", "availability", "when can you"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			if p.AvailableStartDate != "" {
				return p.AvailableStartDate
			}
			return "Immediately"
		},
	},
	{
		intent: "referral",
		match:  labelContains("hear about", "referr", "how did you find"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			if p.ReferralSource != "" {
				return p.ReferralSource
			}
			return "Online job search"
		},
	},
	{
		intent: "years_experience",
		match:  labelContains("years of experience", "years experience", "how many years"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			return fmt.Sprintf("%d", YearsOfExperience(p))
		},
	},
	{
		intent: "education_level",
		match:  labelContains("education", "degree", "highest level"),
		answer: func(p engine.ApplicantProfile, q Question) string {
			return matchOption(q, HighestEducation(p))
		},
	},
}

// AnswerQuestion resolves a screening question against the rule table.
// Returns ("", false) when no rule matches and the question is not
// yes/no-shaped — the field is then left at its default.
func AnswerQuestion(p engine.ApplicantProfile, q Question) (string, bool) {
	label := strings.ToLower(q.Label)
	for _, rule := range answerRules {
		if rule.match(label) {
			return rule.answer(p, q), true
		}
	}
	// Generic fallback: answer yes/no-shaped questions affirmatively.
	if isYesNoShaped(q, label) {
		return boolAnswer(q, true), true
	}
	return "", false
}

// isYesNoShaped detects yes/no questions by their options or phrasing.
func isYesNoShaped(q Question, label string) bool {
	for _, opt := range q.Options {
		if strings.EqualFold(opt, "yes") || strings.EqualFold(opt, "no") {
			return true
		}
	}
	if q.Kind != "text" && q.Kind != "radio" && q.Kind != "select" {
		return false
	}
	for _, prefix := range []string{"are you", "do you", "can you", "will you", "have you", "did you"} {
		if strings.HasPrefix(label, prefix) {
			return true
		}
	}
	return false
}

// boolAnswer maps a boolean onto the question's own options when present.
func boolAnswer(q Question, value bool) string {
	want := "no"
	if value {
		want = "yes"
	}
	for _, opt := range q.Options {
		if strings.EqualFold(opt, want) || strings.HasPrefix(strings.ToLower(opt), want) {
			return opt
		}
	}
	if value {
		return "Yes"
	}
	return "No"
}

// matchOption picks the question option closest to the wanted answer, falling
// back to the raw answer for free-text controls.
func matchOption(q Question, want string) string {
	lower := strings.ToLower(want)
	for _, opt := range q.Options {
		optLower := strings.ToLower(opt)
		if strings.Contains(optLower, lower) || strings.Contains(lower, optLower) {
			return opt
		}
	}
	return want
}
