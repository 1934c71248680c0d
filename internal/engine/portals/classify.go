// Package portals implements the application-side portal adapters: a URL
// classifier, a shared probe-then-fill-then-advance form engine, and one
// adapter variant per ATS family.
package portals

import "strings"

// Kind identifies the application system behind a job URL.
type Kind string

const (
	KindWorkday    Kind = "workday"
	KindGreenhouse Kind = "greenhouse"
	KindLever      Kind = "lever"
	KindLinkedIn   Kind = "linkedin"
	KindIndeed     Kind = "indeed"
	KindGeneric    Kind = "generic"
)

// kindChecks is the ordered classification table. Order matters: earlier
// fragments win, and the bare "workday" fragment must come after the specific
// hosted-domain forms so it only catches self-hosted tenants.
var kindChecks = []struct {
	fragment string
	kind     Kind
}{
	{"myworkdayjobs.com", KindWorkday},
	{".wd1.", KindWorkday},
	{".wd5.", KindWorkday},
	{"workday", KindWorkday},
	{"greenhouse.io", KindGreenhouse},
	{"lever.co", KindLever},
	{"linkedin.com", KindLinkedIn},
	{"indeed.com", KindIndeed},
}

// Classify maps an application URL to a portal kind. Pure and total: the same
// URL always yields the same kind, and anything unmatched is generic.
func Classify(rawURL string) Kind {
	lower := strings.ToLower(rawURL)
	for _, check := range kindChecks {
		if strings.Contains(lower, check.fragment) {
			return check.kind
		}
	}
	return KindGeneric
}
