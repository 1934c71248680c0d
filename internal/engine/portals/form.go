package portals

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is one probed HTML form: its submit target plus the payload being
// assembled. Hidden inputs keep their server-rendered defaults, the way a
// browser would submit them.
type Form struct {
	Action string
	Method string
	Values url.Values

	sel *goquery.Selection
}

// FindForm probes a page for the first form matching any of the selectors
// (in order). Returns nil when no selector matches — absence of a section is
// a skip, not an error.
func FindForm(doc *goquery.Document, pageURL string, selectors ...string) *Form {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		f := &Form{
			Method: "POST",
			Values: url.Values{},
			sel:    sel,
		}
		if action, ok := sel.Attr("action"); ok {
			f.Action = resolveURL(pageURL, action)
		} else {
			f.Action = pageURL
		}
		if method, ok := sel.Attr("method"); ok && method != "" {
			f.Method = strings.ToUpper(method)
		}
		// Carry server-rendered hidden values (CSRF tokens, posting ids).
		sel.Find(`input[type="hidden"][name]`).Each(func(_ int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			value, _ := s.Attr("value")
			f.Values.Set(name, value)
		})
		return f
	}
	return nil
}

// Has reports whether the form contains a control matched by any accessor.
func (f *Form) Has(accessors ...string) bool {
	return f.control(accessors...) != nil
}

// Fill locates the first control matched by any accessor and sets it to
// value. Unmatched accessors leave the form untouched; the return value lets
// callers distinguish filled from skipped.
func (f *Form) Fill(value string, accessors ...string) bool {
	ctl := f.control(accessors...)
	if ctl == nil {
		return false
	}
	name, _ := ctl.Attr("name")
	if name == "" {
		return false
	}
	f.Values.Set(name, value)
	return true
}

// FillBool fills a yes/no control. Select controls get the matching option
// value; everything else gets Yes/No text.
func (f *Form) FillBool(value bool, accessors ...string) bool {
	ctl := f.control(accessors...)
	if ctl == nil {
		return false
	}
	name, _ := ctl.Attr("name")
	if name == "" {
		return false
	}
	f.Values.Set(name, yesNoValue(ctl, value))
	return true
}

// Set writes a raw name/value pair, for controls probed outside the accessor
// heuristics (radio groups, custom widgets).
func (f *Form) Set(name, value string) {
	f.Values.Set(name, value)
}

// control finds the first input/textarea/select whose name, id, placeholder,
// aria-label or autocomplete attribute contains any accessor fragment
// (case-insensitive). Remote markup is unversioned, so matching is
// deliberately loose.
func (f *Form) control(accessors ...string) *goquery.Selection {
	var found *goquery.Selection
	f.sel.Find("input, textarea, select").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if typ, _ := s.Attr("type"); typ == "hidden" || typ == "submit" || typ == "button" {
			return true
		}
		haystack := strings.ToLower(strings.Join([]string{
			s.AttrOr("name", ""),
			s.AttrOr("id", ""),
			s.AttrOr("placeholder", ""),
			s.AttrOr("aria-label", ""),
			s.AttrOr("autocomplete", ""),
			s.AttrOr("data-automation-id", ""),
		}, " "))
		for _, accessor := range accessors {
			if strings.Contains(haystack, strings.ToLower(accessor)) {
				found = s
				return false
			}
		}
		return true
	})
	return found
}

// yesNoValue picks the submit value for a boolean control. For selects and
// radio groups it prefers an option whose text or value looks like yes/no;
// otherwise it falls back to literal text.
func yesNoValue(ctl *goquery.Selection, value bool) string {
	want := "no"
	if value {
		want = "yes"
	}
	if goquery.NodeName(ctl) == "select" {
		result := ""
		ctl.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
			text := strings.ToLower(strings.TrimSpace(opt.Text()))
			val := opt.AttrOr("value", "")
			if strings.HasPrefix(text, want) || strings.EqualFold(val, want) {
				if val != "" {
					result = val
				} else {
					result = opt.Text()
				}
				return false
			}
			return true
		})
		if result != "" {
			return result
		}
	}
	if value {
		return "Yes"
	}
	return "No"
}

// Question is one free-text, select, or radio screening question probed out
// of a form: the visible label plus the control it feeds.
type Question struct {
	Label   string
	Name    string
	Kind    string // "text", "textarea", "select", "radio"
	Options []string
}

// Questions inventories the unanswered screening questions in the form,
// pairing each labelled control with its label text.
func (f *Form) Questions() []Question {
	var out []Question
	seen := make(map[string]bool)

	f.sel.Find("label").Each(func(_ int, lab *goquery.Selection) {
		label := strings.TrimSpace(lab.Text())
		if label == "" {
			return
		}

		var ctl *goquery.Selection
		if forID, ok := lab.Attr("for"); ok && forID != "" {
			ctl = f.sel.Find("#" + cssEscape(forID)).First()
		}
		if ctl == nil || ctl.Length() == 0 {
			ctl = lab.Find("input, textarea, select").First()
		}
		if ctl == nil || ctl.Length() == 0 {
			ctl = lab.Parent().Find("input, textarea, select").First()
		}
		if ctl.Length() == 0 {
			return
		}

		name := ctl.AttrOr("name", "")
		if name == "" || seen[name] || f.Values.Get(name) != "" {
			return
		}
		seen[name] = true

		q := Question{Label: label, Name: name}
		switch goquery.NodeName(ctl) {
		case "textarea":
			q.Kind = "textarea"
		case "select":
			q.Kind = "select"
			ctl.Find("option").Each(func(_ int, opt *goquery.Selection) {
				if text := strings.TrimSpace(opt.Text()); text != "" {
					q.Options = append(q.Options, text)
				}
			})
		default:
			typ := ctl.AttrOr("type", "text")
			if typ == "radio" {
				q.Kind = "radio"
				f.sel.Find(`input[type="radio"][name="` + name + `"]`).Each(func(_ int, r *goquery.Selection) {
					if v := r.AttrOr("value", ""); v != "" {
						q.Options = append(q.Options, v)
					}
				})
			} else if typ == "checkbox" || typ == "file" || typ == "hidden" {
				return
			} else {
				q.Kind = "text"
			}
		}
		out = append(out, q)
	})
	return out
}

// SubmitControlPresent probes for any next/submit control inside the form.
func (f *Form) SubmitControlPresent() bool {
	return f.sel.Find(`button[type="submit"], input[type="submit"], button`).Length() > 0
}

// resolveURL resolves a possibly-relative form action against the page URL.
func resolveURL(pageURL, action string) string {
	if action == "" {
		return pageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return action
	}
	ref, err := url.Parse(action)
	if err != nil {
		return pageURL
	}
	return base.ResolveReference(ref).String()
}

// cssEscape guards literal ids against goquery selector syntax.
func cssEscape(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
