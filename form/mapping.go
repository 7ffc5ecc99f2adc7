package form

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Logical field keys the mappings resolve controls to.
const (
	KeyOrganisationName  = "organisationName"
	KeyRequesterForename = "requesterForename"
	KeyRequesterSurname  = "requesterSurname"
	KeyCertificateNumber = "certificateNumber"
	KeyApplicantSurname  = "applicantSurname"
	KeyDOBDay            = "dob.day"
	KeyDOBMonth          = "dob.month"
	KeyDOBYear           = "dob.year"
)

// Rule matches a control either by exact name or by a keyword found in the
// lower-cased name or label text. An empty Key means the control keeps its own
// value attribute (or "on").
type Rule struct {
	Exact     string
	Keyword   string
	LabelOnly bool
	Key       string
}

func (r Rule) matches(name, label string) bool {
	if r.Exact != "" {
		return name == r.Exact
	}
	if strings.Contains(label, r.Keyword) {
		return true
	}
	return !r.LabelOnly && strings.Contains(strings.ToLower(name), r.Keyword)
}

// Mapping is an ordered rule table applied to the controls of a form.
type Mapping struct {
	Name      string
	Selector  string
	Rules     []Rule
	FirstOnly bool
}

var OrganisationMapping = Mapping{
	Name:     "organisation",
	Selector: "input",
	Rules: []Rule{
		{Exact: "organisationName", Key: KeyOrganisationName},
		{Exact: "forename", Key: KeyRequesterForename},
		{Exact: "surname", Key: KeyRequesterSurname},
		{Keyword: "organisation", Key: KeyOrganisationName},
		{Keyword: "forename", Key: KeyRequesterForename},
		{Keyword: "surname", Key: KeyRequesterSurname},
	},
}

var CertificateMapping = Mapping{
	Name:     "certificate",
	Selector: "input, select",
	Rules: []Rule{
		{Exact: "certificateNumber", Key: KeyCertificateNumber},
		{Exact: "surname", Key: KeyApplicantSurname},
		{Exact: "dayOfBirth", Key: KeyDOBDay},
		{Exact: "monthOfBirth", Key: KeyDOBMonth},
		{Exact: "yearOfBirth", Key: KeyDOBYear},
		{Keyword: "certificate", Key: KeyCertificateNumber},
		{Keyword: "surname", Key: KeyApplicantSurname},
		{Keyword: "day", Key: KeyDOBDay},
		{Keyword: "month", Key: KeyDOBMonth},
		{Keyword: "year", Key: KeyDOBYear},
	},
}

// DeclarationMapping ticks the first checkbox whose label mentions agreement.
// When that checkbox has no name nothing is ticked.
var DeclarationMapping = Mapping{
	Name:     "declaration",
	Selector: `input[type="checkbox"]`,
	Rules: []Rule{
		{Keyword: "agree", LabelOnly: true},
		{Keyword: "legal", LabelOnly: true},
	},
	FirstOnly: true,
}

// Populate evaluates m against the controls of f and returns the overrides
// to apply on top of the seeded fields. Logical keys missing from fields map
// to the empty string.
func Populate(f *Form, m Mapping, fields map[string]string) *Values {
	out := NewValues()
	if f == nil {
		return out
	}
	f.Controls(m.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := s.AttrOr("name", "")
		label := f.LabelFor(s.AttrOr("id", ""))
		for _, r := range m.Rules {
			if !r.matches(name, label) {
				continue
			}
			// A nameless match still counts as the first one; it just has
			// nothing to submit.
			if name == "" {
				return !m.FirstOnly
			}
			if r.Key == "" {
				out.Set(name, s.AttrOr("value", "on"))
			} else {
				out.Set(name, fields[r.Key])
			}
			return !m.FirstOnly
		}
		return true
	})
	return out
}
