package status

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"statuscheck-go/form"
)

// DOB is a date of birth as entered by the caller.
type DOB struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// ApplicantDetails is the input of a status check.
type ApplicantDetails struct {
	OrganisationName  string `json:"organisationName"`
	RequesterForename string `json:"requesterForename"`
	RequesterSurname  string `json:"requesterSurname"`
	CertificateNumber string `json:"certificateNumber"`
	ApplicantSurname  string `json:"applicantSurname"`
	DOB               DOB    `json:"dob"`
}

// Normalize returns a copy with whitespace trimmed, the certificate number
// reduced to digits, the applicant surname upper-cased and the day and month
// zero-padded to two digits. Normalize is idempotent.
func (d ApplicantDetails) Normalize() ApplicantDetails {
	return ApplicantDetails{
		OrganisationName:  strings.TrimSpace(d.OrganisationName),
		RequesterForename: strings.TrimSpace(d.RequesterForename),
		RequesterSurname:  strings.TrimSpace(d.RequesterSurname),
		CertificateNumber: digitsOnly(d.CertificateNumber),
		ApplicantSurname:  strings.ToUpper(strings.TrimSpace(d.ApplicantSurname)),
		DOB: DOB{
			Day:   padTwo(strings.TrimSpace(d.DOB.Day)),
			Month: padTwo(strings.TrimSpace(d.DOB.Month)),
			Year:  strings.TrimSpace(d.DOB.Year),
		},
	}
}

// Validate returns one message per missing field, or nil.
func (d ApplicantDetails) Validate() []string {
	var errs []string
	required := []struct{ name, value string }{
		{"organisationName", d.OrganisationName},
		{"requesterForename", d.RequesterForename},
		{"requesterSurname", d.RequesterSurname},
		{"certificateNumber", d.CertificateNumber},
		{"applicantSurname", d.ApplicantSurname},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, f.name+" is required")
		}
	}
	if d.DOB.Day == "" || d.DOB.Month == "" || d.DOB.Year == "" {
		errs = append(errs, "dob.day, dob.month, and dob.year are all required")
	}
	return errs
}

// fields exposes the details under the logical keys the form mappings use.
func (d ApplicantDetails) fields() map[string]string {
	return map[string]string{
		form.KeyOrganisationName:  d.OrganisationName,
		form.KeyRequesterForename: d.RequesterForename,
		form.KeyRequesterSurname:  d.RequesterSurname,
		form.KeyCertificateNumber: d.CertificateNumber,
		form.KeyApplicantSurname:  d.ApplicantSurname,
		form.KeyDOBDay:            d.DOB.Day,
		form.KeyDOBMonth:          d.DOB.Month,
		form.KeyDOBYear:           d.DOB.Year,
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func padTwo(s string) string {
	switch len([]rune(s)) {
	case 0:
		return "00"
	case 1:
		return "0" + s
	default:
		return s
	}
}

// FlowStep records one fetch or submission.
type FlowStep struct {
	URL        string `json:"url"`
	HTTPStatus int    `json:"httpStatus"`
}

// Outcome is the verdict printed on the result page.
type Outcome string

const (
	OutcomeNone            Outcome = ""
	OutcomeClearAndCurrent Outcome = "clear_and_current"
	OutcomeCurrent         Outcome = "current"
	OutcomeNotCurrent      Outcome = "not_current"
)

// MarshalJSON encodes the empty outcome as null.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o == OutcomeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(o))
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = OutcomeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*o = Outcome(s)
	return nil
}

// StructuredResult holds the fields extracted from the result page.
type StructuredResult struct {
	PersonName           string  `json:"personName,omitempty"`
	DateOfBirth          string  `json:"dateOfBirth,omitempty"`
	CertificateNumber    string  `json:"certificateNumber,omitempty"`
	CertificatePrintDate string  `json:"certificatePrintDate,omitempty"`
	OutcomeText          string  `json:"outcomeText,omitempty"`
	Outcome              Outcome `json:"outcome"`
}

// complete reports whether every core field and a verdict were found.
func (s StructuredResult) complete() bool {
	return s.PersonName != "" && s.DateOfBirth != "" && s.CertificateNumber != "" &&
		s.CertificatePrintDate != "" && s.Outcome != OutcomeNone
}

// ErrorKind classifies a failed flow.
type ErrorKind string

const (
	ErrorKindTransport         ErrorKind = "transport"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindRedirect          ErrorKind = "redirect"
	ErrorKindFormNotFound      ErrorKind = "form_not_found"
	ErrorKindWebsiteValidation ErrorKind = "website_validation"
	ErrorKindGuardrail         ErrorKind = "guardrail"
)

// FlowResult is the outcome of one status check. Failures are reported
// through OK and Error, never as a Go error.
type FlowResult struct {
	OK         bool              `json:"ok"`
	Error      string            `json:"error,omitempty"`
	ErrorKind  ErrorKind         `json:"errorKind,omitempty"`
	Title      string            `json:"title,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Steps      []FlowStep        `json:"steps"`
	ResultText string            `json:"resultText,omitempty"`
	ResultHTML string            `json:"resultHtml,omitempty"`
	FinalURL   string            `json:"finalUrl,omitempty"`
	Structured *StructuredResult `json:"structured,omitempty"`
}

// Verdict is the short form of a FlowResult: the structured fields only.
type Verdict struct {
	OK                   bool    `json:"ok"`
	PersonName           string  `json:"personName,omitempty"`
	DateOfBirth          string  `json:"dateOfBirth,omitempty"`
	CertificateNumber    string  `json:"certificateNumber,omitempty"`
	CertificatePrintDate string  `json:"certificatePrintDate,omitempty"`
	Outcome              Outcome `json:"outcome"`
	OutcomeText          string  `json:"outcomeText,omitempty"`
}

// Verdict flattens the result for callers that do not want the page.
func (r *FlowResult) Verdict() Verdict {
	v := Verdict{OK: r.OK}
	if s := r.Structured; s != nil {
		v.PersonName = s.PersonName
		v.DateOfBirth = s.DateOfBirth
		v.CertificateNumber = s.CertificateNumber
		v.CertificatePrintDate = s.CertificatePrintDate
		v.Outcome = s.Outcome
		v.OutcomeText = s.OutcomeText
	}
	return v
}

// Completion describes a finished flow to observers.
type Completion struct {
	ID        uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Details   ApplicantDetails
	Result    *FlowResult
}

// Observer is notified after every flow. Errors are logged by the checker.
type Observer interface {
	Observe(ctx context.Context, c Completion) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, c Completion) error

func (f ObserverFunc) Observe(ctx context.Context, c Completion) error { return f(ctx, c) }

