package status

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	successHeading = "Certificate check results"

	msgInvalidCertificate = "Your Certificate number is invalid"
	msgFixErrors          = "Website validation failed: Please fix the following errors"
	msgDetailsMismatch    = "The details entered do not match those held on our system. Please check and try again."
	msgUnexpectedPage     = "Unexpected page content"
	msgIncomplete         = "Incomplete result from website"
	msgCertMismatch       = "Certificate number mismatch"
)

var (
	reInvalidCertificate = regexp.MustCompile(`(?i)your certificate number is invalid`)
	reFixErrors          = regexp.MustCompile(`(?i)please fix the following errors`)
	reDetailsMismatch    = regexp.MustCompile(`(?i)details entered do not match|do not match those held`)
	reMismatchSentence   = regexp.MustCompile(`(?i)details entered do not match[^.]*\.`)

	rePersonName = regexp.MustCompile(`(?i)Certificate for\s+([^,]+),`)
	reDOB        = regexp.MustCompile(`(?i)Date of Birth:\s*(\d{2})/(\d{2})/(\d{4})`)
	reCertNumber = regexp.MustCompile(`(?i)Certificate Number\s*(\d{12})`)
	rePrintDate  = regexp.MustCompile(`(?i)Certificate Print Date:\s*(\d{2})/(\d{2})/(\d{4})`)
	reSuccess    = regexp.MustCompile(`(?i)` + successHeading)
)

// outcomeSentences are matched verbatim, in priority order.
var outcomeSentences = []struct {
	text    string
	outcome Outcome
}{
	{"This Certificate did not reveal any information and remains current as no further information has been identified since its issue.", OutcomeClearAndCurrent},
	{"This Certificate remains current as no further information has been identified since its issue.", OutcomeCurrent},
	{"This Certificate is no longer current. Please apply for a new DBS check to get the most up to date information.", OutcomeNotCurrent},
}

// Classify turns the final page of a flow into a verdict. rawCertificateNumber
// is compared byte for byte with the number printed on the page; an empty
// value skips the comparison.
func Classify(html, finalURL, rawCertificateNumber string) *FlowResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &FlowResult{
			Error:      msgUnexpectedPage,
			ErrorKind:  ErrorKindGuardrail,
			ResultHTML: html,
			FinalURL:   finalURL,
		}
	}

	mainText := doc.Find("main").Text()
	bodyText := doc.Find("body").Text()
	combined := collapse(mainText) + " " + collapse(bodyText)

	resultText := strings.TrimSpace(mainText)
	if resultText == "" {
		resultText = strings.TrimSpace(bodyText)
	}
	title := strings.TrimSpace(doc.Find("title").Text())
	summary := strings.TrimSpace(doc.Find("h1, h2").First().Text())

	failure := func(msg string, kind ErrorKind, structured *StructuredResult) *FlowResult {
		return &FlowResult{
			Error:      msg,
			ErrorKind:  kind,
			ResultText: resultText,
			ResultHTML: html,
			FinalURL:   finalURL,
			Structured: structured,
		}
	}

	switch {
	case reInvalidCertificate.MatchString(combined):
		return failure(msgInvalidCertificate, ErrorKindWebsiteValidation, nil)
	case reFixErrors.MatchString(combined):
		return failure(msgFixErrors, ErrorKindWebsiteValidation, nil)
	case reDetailsMismatch.MatchString(combined):
		msg := msgDetailsMismatch
		if m := reMismatchSentence.FindString(combined); m != "" {
			msg = strings.TrimSpace(m)
		}
		return failure(msg, ErrorKindWebsiteValidation, nil)
	}

	structured := extractStructured(combined)

	switch {
	case !reSuccess.MatchString(summary) && !reSuccess.MatchString(title):
		return failure(msgUnexpectedPage, ErrorKindGuardrail, structured)
	case !structured.complete():
		return failure(msgIncomplete, ErrorKindGuardrail, structured)
	case rawCertificateNumber != "" && structured.CertificateNumber != rawCertificateNumber:
		return failure(msgCertMismatch, ErrorKindGuardrail, structured)
	}

	return &FlowResult{
		OK:         true,
		Title:      title,
		Summary:    summary,
		ResultText: resultText,
		ResultHTML: html,
		FinalURL:   finalURL,
		Structured: structured,
	}
}

func extractStructured(combined string) *StructuredResult {
	s := &StructuredResult{}
	if m := rePersonName.FindStringSubmatch(combined); m != nil {
		s.PersonName = strings.TrimSpace(m[1])
	}
	if m := reDOB.FindStringSubmatch(combined); m != nil {
		s.DateOfBirth = m[1] + "/" + m[2] + "/" + m[3]
	}
	if m := reCertNumber.FindStringSubmatch(combined); m != nil {
		s.CertificateNumber = m[1]
	}
	if m := rePrintDate.FindStringSubmatch(combined); m != nil {
		s.CertificatePrintDate = m[1] + "/" + m[2] + "/" + m[3]
	}
	for _, o := range outcomeSentences {
		if strings.Contains(combined, o.text) {
			s.OutcomeText = o.text
			s.Outcome = o.outcome
			break
		}
	}
	return s
}

// collapse folds every whitespace run, including non-breaking spaces, into a
// single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
