package status

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sentenceClear      = "This Certificate did not reveal any information and remains current as no further information has been identified since its issue."
	sentenceCurrent    = "This Certificate remains current as no further information has been identified since its issue."
	sentenceNotCurrent = "This Certificate is no longer current. Please apply for a new DBS check to get the most up to date information."
)

func resultPage(heading, certNumber, outcome string) string {
	return `<html><head><title>` + heading + ` - DBS</title></head><body>
<header>Disclosure and Barring Service</header>
<main>
  <h1>` + heading + `</h1>
  <p>Certificate for   JOHN
     SMITH, issued to Acme Ltd</p>
  <dl>
    <dt>Date of Birth:</dt><dd> 07/03/1990</dd>
    <dt>Certificate Number</dt><dd>` + certNumber + `</dd>
    <dt>Certificate Print Date:</dt><dd>01/02/2024</dd>
  </dl>
  <p>` + outcome + `</p>
</main>
</body></html>`
}

func TestClassifyOutcomes(t *testing.T) {
	cases := []struct {
		sentence string
		want     Outcome
	}{
		{sentenceClear, OutcomeClearAndCurrent},
		{sentenceCurrent, OutcomeCurrent},
		{sentenceNotCurrent, OutcomeNotCurrent},
	}
	for _, tc := range cases {
		t.Run(string(tc.want), func(t *testing.T) {
			html := resultPage("Certificate check results", "001234567890", tc.sentence)
			res := Classify(html, "https://site/final", "001234567890")

			require.True(t, res.OK, res.Error)
			require.NotNil(t, res.Structured)
			assert.Equal(t, tc.want, res.Structured.Outcome)
			assert.Equal(t, tc.sentence, res.Structured.OutcomeText)
			assert.Equal(t, "JOHN SMITH", res.Structured.PersonName)
			assert.Equal(t, "07/03/1990", res.Structured.DateOfBirth)
			assert.Equal(t, "001234567890", res.Structured.CertificateNumber)
			assert.Equal(t, "01/02/2024", res.Structured.CertificatePrintDate)
			assert.Equal(t, "Certificate check results - DBS", res.Title)
			assert.Equal(t, "Certificate check results", res.Summary)
			assert.Equal(t, "https://site/final", res.FinalURL)
			assert.Equal(t, html, res.ResultHTML)
			assert.True(t, strings.HasPrefix(res.ResultText, "Certificate check results"))
		})
	}
}

func TestClassifyOutcomeIsCaseSensitive(t *testing.T) {
	html := resultPage("Certificate check results", "001234567890", strings.ToLower(sentenceCurrent))
	res := Classify(html, "", "001234567890")

	assert.False(t, res.OK)
	assert.Equal(t, "Incomplete result from website", res.Error)
	assert.Equal(t, ErrorKindGuardrail, res.ErrorKind)
	require.NotNil(t, res.Structured)
	assert.Equal(t, OutcomeNone, res.Structured.Outcome)
	assert.Equal(t, "JOHN SMITH", res.Structured.PersonName)
}

func TestClassifyWebsiteValidationSentinels(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"invalid", "Error: YOUR CERTIFICATE NUMBER IS INVALID", "Your Certificate number is invalid"},
		{"fix errors", "There is a problem. Please fix the following errors.", "Website validation failed: Please fix the following errors"},
		{"mismatch sentence", "Sorry, the details entered do not match our records for this applicant. Try again.", "details entered do not match our records for this applicant."},
		{"mismatch fallback", "These values do not match those held", "The details entered do not match those held on our system. Please check and try again."},
		{"priority", "Please fix the following errors. Your certificate number is invalid.", "Your Certificate number is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			html := "<html><body><main><h1>Check a certificate</h1><p>" + tc.text + "</p></main></body></html>"
			res := Classify(html, "https://site/x", "001234567890")

			assert.False(t, res.OK)
			assert.Equal(t, tc.want, res.Error)
			assert.Equal(t, ErrorKindWebsiteValidation, res.ErrorKind)
			assert.Nil(t, res.Structured)
			assert.Equal(t, html, res.ResultHTML)
			assert.Equal(t, "https://site/x", res.FinalURL)
		})
	}
}

func TestClassifyGuardrailOrder(t *testing.T) {
	// Wrong heading wins over the missing fields.
	res := Classify("<html><body><main><h1>Welcome</h1></main></body></html>", "", "")
	assert.Equal(t, "Unexpected page content", res.Error)
	assert.Equal(t, ErrorKindGuardrail, res.ErrorKind)

	// Heading present but nothing extracted.
	res = Classify("<html><body><main><h2>certificate CHECK results</h2></main></body></html>", "", "")
	assert.Equal(t, "Incomplete result from website", res.Error)

	// Everything present but the number differs.
	res = Classify(resultPage("Certificate check results", "001234567890", sentenceClear), "", "009999999999")
	assert.Equal(t, "Certificate number mismatch", res.Error)
	require.NotNil(t, res.Structured)
	assert.Equal(t, "001234567890", res.Structured.CertificateNumber)
}

func TestClassifyComparesRawCertificateNumber(t *testing.T) {
	html := resultPage("Certificate check results", "001234567890", sentenceClear)

	assert.True(t, Classify(html, "", "").OK)
	assert.True(t, Classify(html, "", "001234567890").OK)

	res := Classify(html, "", "0012 3456 7890")
	assert.False(t, res.OK)
	assert.Equal(t, "Certificate number mismatch", res.Error)
}

func TestClassifyHeadingFromTitleOnly(t *testing.T) {
	html := strings.Replace(resultPage("Certificate check results", "001234567890", sentenceClear),
		"<h1>Certificate check results</h1>", "<h1>Your result</h1>", 1)
	res := Classify(html, "", "001234567890")
	assert.True(t, res.OK, res.Error)
	assert.Equal(t, "Your result", res.Summary)
}

func TestClassifyResultTextFallsBackToBody(t *testing.T) {
	res := Classify("<html><body><h1>Hello</h1>\n<p>world</p></body></html>", "", "")
	assert.Equal(t, "Hello\nworld", res.ResultText)
}

func TestClassifyCollapsesNonBreakingSpaces(t *testing.T) {
	html := resultPage("Certificate check results", "001234567890",
		strings.ReplaceAll(sentenceCurrent, " ", "&nbsp;"))
	res := Classify(html, "", "")
	require.True(t, res.OK, res.Error)
	assert.Equal(t, OutcomeCurrent, res.Structured.Outcome)
}

func TestStructuredResultJSONOutcomeNull(t *testing.T) {
	b, err := json.Marshal(StructuredResult{PersonName: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"personName":"A","outcome":null}`, string(b))

	b, err = json.Marshal(StructuredResult{Outcome: OutcomeNotCurrent})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"not_current"}`, string(b))

	var s StructuredResult
	require.NoError(t, json.Unmarshal([]byte(`{"outcome":null}`), &s))
	assert.Equal(t, OutcomeNone, s.Outcome)
}
