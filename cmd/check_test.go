package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statuscheck-go/status"
)

func TestParseDOB(t *testing.T) {
	tests := []struct {
		in      string
		want    status.DOB
		wantErr bool
	}{
		{in: "7/3/1990", want: status.DOB{Day: "7", Month: "3", Year: "1990"}},
		{in: "27/05/1994", want: status.DOB{Day: "27", Month: "05", Year: "1994"}},
		{in: " 1/1/2000 ", want: status.DOB{Day: "1", Month: "1", Year: "2000"}},
		{in: "1990-03-07", wantErr: true},
		{in: "7/3/90", wantErr: true},
		{in: "123/1/1990", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDOB(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckOptionsFromFlags(t *testing.T) {
	o := checkOptions{
		organisationName:  "Acme Ltd",
		requesterForename: "Jane",
		requesterSurname:  "Doe",
		certificateNumber: "001234567890",
		applicantSurname:  "SMITH",
		day:               "7",
		month:             "3",
		year:              "1990",
	}
	d, err := o.details()
	require.NoError(t, err)
	assert.Equal(t, status.DOB{Day: "7", Month: "3", Year: "1990"}, d.DOB)
	assert.Empty(t, d.Validate())

	o.dob = "27/5/1994"
	d, err = o.details()
	require.NoError(t, err)
	assert.Equal(t, status.DOB{Day: "27", Month: "5", Year: "1994"}, d.DOB)

	o.dob = "yesterday"
	_, err = o.details()
	assert.Error(t, err)
}

func TestCheckFlagGroups(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "dob alone", args: []string{"--dob", "7/3/1990"}},
		{name: "date parts", args: []string{"--day", "7", "--month", "3", "--year", "1990"}},
		{name: "dob and day", args: []string{"--dob", "7/3/1990", "--day", "8"}, wantErr: true},
		{name: "dob and month", args: []string{"--dob", "7/3/1990", "--month", "4"}, wantErr: true},
		{name: "dob and year", args: []string{"--dob", "7/3/1990", "--year", "1991"}, wantErr: true},
		{name: "json and certificate", args: []string{"--json", "in.json", "--certificate-number", "1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{Use: "check"}
			var o checkOptions
			registerCheckFlags(c, &o)
			require.NoError(t, c.ParseFlags(tt.args))

			err := c.ValidateFlagGroups()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckOptionsFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"organisationName": "Acme Ltd",
		"requesterForename": "Jane",
		"requesterSurname": "Doe",
		"certificateNumber": "001234567890",
		"applicantSurname": "SMITH",
		"dob": {"day": 7, "month": 3, "year": 1990}
	}`), 0o600))

	d, err := checkOptions{jsonPath: path, organisationName: "ignored"}.details()
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", d.OrganisationName)
	assert.Equal(t, status.DOB{Day: "7", Month: "3", Year: "1990"}, d.DOB)

	_, err = checkOptions{jsonPath: filepath.Join(t.TempDir(), "missing.json")}.details()
	assert.Error(t, err)
}

func TestPrintCheck(t *testing.T) {
	result := &status.FlowResult{
		OK:         true,
		ResultHTML: "<html></html>",
		Steps:      []status.FlowStep{{URL: "https://site.test/a", HTTPStatus: 200}},
		Structured: &status.StructuredResult{PersonName: "JOHN SMITH", Outcome: status.OutcomeClearAndCurrent},
	}
	details := status.ApplicantDetails{ApplicantSurname: "SMITH"}

	var buf bytes.Buffer
	require.NoError(t, printCheck(&buf, details, result, false))
	var short map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &short))
	assert.Equal(t, "clear_and_current", short["outcome"])
	assert.NotContains(t, short, "resultHtml")

	buf.Reset()
	require.NoError(t, printCheck(&buf, details, result, true))
	var full struct {
		Input  status.ApplicantDetails `json:"input"`
		Result map[string]interface{}  `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &full))
	assert.Equal(t, "SMITH", full.Input.ApplicantSurname)
	assert.Equal(t, "<html></html>", full.Result["resultHtml"])
}

func TestFormatVerdict(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	ok := func(o status.Outcome) *status.FlowResult {
		return &status.FlowResult{OK: true, Structured: &status.StructuredResult{Outcome: o}}
	}
	assert.Equal(t, "✔ clear and current", formatVerdict(ok(status.OutcomeClearAndCurrent)))
	assert.Equal(t, "✔ current", formatVerdict(ok(status.OutcomeCurrent)))
	assert.Equal(t, "⚠ not current", formatVerdict(ok(status.OutcomeNotCurrent)))
	assert.Equal(t, "✖ Certificate number mismatch",
		formatVerdict(&status.FlowResult{Error: "Certificate number mismatch"}))

	assert.Equal(t, "200", formatProbeStatus(status.ProbeResult{OK: true, HTTPStatus: 200}))
	assert.Equal(t, "503", formatProbeStatus(status.ProbeResult{HTTPStatus: 503}))
	assert.Equal(t, "down", formatProbeStatus(status.ProbeResult{}))
}
