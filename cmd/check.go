package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"statuscheck-go/status"
)

var dobPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

type checkOptions struct {
	organisationName  string
	requesterForename string
	requesterSurname  string
	certificateNumber string
	applicantSurname  string
	dob               string
	day               string
	month             string
	year              string
	jsonPath          string
	raw               bool
}

var checkOpts checkOptions

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a full status check and print the verdict",
	Example: `  statuscheck check --json input.json
  statuscheck check --organisation-name "Acme Ltd" --requester-forename Jane --requester-surname Doe \
      --certificate-number 001234567890 --applicant-surname SMITH --dob 7/3/1990`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		details, err := checkOpts.details()
		if err != nil {
			return err
		}
		if errs := details.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
		}

		result := newChecker(cfg, logger).Run(cmd.Context(), details)

		if err := printCheck(cmd.OutOrStdout(), details, result, checkOpts.raw); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), formatVerdict(result))
		if !result.OK {
			return errCheckFailed
		}
		return nil
	},
}

// details builds the applicant details from --json or the individual flags.
func (o checkOptions) details() (status.ApplicantDetails, error) {
	if o.jsonPath != "" {
		f, err := os.Open(o.jsonPath)
		if err != nil {
			return status.ApplicantDetails{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		return status.DecodeDetails(f)
	}

	d := status.ApplicantDetails{
		OrganisationName:  o.organisationName,
		RequesterForename: o.requesterForename,
		RequesterSurname:  o.requesterSurname,
		CertificateNumber: o.certificateNumber,
		ApplicantSurname:  o.applicantSurname,
		DOB:               status.DOB{Day: o.day, Month: o.month, Year: o.year},
	}
	if o.dob != "" {
		dob, err := parseDOB(o.dob)
		if err != nil {
			return status.ApplicantDetails{}, err
		}
		d.DOB = dob
	}
	return d, nil
}

// parseDOB parses D/M/YYYY.
func parseDOB(s string) (status.DOB, error) {
	m := dobPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return status.DOB{}, fmt.Errorf("invalid --dob %q: want D/M/YYYY", s)
	}
	return status.DOB{Day: m[1], Month: m[2], Year: m[3]}, nil
}

func printCheck(w io.Writer, details status.ApplicantDetails, result *status.FlowResult, raw bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if raw {
		return enc.Encode(struct {
			Input  status.ApplicantDetails `json:"input"`
			Result *status.FlowResult      `json:"result"`
		}{details, result})
	}
	return enc.Encode(result.Verdict())
}

func init() {
	registerCheckFlags(checkCmd, &checkOpts)
}

func registerCheckFlags(c *cobra.Command, o *checkOptions) {
	f := c.Flags()
	f.StringVar(&o.organisationName, "organisation-name", "", "organisation requesting the check")
	f.StringVar(&o.requesterForename, "requester-forename", "", "forename of the person performing the check")
	f.StringVar(&o.requesterSurname, "requester-surname", "", "surname of the person performing the check")
	f.StringVar(&o.certificateNumber, "certificate-number", "", "12-digit certificate number")
	f.StringVar(&o.applicantSurname, "applicant-surname", "", "applicant surname as printed on the certificate")
	f.StringVar(&o.dob, "dob", "", "applicant date of birth as D/M/YYYY")
	f.StringVar(&o.day, "day", "", "applicant birth day")
	f.StringVar(&o.month, "month", "", "applicant birth month")
	f.StringVar(&o.year, "year", "", "applicant birth year")
	f.StringVar(&o.jsonPath, "json", "", "read the applicant details from a JSON file")
	f.BoolVar(&o.raw, "raw", false, "print the input and the full result")

	for _, part := range []string{"day", "month", "year"} {
		c.MarkFlagsMutuallyExclusive("dob", part)
	}
	c.MarkFlagsMutuallyExclusive("json", "organisation-name")
	c.MarkFlagsMutuallyExclusive("json", "certificate-number")
}
