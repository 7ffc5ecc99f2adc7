package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// looseString accepts a JSON string or number. Numbers keep their literal text.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected a string or number, got %s", b)
		}
		*l = looseString(n.String())
		return nil
	}
}

type detailsDocument struct {
	OrganisationName  looseString `json:"organisationName"`
	RequesterForename looseString `json:"requesterForename"`
	RequesterSurname  looseString `json:"requesterSurname"`
	CertificateNumber looseString `json:"certificateNumber"`
	ApplicantSurname  looseString `json:"applicantSurname"`
	DOB               struct {
		Day   looseString `json:"day"`
		Month looseString `json:"month"`
		Year  looseString `json:"year"`
	} `json:"dob"`
}

// DecodeDetails reads ApplicantDetails from JSON. Every field may be a string
// or a number. An empty input yields empty details, left for Validate.
func DecodeDetails(r io.Reader) (ApplicantDetails, error) {
	var doc detailsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return ApplicantDetails{}, fmt.Errorf("status: decode details: %w", err)
	}
	return ApplicantDetails{
		OrganisationName:  string(doc.OrganisationName),
		RequesterForename: string(doc.RequesterForename),
		RequesterSurname:  string(doc.RequesterSurname),
		CertificateNumber: string(doc.CertificateNumber),
		ApplicantSurname:  string(doc.ApplicantSurname),
		DOB: DOB{
			Day:   string(doc.DOB.Day),
			Month: string(doc.DOB.Month),
			Year:  string(doc.DOB.Year),
		},
	}, nil
}
