package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"statuscheck-go/status"
)

// CheckRecord is a row of the status_checks audit table.
type CheckRecord struct {
	ID                uuid.UUID         `json:"id"`
	OrganisationName  string            `json:"organisationName"`
	RequesterForename string            `json:"requesterForename"`
	RequesterSurname  string            `json:"requesterSurname"`
	ApplicantSurname  string            `json:"applicantSurname"`
	CertificateNumber string            `json:"certificateNumber"`
	OK                bool              `json:"ok"`
	Outcome           string            `json:"outcome,omitempty"`
	Error             string            `json:"error,omitempty"`
	ErrorKind         string            `json:"errorKind,omitempty"`
	FinalURL          string            `json:"finalUrl,omitempty"`
	Steps             []status.FlowStep `json:"steps"`
	DurationMs        int64             `json:"durationMs"`
	StartedAt         time.Time         `json:"startedAt"`
	CheckedAt         time.Time         `json:"checkedAt"`
}

// RecordFromCompletion flattens a finished flow into an audit row.
func RecordFromCompletion(c status.Completion) CheckRecord {
	r := CheckRecord{
		ID:                c.ID,
		OrganisationName:  c.Details.OrganisationName,
		RequesterForename: c.Details.RequesterForename,
		RequesterSurname:  c.Details.RequesterSurname,
		ApplicantSurname:  c.Details.ApplicantSurname,
		CertificateNumber: c.Details.CertificateNumber,
		DurationMs:        c.Duration.Milliseconds(),
		StartedAt:         c.StartedAt,
		Steps:             []status.FlowStep{},
	}
	if res := c.Result; res != nil {
		r.OK = res.OK
		r.Error = res.Error
		r.ErrorKind = string(res.ErrorKind)
		r.FinalURL = res.FinalURL
		if res.Steps != nil {
			r.Steps = res.Steps
		}
		if res.Structured != nil {
			r.Outcome = string(res.Structured.Outcome)
		}
	}
	return r
}

// SaveCheck inserts an audit row.
func (d *DB) SaveCheck(ctx context.Context, r CheckRecord) error {
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return fmt.Errorf("db: encode steps: %w", err)
	}
	_, err = d.pool.ExecContext(ctx,
		`INSERT INTO status_checks
         (id, organisation_name, requester_forename, requester_surname, applicant_surname,
          certificate_number, ok, outcome, error, error_kind, final_url, steps, duration_ms, started_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)`,
		r.ID.String(), r.OrganisationName, r.RequesterForename, r.RequesterSurname, r.ApplicantSurname,
		r.CertificateNumber, r.OK, r.Outcome, r.Error, r.ErrorKind, r.FinalURL, string(steps), r.DurationMs, r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("db: save check %s: %w", r.ID, err)
	}
	return nil
}

// Observe records a completed flow.
func (d *DB) Observe(ctx context.Context, c status.Completion) error {
	return d.SaveCheck(ctx, RecordFromCompletion(c))
}

// ListRecentChecks returns the latest audit rows, newest first.
func (d *DB) ListRecentChecks(ctx context.Context, limit int) ([]CheckRecord, error) {
	rows, err := d.pool.QueryContext(ctx,
		`SELECT id, COALESCE(organisation_name, ''), COALESCE(requester_forename, ''),
                COALESCE(requester_surname, ''), COALESCE(applicant_surname, ''),
                COALESCE(certificate_number, ''), ok, COALESCE(outcome, ''), COALESCE(error, ''),
                COALESCE(error_kind, ''), COALESCE(final_url, ''), steps, duration_ms, started_at, checked_at
         FROM status_checks
         ORDER BY checked_at DESC
         LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db: list checks: %w", err)
	}
	defer rows.Close()

	var result []CheckRecord
	for rows.Next() {
		var (
			r     CheckRecord
			id    string
			steps []byte
		)
		if err := rows.Scan(&id, &r.OrganisationName, &r.RequesterForename, &r.RequesterSurname,
			&r.ApplicantSurname, &r.CertificateNumber, &r.OK, &r.Outcome, &r.Error, &r.ErrorKind,
			&r.FinalURL, &steps, &r.DurationMs, &r.StartedAt, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("db: scan check: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("db: bad check id %q: %w", id, err)
		}
		if err := json.Unmarshal(steps, &r.Steps); err != nil {
			return nil, fmt.Errorf("db: decode steps: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
