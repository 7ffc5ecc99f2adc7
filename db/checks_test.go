package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"statuscheck-go/status"
)

func TestWithSSLMode(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db?sslmode=disable", withSSLMode("postgres://u@h/db"))
	assert.Equal(t, "postgres://u@h/db?x=1&sslmode=disable", withSSLMode("postgres://u@h/db?x=1"))
	assert.Equal(t, "postgres://u@h/db?sslmode=require", withSSLMode("postgres://u@h/db?sslmode=require"))
	assert.Equal(t, "", withSSLMode(""))
}

func TestRecordFromCompletion(t *testing.T) {
	id := uuid.New()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := RecordFromCompletion(status.Completion{
		ID:        id,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Details: status.ApplicantDetails{
			OrganisationName:  "Acme Ltd",
			CertificateNumber: "001234567890",
			ApplicantSurname:  "SMITH",
		},
		Result: &status.FlowResult{
			OK:         true,
			FinalURL:   "https://site/final",
			Steps:      []status.FlowStep{{URL: "https://site/a", HTTPStatus: 200}},
			Structured: &status.StructuredResult{Outcome: status.OutcomeCurrent},
		},
	})

	assert.Equal(t, id, rec.ID)
	assert.True(t, rec.OK)
	assert.Equal(t, "current", rec.Outcome)
	assert.Equal(t, int64(1500), rec.DurationMs)
	assert.Equal(t, started, rec.StartedAt)
	assert.Len(t, rec.Steps, 1)
	assert.Equal(t, "SMITH", rec.ApplicantSurname)
}

func TestRecordFromFailedCompletion(t *testing.T) {
	rec := RecordFromCompletion(status.Completion{
		ID: uuid.New(),
		Result: &status.FlowResult{
			Error:     "Unable to navigate the status check flow",
			ErrorKind: status.ErrorKindFormNotFound,
		},
	})
	assert.False(t, rec.OK)
	assert.Equal(t, "form_not_found", rec.ErrorKind)
	assert.Empty(t, rec.Outcome)
	assert.NotNil(t, rec.Steps)
}
