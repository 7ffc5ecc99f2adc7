package websocket

import (
	"context"
	"encoding/json"
	"time"

	"statuscheck-go/status"
)

// Event types broadcast to connected clients.
const (
	EventCheckCompleted = "status_check_completed"
	EventCheckFailed    = "status_check_failed"
)

// Event is the envelope sent to all WebSocket clients.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// JSON serialises the event.
func (e Event) JSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// CheckData is the payload of both check events. The page HTML is omitted.
type CheckData struct {
	CheckID           string                   `json:"check_id"`
	CertificateNumber string                   `json:"certificate_number"`
	ApplicantSurname  string                   `json:"applicant_surname"`
	Outcome           status.Outcome           `json:"outcome"`
	Error             string                   `json:"error,omitempty"`
	ErrorKind         status.ErrorKind         `json:"error_kind,omitempty"`
	Structured        *status.StructuredResult `json:"structured,omitempty"`
	Steps             int                      `json:"steps"`
	DurationMs        int64                    `json:"duration_ms"`
}

// CheckEvent builds the event announcing a completed check.
func CheckEvent(c status.Completion) Event {
	res := c.Result
	data := CheckData{
		CheckID:           c.ID.String(),
		CertificateNumber: c.Details.CertificateNumber,
		ApplicantSurname:  c.Details.ApplicantSurname,
		Error:             res.Error,
		ErrorKind:         res.ErrorKind,
		Structured:        res.Structured,
		Steps:             len(res.Steps),
		DurationMs:        c.Duration.Milliseconds(),
	}
	if res.Structured != nil {
		data.Outcome = res.Structured.Outcome
	}
	if res.OK {
		return NewEvent(EventCheckCompleted, data)
	}
	return NewEvent(EventCheckFailed, data)
}

// Observe publishes every completed check.
func (h *Hub) Observe(_ context.Context, c status.Completion) error {
	if c.Result != nil {
		h.Publish(CheckEvent(c))
	}
	return nil
}
