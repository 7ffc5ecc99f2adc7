package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"statuscheck-go/db"
	"statuscheck-go/status"
)

const (
	defaultChecksLimit = 20
	maxChecksLimit     = 200
	maxBodyBytes       = 64 << 10
)

func (s *Server) handleStatusCheck(w http.ResponseWriter, r *http.Request) {
	details, err := status.DecodeDetails(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if errs := details.Validate(); len(errs) > 0 {
		s.log.Warnw("invalid status check request", "errors", errs)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":     false,
			"error":  "Validation failed",
			"errors": errs,
		})
		return
	}

	s.log.Infow("status check requested",
		"certificate_number", details.CertificateNumber,
		"applicant_surname", details.ApplicantSurname)
	result := s.checker.Run(r.Context(), details)

	if !result.OK {
		steps := result.Steps
		if steps == nil {
			steps = []status.FlowStep{}
		}
		msg := result.Error
		if msg == "" {
			msg = "Status check failed"
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"ok":    false,
			"error": msg,
			"steps": steps,
		})
		return
	}

	if r.URL.Query().Get("raw") == "1" || r.URL.Query().Get("raw") == "true" {
		jsonOK(w, result)
		return
	}

	jsonOK(w, result.Verdict())
}

func (s *Server) handleProbeAll(w http.ResponseWriter, r *http.Request) {
	targets := s.cfg.Targets()
	results := s.prober.ProbeAll(r.Context(), targets)

	out := make(map[string]status.TargetProbe, len(results))
	for name, res := range results {
		out[name] = status.TargetProbe{TargetURL: targets[name], ProbeResult: res}
	}
	jsonOK(w, out)
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	execution := strings.ToLower(r.PathValue("execution"))
	target, ok := s.cfg.Targets()[execution]
	if !ok {
		jsonError(w, "Unknown execution. Use e2s1, e2s4, or e2s5.", http.StatusBadRequest)
		return
	}
	jsonOK(w, status.TargetProbe{
		Execution:   execution,
		TargetURL:   target,
		ProbeResult: s.prober.Probe(r.Context(), target),
	})
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "audit log not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultChecksLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxChecksLimit)
	}

	records, err := s.store.ListRecentChecks(r.Context(), limit)
	if err != nil {
		s.log.Errorw("list checks failed", "error", err)
		jsonError(w, "failed to list checks", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []db.CheckRecord{}
	}
	jsonOK(w, map[string]interface{}{"checks": records, "count": len(records)})
}
