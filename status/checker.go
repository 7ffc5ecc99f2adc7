package status

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"statuscheck-go/form"
	"statuscheck-go/session"
)

const msgNavigationFailed = "Unable to navigate the status check flow"

// SessionFactory creates a fresh transport for each flow.
type SessionFactory func() (session.Doer, error)

// Settings carries the configuration a Checker needs.
type Settings struct {
	StartURL     string
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
}

type flowState string

const (
	stateStart          flowState = "START"
	stateStep1Fetched   flowState = "STEP1_FETCHED"
	stateStep1Submitted flowState = "STEP1_SUBMITTED"
	stateStep2Submitted flowState = "STEP2_SUBMITTED"
	stateStep3Submitted flowState = "STEP3_SUBMITTED"
	stateClassified     flowState = "CLASSIFIED"
	stateFailed         flowState = "FAILED"
)

// flowStep is one page of the site's three-page webflow.
type flowStep struct {
	mapping form.Mapping
	// actionFallback submits to the start URL when the form has no action.
	actionFallback bool
	after          flowState
}

var flowSteps = []flowStep{
	{mapping: form.OrganisationMapping, actionFallback: true, after: stateStep1Submitted},
	{mapping: form.CertificateMapping, after: stateStep2Submitted},
	{mapping: form.DeclarationMapping, after: stateStep3Submitted},
}

// Checker runs certificate status checks against the external site.
// A Checker is safe for concurrent use; every Run gets its own session and jar.
type Checker struct {
	newSession SessionFactory
	settings   Settings
	log        *zap.SugaredLogger
	onHop      session.HopFunc
	observers  []Observer
}

// NewChecker creates a Checker. A nil logger disables logging.
func NewChecker(factory SessionFactory, settings Settings, log *zap.SugaredLogger) *Checker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Checker{newSession: factory, settings: settings, log: log}
}

// Use registers observers called after every Run.
func (c *Checker) Use(observers ...Observer) {
	c.observers = append(c.observers, observers...)
}

// OnHop registers a callback invoked for every HTTP hop.
func (c *Checker) OnHop(fn session.HopFunc) {
	c.onHop = fn
}

// Run performs the full flow for details. It never returns nil.
func (c *Checker) Run(ctx context.Context, details ApplicantDetails) *FlowResult {
	started := time.Now()
	norm := details.Normalize()
	id := uuid.New()
	log := c.log.With("check_id", id.String())

	result := c.run(ctx, log, norm, details.CertificateNumber)

	if result.OK {
		log.Infow("status check complete", "outcome", string(result.Structured.Outcome), "steps", len(result.Steps))
	} else {
		log.Infow("status check failed", "error", result.Error, "kind", string(result.ErrorKind), "steps", len(result.Steps))
	}

	completion := Completion{
		ID:        id,
		StartedAt: started,
		Duration:  time.Since(started),
		Details:   norm,
		Result:    result,
	}
	// Observers outlive a cancelled caller so audit rows are still written.
	octx := context.WithoutCancel(ctx)
	for _, o := range c.observers {
		if err := o.Observe(octx, completion); err != nil {
			log.Warnw("observer failed", "error", err)
		}
	}
	return result
}

func (c *Checker) run(ctx context.Context, log *zap.SugaredLogger, norm ApplicantDetails, rawCertificateNumber string) *FlowResult {
	steps := []FlowStep{}
	state := stateStart
	transition := func(next flowState) {
		log.Debugw("flow transition", "from", state, "to", next)
		state = next
	}
	fail := func(msg string, kind ErrorKind) *FlowResult {
		transition(stateFailed)
		return &FlowResult{Error: msg, ErrorKind: kind, Steps: steps}
	}

	doer, err := c.newSession()
	if err != nil {
		return fail(fmt.Sprintf("status: session error: %v", err), ErrorKindTransport)
	}
	client := session.New(doer, session.Options{
		UserAgent:    c.settings.UserAgent,
		Timeout:      c.settings.Timeout,
		MaxRedirects: c.settings.MaxRedirects,
		OnHop:        c.onHop,
		Logger:       log,
	})
	jar := session.NewJar()

	start := c.settings.StartURL
	resp, err := client.Send(ctx, start, session.Request{Method: http.MethodGet}, jar)
	if err != nil {
		return fail(err.Error(), errorKind(err))
	}
	steps = append(steps, FlowStep{URL: start, HTTPStatus: resp.StatusCode})
	transition(stateStep1Fetched)

	fields := norm.fields()
	for _, st := range flowSteps {
		f, err := form.Extract(resp.Body)
		if err != nil || f == nil {
			log.Debugw("no form on page", "step", st.mapping.Name, "url", resp.URL)
			return fail(msgNavigationFailed, ErrorKindFormNotFound)
		}

		payload := f.Payload(form.Populate(f, st.mapping, fields))
		action := f.Action
		if action == "" && st.actionFallback {
			action = start
		}
		target, err := session.Resolve(resp.URL, action)
		if err != nil {
			return fail(fmt.Sprintf("status: bad form action %q: %v", action, err), ErrorKindTransport)
		}

		req := session.Request{Method: f.Method, Referer: resp.URL}
		if f.Method == http.MethodGet {
			target = withQuery(target, payload.Encode())
		} else {
			req.Header = http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}
			req.Body = payload.Encode()
		}

		next, err := client.Send(ctx, target, req, jar)
		if err != nil {
			return fail(err.Error(), errorKind(err))
		}
		steps = append(steps, FlowStep{URL: target, HTTPStatus: next.StatusCode})
		transition(st.after)
		resp = next
	}

	result := Classify(resp.Body, resp.URL, rawCertificateNumber)
	result.Steps = steps
	if result.OK {
		transition(stateClassified)
	} else {
		transition(stateFailed)
	}
	return result
}

func errorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, session.ErrRequestTimeout):
		return ErrorKindTimeout
	case session.IsRedirectError(err):
		return ErrorKindRedirect
	default:
		return ErrorKindTransport
	}
}

// withQuery replaces the query of target with the encoded form, as a browser
// does for GET forms.
func withQuery(target, encoded string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	u.RawQuery = encoded
	return u.String()
}
