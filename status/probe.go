package status

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	http "github.com/bogdanfinn/fhttp"
	"go.uber.org/zap"

	"statuscheck-go/session"
)

// ProbeParsed summarises an HTML page returned by a probe.
type ProbeParsed struct {
	Title     string `json:"title"`
	H1        string `json:"h1"`
	ErrorText string `json:"errorText"`
}

// ProbeResult reports the availability of a single page.
type ProbeResult struct {
	OK          bool         `json:"ok"`
	HTTPStatus  int          `json:"httpStatus"`
	FinalURL    string       `json:"finalUrl"`
	ContentType string       `json:"contentType"`
	Parsed      *ProbeParsed `json:"parsed"`
	ElapsedMs   int64        `json:"elapsedMs"`
	MethodUsed  string       `json:"methodUsed"`
	Error       string       `json:"error,omitempty"`
}

// TargetProbe is a probe result annotated with the probed target.
type TargetProbe struct {
	Execution string `json:"execution,omitempty"`
	TargetURL string `json:"targetUrl"`
	ProbeResult
}

// Prober checks whether the site's pages are reachable.
type Prober struct {
	newSession SessionFactory
	settings   Settings
	log        *zap.SugaredLogger
}

// NewProber creates a Prober. Settings.StartURL is not used.
func NewProber(factory SessionFactory, settings Settings, log *zap.SugaredLogger) *Prober {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Prober{newSession: factory, settings: settings, log: log}
}

// Probe fetches target, following redirects, and never returns an error:
// failures are reported in the result.
func (p *Prober) Probe(ctx context.Context, target string) ProbeResult {
	started := time.Now()
	failed := func(err error) ProbeResult {
		p.log.Debugw("probe failed", "url", target, "error", err)
		return ProbeResult{
			FinalURL:   target,
			ElapsedMs:  time.Since(started).Milliseconds(),
			MethodUsed: "fetch",
			Error:      err.Error(),
		}
	}

	doer, err := p.newSession()
	if err != nil {
		return failed(err)
	}
	client := session.New(doer, session.Options{
		UserAgent:    p.settings.UserAgent,
		Timeout:      p.settings.Timeout,
		MaxRedirects: p.settings.MaxRedirects,
		Logger:       p.log,
	})
	resp, err := client.Send(ctx, target, session.Request{Method: http.MethodGet}, session.NewJar())
	if err != nil {
		return failed(err)
	}

	result := ProbeResult{
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 300,
		HTTPStatus:  resp.StatusCode,
		FinalURL:    resp.URL,
		ContentType: resp.ContentType,
		MethodUsed:  "fetch",
	}
	if strings.Contains(resp.ContentType, "text/html") && resp.Body != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body)); err == nil {
			result.Parsed = &ProbeParsed{
				Title:     strings.TrimSpace(doc.Find("title").Text()),
				H1:        strings.TrimSpace(doc.Find("h1").First().Text()),
				ErrorText: strings.TrimSpace(doc.Find(`[role="alert"], .error, .govuk-error-message`).First().Text()),
			}
		}
	}
	result.ElapsedMs = time.Since(started).Milliseconds()
	return result
}

// ProbeAll probes every named target concurrently.
func (p *Prober) ProbeAll(ctx context.Context, targets map[string]string) map[string]ProbeResult {
	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make(map[string]ProbeResult, len(targets))

	for name, target := range targets {
		wg.Add(1)
		go func(name, target string) {
			defer wg.Done()
			r := p.Probe(ctx, target)
			mu.Lock()
			results[name] = r
			mu.Unlock()
		}(name, target)
	}
	wg.Wait()
	return results
}
