package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"go.uber.org/zap"
)

const (
	// DefaultMaxRedirects caps the manual redirect loop.
	DefaultMaxRedirects = 10
	// DefaultTimeout bounds a single hop.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent identifies the client when none is configured.
	DefaultUserAgent = "perform-check/1.0 (+https://example.com)"

	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguageHeader = "en-GB,en;q=0.9"
)

// Doer executes a single HTTP request without following redirects.
// tls_client.HttpClient and *http.Client both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HopFunc is called once per completed hop.
type HopFunc func(method string, status int, elapsed time.Duration)

// Options configures a Client.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	OnHop        HopFunc
	Logger       *zap.SugaredLogger
}

// Request describes one logical request. Redirects are always handled by the
// Client, never by the transport.
type Request struct {
	Method  string
	Header  http.Header
	Body    string
	Referer string
}

// Response is the last hop of a request after redirects were followed.
type Response struct {
	StatusCode  int
	URL         string
	Header      http.Header
	ContentType string
	Body        string
}

// Client issues requests one at a time with jar-derived cookies and a
// bounded manual redirect loop.
type Client struct {
	doer         Doer
	userAgent    string
	timeout      time.Duration
	maxRedirects int
	onHop        HopFunc
	log          *zap.SugaredLogger
}

// New wraps a transport. Zero option values fall back to the package defaults.
func New(doer Doer, opts Options) *Client {
	c := &Client{
		doer:         doer,
		userAgent:    opts.UserAgent,
		timeout:      opts.Timeout,
		maxRedirects: opts.MaxRedirects,
		onHop:        opts.OnHop,
		log:          opts.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRedirects <= 0 {
		c.maxRedirects = DefaultMaxRedirects
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c
}

// Send performs req against rawURL, following up to the redirect cap.
// Set-Cookie headers from every hop are merged into jar.
func (c *Client) Send(ctx context.Context, rawURL string, req Request, jar *Jar) (*Response, error) {
	current := rawURL
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	body := req.Body
	extra := req.Header
	referer := req.Referer
	redirects := 0

	for {
		hop, err := c.do(ctx, method, current, body, extra, referer, jar)
		if err != nil {
			return nil, err
		}

		switch hop.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
			http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		default:
			return hop, nil
		}

		if redirects >= c.maxRedirects {
			return nil, fmt.Errorf("session: %s %s: %w", method, rawURL, ErrRedirectLimitExceeded)
		}
		redirects++

		location := hop.Header.Get("Location")
		if location == "" {
			return nil, fmt.Errorf("session: %s %s: %w", method, current, ErrMalformedRedirect)
		}
		next, err := Resolve(current, location)
		if err != nil {
			return nil, fmt.Errorf("session: bad redirect location %q: %w", location, err)
		}

		if hop.StatusCode == http.StatusSeeOther || (hop.StatusCode == http.StatusFound && method != http.MethodGet) {
			method = http.MethodGet
			body = ""
			extra = nil
		}
		c.log.Debugw("following redirect", "status", hop.StatusCode, "from", current, "to", next, "method", method)
		referer = current
		current = next
	}
}

// do runs a single hop under its own deadline, including the body read.
func (c *Client) do(ctx context.Context, method, target, body string, extra http.Header, referer string, jar *Jar) (*Response, error) {
	hopCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(hopCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("session: build %s %s: %w", method, target, err)
	}
	httpReq.Header = c.headers(extra, referer, jar)

	started := time.Now()
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, c.wrapErr(hopCtx, method, target, err)
	}
	defer resp.Body.Close()

	if jar != nil {
		jar.Merge(resp.Header.Values("Set-Cookie"))
	}

	contentType := resp.Header.Get("Content-Type")
	raw, readErr := io.ReadAll(resp.Body)

	var text string
	if IsTextContentType(contentType) {
		if readErr != nil {
			return nil, c.wrapErr(hopCtx, method, target, readErr)
		}
		text = decodeText(raw, contentType)
	} else if readErr == nil {
		text = decodeBytes(raw)
	} else if errors.Is(hopCtx.Err(), context.DeadlineExceeded) {
		return nil, c.wrapErr(hopCtx, method, target, readErr)
	}

	elapsed := time.Since(started)
	c.log.Debugw("hop", "method", method, "url", target, "status", resp.StatusCode, "elapsed", elapsed)
	if c.onHop != nil {
		c.onHop(method, resp.StatusCode, elapsed)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		URL:         target,
		Header:      resp.Header,
		ContentType: contentType,
		Body:        text,
	}, nil
}

func (c *Client) headers(extra http.Header, referer string, jar *Jar) http.Header {
	h := http.Header{}
	for k, vs := range extra {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	order := []string{"Content-Type"}
	if jar != nil && jar.Len() > 0 {
		h.Set("Cookie", jar.Header())
		order = append(order, "Cookie")
	}
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept", acceptHeader)
	h.Set("Accept-Language", acceptLanguageHeader)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	order = append(order, "User-Agent", "Accept", "Accept-Language", "Cache-Control", "Pragma")
	if referer != "" {
		h.Set("Referer", referer)
		order = append(order, "Referer")
	}
	h[http.HeaderOrderKey] = order
	return h
}

func (c *Client) wrapErr(hopCtx context.Context, method, target string, err error) error {
	if errors.Is(hopCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("session: %s %s: %w after %s", method, target, ErrRequestTimeout, c.timeout)
	}
	return fmt.Errorf("session: %s %s: %w", method, target, err)
}

// Resolve resolves a possibly relative reference against base the way a
// browser resolves a link. An empty reference yields base without its fragment.
func Resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	u := b.ResolveReference(r)
	if ref == "" {
		u.Fragment = ""
	}
	return u.String(), nil
}
