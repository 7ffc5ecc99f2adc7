package tlsclient

import (
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	tls_client_profiles "github.com/bogdanfinn/tls-client/profiles"

	"statuscheck-go/session"
)

// Client is a factory for creating TLS client sessions with Chrome fingerprints.
type Client struct {
	timeout time.Duration
}

// New creates a new TLS client factory. timeout caps a whole request at the
// transport level; per-hop deadlines are enforced by the session client.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = session.DefaultTimeout
	}
	return &Client{timeout: timeout}
}

// NewSession creates a fresh HTTP client with a Chrome_124 fingerprint.
// Redirects and cookies are left to the session client, so the transport
// neither follows redirects nor keeps a jar.
func (c *Client) NewSession() (session.Doer, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(c.timeout.Round(time.Second)/time.Second) + 1),
		tls_client.WithClientProfile(tls_client_profiles.Chrome_124),
		tls_client.WithNotFollowRedirects(),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, err
	}

	return client, nil
}
