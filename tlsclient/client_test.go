package tlsclient

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		stdhttp.SetCookie(w, &stdhttp.Cookie{Name: "A", Value: "1"})
		stdhttp.Redirect(w, r, "/elsewhere", stdhttp.StatusFound)
	}))
	defer srv.Close()

	doer, err := New(5 * time.Second).NewSession()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := doer.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/elsewhere", resp.Header.Get("Location"))
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}

func TestNewDefaultsTimeout(t *testing.T) {
	assert.Equal(t, 15*time.Second, New(0).timeout)
}
