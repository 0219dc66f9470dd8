package netclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetClassifiesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c, err := New(Options{Timeout: time.Second})
	require.NoError(t, err)

	resp, outcome, err := c.Get(context.Background(), srv.URL, false)
	require.NoError(t, err)
	require.Equal(t, OutcomeOK, outcome)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "hello", string(resp.Body))
}

func TestGetClassifiesServerErrorAsSkip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Options{Timeout: time.Second})
	require.NoError(t, err)

	_, outcome, err := c.Get(context.Background(), srv.URL, false)
	require.NoError(t, err)
	require.Equal(t, OutcomeSkip, outcome)
}

func TestGetTooManyRedirectsIsSkip(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL, http.StatusFound)
	}))
	defer srv.Close()

	c, err := New(Options{Timeout: time.Second})
	require.NoError(t, err)

	_, outcome, err := c.Get(context.Background(), srv.URL, false)
	require.Error(t, err)
	require.Equal(t, OutcomeSkip, outcome)
}

func TestWaitIdleNoLimiterConfigured(t *testing.T) {
	c, err := New(Options{Timeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, c.WaitIdle(context.Background()))
}
