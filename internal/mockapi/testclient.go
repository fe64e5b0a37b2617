package mockapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safar/supershop/internal/api"
)

// NewTestClient serves s for the lifetime of t and returns a client bound
// to it. Keep-alives are off so a dropped connection is never retried by
// the transport.
func NewTestClient(t testing.TB, s *Server) *api.Client {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	transport := &http.Transport{DisableKeepAlives: true}
	t.Cleanup(transport.CloseIdleConnections)
	hc := &http.Client{Transport: transport, Timeout: 2 * time.Second}
	return api.New(srv.URL, 2*time.Second, api.WithHTTPClient(hc))
}
