package serve

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Paranoid-AF/codelet"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		resp *codelet.Response
		want string
	}{
		{&codelet.Response{Completion: "x"}, "ok"},
		{&codelet.Response{}, "empty"},
		{&codelet.Response{Error: &codelet.Error{Code: codelet.ErrCodeTimeout}}, codelet.ErrCodeTimeout},
	}
	for _, tt := range tests {
		if got := outcome(tt.resp); got != tt.want {
			t.Errorf("outcome(%+v) = %q, want %q", tt.resp, got, tt.want)
		}
	}
}

func TestRequestsCountedByOutcome(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{resp: &codelet.Response{Completion: "x"}})

	counter := requestsTotal.WithLabelValues("complete", "ok")
	before := testutil.ToFloat64(counter)

	sendRequest(t, srv.SocketPath(), &codelet.Request{RequestID: 1, Text: "x"})
	sendRequest(t, srv.SocketPath(), &codelet.Request{RequestID: 2, Text: "x"})

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 ok completions counted, got %v", got)
	}
	if !waitFor(t, time.Second, func() bool { return testutil.ToFloat64(requestsInFlight) == 0 }) {
		t.Errorf("expected no requests in flight, got %v", testutil.ToFloat64(requestsInFlight))
	}
}

func TestListenMetrics(t *testing.T) {
	m, err := ListenMetrics("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	resp, err := http.Get("http://" + m.Addr() + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "codelet_requests_in_flight") {
		t.Error("expected codelet_requests_in_flight in metrics output")
	}
}
