package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

const twoUsers = `[
  {"id": 1, "name": "Leanne Graham", "username": "Bret", "email": "Sincere@april.biz",
   "address": {"street": "Kulas Light", "city": "Gwenborough", "zipcode": "92998-3874"},
   "phone": "1-770-736-8031 x56442"},
  {"id": 2, "name": "Ervin Howell", "username": "Antonette", "email": "Shanna@melissa.tv",
   "address": {"street": "Victor Plains", "city": "Wisokyburgh"},
   "phone": "010-692-6593 x09125"}
]`

func newTestClient(url string) *Client {
	return NewClient(&Config{URL: url, Timeout: 2 * time.Second, Logger: zap.NewNop()})
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoUsers))
	}))
	defer server.Close()

	users, err := newTestClient(server.URL + "/users").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name() != "Leanne Graham" || users[1].Name() != "Ervin Howell" {
		t.Errorf("server order not preserved: %q, %q", users[0].Name(), users[1].Name())
	}
	if users[0].City() != "Gwenborough" {
		t.Errorf("City() = %q", users[0].City())
	}
	if users[1].Phone() != "010-692-6593 x09125" {
		t.Errorf("Phone() = %q", users[1].Phone())
	}
}

func TestClient_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	before := testutil.ToFloat64(metrics.UpstreamErrorsTotal.WithLabelValues("status"))

	_, err := newTestClient(server.URL).Fetch(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", te.StatusCode)
	}
	if !strings.HasPrefix(te.Cause.Error(), "500 Server Error: Internal Server Error for url: ") {
		t.Errorf("unexpected cause: %q", te.Cause.Error())
	}

	after := testutil.ToFloat64(metrics.UpstreamErrorsTotal.WithLabelValues("status"))
	if after-before != 1 {
		t.Errorf("expected one status error recorded, got %f", after-before)
	}
}

func TestClient_Fetch_ClientError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !strings.HasPrefix(te.Cause.Error(), "404 Client Error: Not Found") {
		t.Errorf("unexpected cause: %q", te.Cause.Error())
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Fetch(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var te *domain.TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for connection failure", te.StatusCode)
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(&Config{URL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport on timeout, got %v", err)
	}
}

func TestClient_Fetch_MissingField(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"no email", `[{"name":"A","phone":"1","address":{"city":"X"}}]`, "email"},
		{"no city", `[{"name":"A","email":"a@b.c","phone":"1","address":{}}]`, "address"},
		{"no address", `[{"name":"A","email":"a@b.c","phone":"1"}]`, "address"},
		{"no phone", `[{"name":"A","email":"a@b.c","address":{"city":"X"}}]`, "phone"},
		{"no name", `[{"email":"a@b.c","phone":"1","address":{"city":"X"}}]`, "name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.payload))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Fetch(context.Background())
			if !errors.Is(err, domain.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q does not name field %q", err.Error(), tc.field)
			}
		})
	}
}

func TestClient_Fetch_EmptyPhoneAndCity(t *testing.T) {
	payload := `[
	  {"name":"Leanne Graham","email":"Sincere@april.biz","phone":"1-770","address":{"city":"Gwenborough"}},
	  {"name":"Ervin Howell","email":"Shanna@melissa.tv","phone":"","address":{"city":""}}
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	users, err := newTestClient(server.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[1].Phone() != "" || users[1].City() != "" {
		t.Errorf("expected empty phone and city, got %q, %q", users[1].Phone(), users[1].City())
	}
}

func TestClient_Fetch_EmptyNameOrEmail(t *testing.T) {
	for _, payload := range []string{
		`[{"name":"","email":"a@b.c","phone":"1","address":{"city":"X"}}]`,
		`[{"name":"A","email":"  ","phone":"1","address":{"city":"X"}}]`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(payload))
		}))

		_, err := newTestClient(server.URL).Fetch(context.Background())
		server.Close()
		if !errors.Is(err, domain.ErrParse) {
			t.Errorf("payload %s: expected ErrParse, got %v", payload, err)
		}
	}
}

func TestClient_Fetch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestClient_Fetch_EmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	users, err := newTestClient(server.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}

func TestClient_HealthCheck(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoUsers))
	}))
	defer ok.Close()

	if err := newTestClient(ok.URL).HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	if err := newTestClient(bad.URL).HealthCheck(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func durationSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.UpstreamRequestDuration.Write(&m); err != nil {
		t.Fatalf("read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestClient_Fetch_ObservesDurationOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			w.WriteHeader(http.StatusBadGateway)
		case "/decode":
			_, _ = w.Write([]byte(`not json`))
		default:
			_, _ = w.Write([]byte(`[{"name":"A"}]`))
		}
	}))
	defer server.Close()

	for _, path := range []string{"/status", "/decode", "/invalid"} {
		before := durationSamples(t)
		if _, err := newTestClient(server.URL + path).Fetch(context.Background()); err == nil {
			t.Fatalf("%s: expected error", path)
		}
		if got := durationSamples(t) - before; got != 1 {
			t.Errorf("%s: expected one duration sample, got %d", path, got)
		}
	}
}

func TestClient_HealthCheck_NotCountedAsFetch(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoUsers))
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	successBefore := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues("success"))
	errorBefore := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues("error"))
	samplesBefore := durationSamples(t)

	_ = newTestClient(ok.URL).HealthCheck(context.Background())
	_ = newTestClient(bad.URL).HealthCheck(context.Background())

	if d := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues("success")) - successBefore; d != 0 {
		t.Errorf("health check changed success count by %f", d)
	}
	if d := testutil.ToFloat64(metrics.UpstreamRequestsTotal.WithLabelValues("error")) - errorBefore; d != 0 {
		t.Errorf("health check changed error count by %f", d)
	}
	if d := durationSamples(t) - samplesBefore; d != 0 {
		t.Errorf("health check recorded %d duration samples", d)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&Config{})
	if c.url != domain.DefaultUpstreamURL {
		t.Errorf("url = %q, want default", c.url)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}
