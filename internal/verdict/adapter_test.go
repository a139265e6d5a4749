package verdict

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/subject"
)

type stubGenerator struct {
	reply string
	err   error
	panic bool
	calls atomic.Int32
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.panic {
		panic("boom")
	}
	return s.reply, s.err
}

const goodReply = "```json\n{\"compliance\":\"Critical\",\"reasons\":[\"Seasonal smog.\"],\"primaryFault\":\"Environment\"}\n```"

func geminiServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req generateRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Urban Governance Auditor")

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func candidateBody(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			},
		},
	})
	return string(b)
}

var delhiMetrics = subject.Metrics{"aqi": 380, "transport": 50, "crime": 58, "poverty": 15, "growth": 6.8}

func TestAdapterRESTSuccess(t *testing.T) {
	var calls atomic.Int32
	server := geminiServer(t, http.StatusOK, candidateBody(goodReply), &calls)

	adapter := NewAdapter(NewRESTGenerator(server.URL, "test-key", time.Second), DefaultConfig())
	v := adapter.Fetch(context.Background(), "Delhi", delhiMetrics)

	assert.Equal(t, Verdict{
		Compliance:   "Critical",
		Reasons:      []string{"Seasonal smog."},
		PrimaryFault: "Environment",
		Source:       SourceModel,
	}, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdapterRESTFailuresFallBack(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"overloaded"}`},
		{"unauthorized", http.StatusUnauthorized, `{}`},
		{"not json", http.StatusOK, `<html>`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`},
		{"empty text", http.StatusOK, candidateBody("")},
		{"malformed verdict", http.StatusOK, candidateBody("I cannot help with that.")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := geminiServer(t, tt.status, tt.body, &calls)
			adapter := NewAdapter(NewRESTGenerator(server.URL, "test-key", time.Second), DefaultConfig())

			assert.Equal(t, Fallback("Mumbai"), adapter.Fetch(context.Background(), "Mumbai", nil))
			assert.Equal(t, Fallback("Gotham"), adapter.Fetch(context.Background(), "Gotham", nil))
			assert.Equal(t, int32(2), calls.Load(), "exactly one attempt per call")
		})
	}
}

func TestAdapterMissingKeyFallsBackWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	server := geminiServer(t, http.StatusOK, candidateBody(goodReply), &calls)

	adapter := NewAdapter(NewRESTGenerator(server.URL, "", time.Second), DefaultConfig())
	assert.Equal(t, Fallback("Delhi"), adapter.Fetch(context.Background(), "Delhi", delhiMetrics))
	assert.Equal(t, int32(0), calls.Load())
}

func TestAdapterUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	adapter := NewAdapter(NewRESTGenerator(url, "test-key", time.Second), DefaultConfig())
	assert.Equal(t, Fallback("Bangalore"), adapter.Fetch(context.Background(), "Bangalore", nil))
}

func TestAdapterTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	adapter := NewAdapter(NewRESTGenerator(server.URL, "test-key", 0), cfg)

	begin := time.Now()
	v := adapter.Fetch(context.Background(), "Hyderabad", nil)
	assert.Equal(t, Fallback("Hyderabad"), v)
	assert.Less(t, time.Since(begin), 5*time.Second)
}

func TestAdapterNeverPanics(t *testing.T) {
	adapter := NewAdapter(&stubGenerator{panic: true}, DefaultConfig())
	assert.NotPanics(t, func() {
		assert.Equal(t, Fallback("Delhi"), adapter.Fetch(context.Background(), "Delhi", nil))
	})

	var nilAdapter *Adapter
	assert.Equal(t, Fallback("Delhi"), nilAdapter.Fetch(context.Background(), "Delhi", nil))
	assert.Equal(t, Fallback("Delhi"), NewAdapter(nil, DefaultConfig()).Fetch(context.Background(), "Delhi", nil))
}

func TestAdapterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "stub")

	good := NewAdapter(&stubGenerator{reply: goodReply}, DefaultConfig(), WithMetrics(metrics))
	bad := NewAdapter(&stubGenerator{err: errors.New("down")}, DefaultConfig(), WithMetrics(metrics))

	good.Fetch(context.Background(), "Delhi", nil)
	bad.Fetch(context.Background(), "Delhi", nil)
	bad.Fetch(context.Background(), "Mumbai", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("model")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("fallback")))
}

func TestAdapterCache(t *testing.T) {
	gen := &stubGenerator{reply: goodReply}
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	adapter := NewAdapter(gen, cfg)

	first := adapter.Fetch(context.Background(), "Delhi", delhiMetrics)
	second := adapter.Fetch(context.Background(), "delhi", delhiMetrics)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load())

	changed := subject.Metrics{"aqi": 100}
	adapter.Fetch(context.Background(), "Delhi", changed)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestAdapterCacheSkipsFallbacks(t *testing.T) {
	gen := &stubGenerator{err: errors.New("down")}
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	adapter := NewAdapter(gen, cfg)

	adapter.Fetch(context.Background(), "Delhi", nil)
	adapter.Fetch(context.Background(), "Delhi", nil)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestFetchAllIsIndexAligned(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = 2
	adapter := NewAdapter(&stubGenerator{err: errors.New("down")}, cfg)

	subjects := []subject.Subject{
		{ID: "mumbai", Name: "Mumbai"},
		{ID: "delhi", Name: "Delhi"},
		{ID: "x", Name: "Unknown"},
	}
	verdicts := adapter.FetchAll(context.Background(), subjects)

	require.Len(t, verdicts, 3)
	assert.Equal(t, Fallback("Mumbai"), verdicts[0])
	assert.Equal(t, Fallback("Delhi"), verdicts[1])
	assert.Equal(t, Fallback("Unknown"), verdicts[2])
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(subject.Governance, "Delhi", delhiMetrics)
	assert.Contains(t, p, "Analyze Delhi")
	assert.Contains(t, p, "- AQI: 380")
	assert.Contains(t, p, "- Growth: 6.8%")
	assert.Contains(t, p, "Return ONLY raw JSON")

	m := BuildPrompt(subject.Market, "2024", subject.Metrics{"value": 115})
	assert.Contains(t, m, "period 2024")
	assert.Contains(t, m, "- value: 115")
}
