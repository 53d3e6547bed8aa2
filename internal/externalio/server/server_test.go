package server

import (
	"context"
	"encoding/json"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/metrics"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type mockQuerier struct {
	results   []metrics.Metric
	aggregate metrics.Metric
	aggErr    error

	lastName      string
	lastNamespace []string
	lastStart     time.Time
}

func (m *mockQuerier) Search(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric {
	m.lastName, m.lastNamespace, m.lastStart = name, namespacePrefix, start
	return m.results
}

func (m *mockQuerier) Discover(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric {
	m.lastName, m.lastNamespace = name, namespacePrefix
	return m.results
}

func (m *mockQuerier) Aggregate(aggregation, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error) {
	m.lastName, m.lastNamespace, m.lastStart = name, namespacePrefix, start
	return m.aggregate, m.aggErr
}

func TestRouting(t *testing.T) {
	srv := SetupListener(context.Background(), 8080, &mockQuerier{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "index", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "index post rejected", method: http.MethodPost, path: "/", wantStatus: http.StatusMethodNotAllowed},
		{name: "data post rejected", method: http.MethodPost, path: global.DataPath, wantStatus: http.StatusMethodNotAllowed},
		{name: "discover patch rejected", method: http.MethodPatch, path: global.DiscoveryPath, wantStatus: http.StatusMethodNotAllowed},
		{name: "aggregate delete rejected", method: http.MethodDelete, path: global.AggregationPath, wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/unknown", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("http request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	srv := SetupListener(context.Background(), 8080, &mockQuerier{})
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var index jIndex
	err := json.NewDecoder(rec.Body).Decode(&index)
	if err != nil {
		t.Fatalf("decode index: %v", err)
	}
	for _, path := range []string{global.DataPath, global.DiscoveryPath, global.AggregationPath} {
		if _, ok := index.Endpoints[path+"<namespace>"]; !ok {
			t.Errorf("index does not list %s", path)
		}
	}
	if srv.Addr != "localhost:8080" {
		t.Errorf("server address %q, want localhost:8080", srv.Addr)
	}
}

func TestHandleData(t *testing.T) {
	sample := []metrics.Metric{{Name: "sessions_active", Namespace: []string{"Proxy", "Server"}, Value: metrics.MetricValue{Raw: 3}}}

	tests := []struct {
		name          string
		query         string
		results       []metrics.Metric
		wantStatus    int
		wantError     bool
		wantNamespace []string
	}{
		{name: "defaults", query: "?name=sessions_active", results: sample, wantStatus: http.StatusOK},
		{name: "no results", query: "", wantStatus: http.StatusOK, wantError: true},
		{name: "namespace", query: "Proxy/Server?name=sessions_active", results: sample, wantStatus: http.StatusOK, wantNamespace: []string{"Proxy", "Server"}},
		{name: "invalid start", query: "?starttime=badtime", wantStatus: http.StatusBadRequest},
		{name: "unparseable relative start uses default", query: "?starttime=-5w", results: sample, wantStatus: http.StatusOK},
		{name: "relative start", query: "?starttime=-5m", results: sample, wantStatus: http.StatusOK},
		{name: "future start", query: "?starttime=%2B15m", wantStatus: http.StatusBadRequest},
		{name: "absolute start", query: "?starttime=2001-01-02T01:02:03.001Z", results: sample, wantStatus: http.StatusOK},
		{name: "invalid end", query: "?endtime=%2B2y", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &mockQuerier{results: tt.results}
			rec := httptest.NewRecorder()
			handleData(context.Background(), querier, rec, httptest.NewRequest(http.MethodGet, global.DataPath+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body, _ := io.ReadAll(rec.Body)
			if gotError := strings.Contains(string(body), `"error"`); gotError != tt.wantError {
				t.Errorf("error response %v, want %v: %s", gotError, tt.wantError, body)
			}
			if tt.wantNamespace != nil && strings.Join(querier.lastNamespace, "/") != strings.Join(tt.wantNamespace, "/") {
				t.Errorf("namespace %v, want %v", querier.lastNamespace, tt.wantNamespace)
			}
		})
	}
}

func TestParseWindowRelativeStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/data/?starttime=-5m", nil)
	start, end, err := parseWindow(req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(now.Add(-5*time.Minute)) || !end.Equal(now) {
		t.Errorf("window %v..%v, want %v..%v", start, end, now.Add(-5*time.Minute), now)
	}
}

func TestHandleDiscovery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		results    []metrics.Metric
		wantStatus int
	}{
		{name: "all", query: "", results: []metrics.Metric{{Name: "bytes_sent"}}, wantStatus: http.StatusOK},
		{name: "typed", query: "Proxy/?type=Counter", results: []metrics.Metric{{Name: "bytes_sent", Type: metrics.Counter}}, wantStatus: http.StatusOK},
		{name: "invalid type", query: "?type=histogram", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleDiscovery(context.Background(), &mockQuerier{results: tt.results}, rec,
				httptest.NewRequest(http.MethodGet, global.DiscoveryPath+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var decoded []metrics.JMetric
			err := json.NewDecoder(rec.Body).Decode(&decoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(decoded) != len(tt.results) {
				t.Errorf("got %d results, want %d", len(decoded), len(tt.results))
			}
		})
	}
}

func TestHandleAggregation(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		aggregate  metrics.Metric
		aggErr     error
		wantStatus int
		wantRaw    string
		wantError  bool
	}{
		{
			name:       "sum",
			query:      "Proxy/Server?aggregation=sum&name=bytes_sent",
			aggregate:  metrics.Metric{Name: "bytes_sent", Value: metrics.MetricValue{Raw: 42.0}},
			wantStatus: http.StatusOK,
			wantRaw:    "42",
		},
		{name: "unknown aggregation", query: "?aggregation=median&name=x", wantStatus: http.StatusBadRequest},
		{name: "invalid start", query: "?aggregation=sum&starttime=badtime", wantStatus: http.StatusBadRequest},
		{
			name:       "registry error",
			query:      "?aggregation=avg&name=missing",
			aggErr:     errors.New("no metrics named missing"),
			wantStatus: http.StatusOK,
			wantError:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleAggregation(context.Background(), &mockQuerier{aggregate: tt.aggregate, aggErr: tt.aggErr}, rec,
				httptest.NewRequest(http.MethodGet, global.AggregationPath+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := rec.Body.String()
			if tt.wantError {
				if !strings.Contains(body, "no metrics named missing") {
					t.Errorf("expected error body, got %s", body)
				}
				return
			}
			var decoded metrics.JMetric
			err := json.Unmarshal([]byte(body), &decoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Value.Raw != tt.wantRaw {
				t.Errorf("raw %q, want %q", decoded.Value.Raw, tt.wantRaw)
			}
		})
	}
}

func TestServesRegistry(t *testing.T) {
	registry := metrics.New()
	ts := registry.NewTimeSlice(time.Now(), time.Second)
	registry.Add(ts, metrics.Metric{
		Name:      "sessions_active",
		Namespace: []string{"Proxy", "Server"},
		Type:      metrics.Gauge,
		Timestamp: ts,
		Value:     metrics.MetricValue{Raw: 2, Unit: "count", Interval: time.Second},
	})

	srv := SetupListener(context.Background(), 0, registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, global.DataPath+"Proxy?name=sessions_active&starttime=-1h", nil))

	var decoded []metrics.JMetric
	err := json.NewDecoder(rec.Body).Decode(&decoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Value.Raw != "2" {
		t.Errorf("got %+v, want one sessions_active sample of 2", decoded)
	}
}
