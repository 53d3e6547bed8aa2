package server

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/metrics"
	"net/http"
	"strings"
	"time"
)

const defaultWindow = time.Minute

// Namespace segments after the route prefix, nil for the root
func namespaceFromPath(path, prefix string) (namespace []string) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}

// Reads the starttime/endtime query window. Start defaults to a minute ago and may be relative
// (an unparseable relative start falls back to the default), end defaults to now.
func parseWindow(r *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStart := r.FormValue("starttime")
	switch {
	case rawStart == "":
		start = now.Add(-defaultWindow)
	case rawStart[0] == '-' || rawStart[0] == '+':
		offset, parseErr := time.ParseDuration(rawStart)
		if parseErr != nil {
			start = now.Add(-defaultWindow)
			break
		}
		if offset > 0 {
			err = errors.New("start time is in the future")
			return
		}
		start = now.Add(offset)
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStart)
		if err != nil {
			return
		}
	}

	rawEnd := r.FormValue("endtime")
	if rawEnd == "" || rawEnd == "now" {
		end = now
		return
	}
	end, err = time.Parse(time.RFC3339Nano, rawEnd)
	return
}

func respondMetrics(ctx context.Context, w http.ResponseWriter, found []metrics.Metric) {
	if len(found) == 0 {
		jResp(ctx, w, Jerror{Msg: "Search returned no results"})
		return
	}
	results := make([]metrics.JMetric, 0, len(found))
	for _, metric := range found {
		results = append(results, metric.Convert())
	}
	jResp(ctx, w, results)
}

func handleData(ctx context.Context, querier Querier, w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r, time.Now())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	namespace := namespaceFromPath(r.URL.Path, global.DataPath)
	respondMetrics(ctx, w, querier.Search(r.FormValue("name"), namespace, start, end))
}

func handleDiscovery(ctx context.Context, querier Querier, w http.ResponseWriter, r *http.Request) {
	var metricType metrics.MetricType
	switch rawType := metrics.MetricType(strings.ToLower(r.FormValue("type"))); rawType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
		metricType = rawType
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	namespace := namespaceFromPath(r.URL.Path, global.DiscoveryPath)
	respondMetrics(ctx, w, querier.Discover(r.FormValue("name"), r.FormValue("description"), namespace, r.FormValue("unit"), metricType))
}

func handleAggregation(ctx context.Context, querier Querier, w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r, time.Now())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	aggregation := r.FormValue("aggregation")
	switch aggregation {
	case metrics.AggregateSum, metrics.AggregateAvg, metrics.AggregateMin, metrics.AggregateMax:
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	namespace := namespaceFromPath(r.URL.Path, global.AggregationPath)
	result, err := querier.Aggregate(aggregation, r.FormValue("name"), namespace, start, end)
	if err != nil {
		jResp(ctx, w, Jerror{Msg: err.Error()})
		return
	}
	jResp(ctx, w, result.Convert())
}
