package server

import (
	"context"
	"f1timing/internal/metrics"
	"time"
)

// Metric storage the query server reads from
type Querier interface {
	Search(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
	Discover(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
	Aggregate(aggregation, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error)
}

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Served at the root in place of a help page
type jIndex struct {
	Program     string            `json:"program"`
	Version     string            `json:"version"`
	Endpoints   map[string]string `json:"endpoints"`
	TimeFormats string            `json:"timeFormats"`
}
