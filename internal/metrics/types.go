package metrics

import (
	"sync"
	"time"
)

// Time sliced metric storage: slice -> namespace -> name
type Registry struct {
	mutex  sync.RWMutex
	slices map[time.Time]map[string]map[string]Metric
}

type MetricType string

const (
	Counter MetricType = "counter" // only increases within a run
	Gauge   MetricType = "gauge"   // point in time reading
	Summary MetricType = "summary" // derived per interval (rates, averages)
)

// Aggregations supported by Registry.Aggregate
const (
	AggregateSum = "sum"
	AggregateAvg = "avg"
	AggregateMin = "min"
	AggregateMax = "max"
)

type Metric struct {
	Name        string // e.g. sessions_active, bytes_sent
	Description string
	Namespace   []string // e.g. Proxy/Server
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time
}

type MetricValue struct {
	Raw      any    // int, int64, uint64, float64 or a numeric string
	Unit     string // e.g. count, bytes, msg/s
	Interval time.Duration
}

// JSON form served by the query server
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
