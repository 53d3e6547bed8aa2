// In-memory registry of time sliced metrics
package metrics

import (
	"fmt"
	"strings"
	"time"
)

func New() (registry *Registry) {
	registry = &Registry{
		slices: make(map[time.Time]map[string]map[string]Metric),
	}
	return
}

// Prepares the slice covering now, rounded down to the interval
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (timeSlice time.Time) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	timeSlice = now
	if interval > 0 {
		timeSlice = now.Truncate(interval)
	}
	if registry.slices[timeSlice] == nil {
		registry.slices[timeSlice] = make(map[string]map[string]Metric)
	}
	return
}

// Stores metrics in a slice created by NewTimeSlice. A metric replaces any earlier one
// with the same namespace and name in that slice.
func (registry *Registry) Add(timeSlice time.Time, metrics ...Metric) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	namespaces := registry.slices[timeSlice]
	if namespaces == nil {
		return
	}
	for _, metric := range metrics {
		namespace := strings.Join(metric.Namespace, "/")
		if namespaces[namespace] == nil {
			namespaces[namespace] = make(map[string]Metric)
		}
		namespaces[namespace][metric.Name] = metric
	}
}

// Drops slices older than maxAge relative to now
func (registry *Registry) Prune(now time.Time, maxAge time.Duration) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	for timeSlice := range registry.slices {
		if now.Sub(timeSlice) > maxAge {
			delete(registry.slices, timeSlice)
		}
	}
}

func (inMetric Metric) Convert() (outMetric JMetric) {
	outMetric = JMetric{
		Name:        inMetric.Name,
		Description: inMetric.Description,
		Namespace:   strings.Join(inMetric.Namespace, "/"),
		Type:        string(inMetric.Type),
		Timestamp:   inMetric.Timestamp.Format(time.RFC3339Nano),
		Value: JMetricValue{
			Raw:      fmt.Sprintf("%v", inMetric.Value.Raw),
			Unit:     inMetric.Value.Unit,
			Interval: inMetric.Value.Interval.String(),
		},
	}
	return
}
