package metrics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Exact or prefix namespace match, an empty query matches everything
func matchesNamespace(metricNS, queryNS []string) bool {
	if len(metricNS) < len(queryNS) {
		return false
	}
	return slices.Equal(metricNS[:len(queryNS)], queryNS)
}

// Slices within [start, end] oldest first. Zero bounds are open.
func (registry *Registry) slicesBetween(start, end time.Time) (timestamps []time.Time) {
	for ts := range registry.slices {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	slices.SortFunc(timestamps, func(a, b time.Time) int { return a.Compare(b) })
	return
}

// Metrics with the given name (any when empty) under the namespace prefix, oldest first
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	for _, ts := range registry.slicesBetween(start, end) {
		for namespace, byName := range registry.slices[ts] {
			if !matchesNamespace(strings.Split(namespace, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range byName {
				if name == "" || metricName == name {
					results = append(results, metric)
				}
			}
		}
	}
	return
}

// One value-less sample per distinct metric matching the filters, sorted by name then namespace
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, namespaces := range registry.slices {
		for namespace, byName := range namespaces {
			if !matchesNamespace(strings.Split(namespace, "/"), namespacePrefix) {
				continue
			}
			for _, metric := range byName {
				if name != "" && !strings.Contains(metric.Name, name) {
					continue
				}
				if description != "" && !strings.Contains(metric.Description, description) {
					continue
				}
				if unit != "" && metric.Value.Unit != unit {
					continue
				}
				if metricType != "" && metric.Type != metricType {
					continue
				}

				key := namespace + "|" + metric.Name + "|" + string(metric.Type) + "|" + metric.Value.Unit
				if _, found := seen[key]; found {
					continue
				}
				seen[key] = struct{}{}
				results = append(results, Metric{
					Name:        metric.Name,
					Description: metric.Description,
					Namespace:   metric.Namespace,
					Type:        metric.Type,
					Value:       MetricValue{Unit: metric.Value.Unit},
				})
			}
		}
	}

	slices.SortFunc(results, func(a, b Metric) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(strings.Join(a.Namespace, "/"), strings.Join(b.Namespace, "/"))
	})
	return
}

// Folds every matching metric value in the window into one metric
func (registry *Registry) Aggregate(aggregation, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	matches := registry.Search(name, namespacePrefix, start, end)
	if len(matches) == 0 {
		err = fmt.Errorf("no metrics named %q under %q", name, strings.Join(namespacePrefix, "/"))
		return
	}

	values := make([]float64, 0, len(matches))
	for _, metric := range matches {
		var value float64
		value, err = toFloat(metric.Value.Raw)
		if err != nil {
			err = fmt.Errorf("failed to aggregate %s: %w", metric.Name, err)
			return
		}
		values = append(values, value)
	}

	var total float64
	for _, value := range values {
		total += value
	}

	var folded float64
	switch aggregation {
	case AggregateSum:
		folded = total
	case AggregateAvg:
		folded = total / float64(len(values))
	case AggregateMin:
		folded = slices.Min(values)
	case AggregateMax:
		folded = slices.Max(values)
	default:
		err = fmt.Errorf("unknown aggregation %q", aggregation)
		return
	}

	latest := matches[len(matches)-1]
	result = Metric{
		Name:        latest.Name,
		Description: aggregation + " of " + latest.Description,
		Namespace:   namespacePrefix,
		Type:        Summary,
		Timestamp:   latest.Timestamp,
		Value: MetricValue{
			Raw:      folded,
			Unit:     latest.Value.Unit,
			Interval: end.Sub(start),
		},
	}
	return
}

func toFloat(raw any) (value float64, err error) {
	switch v := raw.(type) {
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint64:
		value = float64(v)
	case float64:
		value = v
	case string:
		value, err = strconv.ParseFloat(v, 64)
	default:
		err = fmt.Errorf("value %v of type %T is not numeric", raw, raw)
	}
	return
}
