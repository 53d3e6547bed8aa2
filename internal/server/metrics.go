package server

import (
	"context"
	"f1timing/internal/calc"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/metrics"
	"runtime/debug"
	"time"
)

func NewGatherer(collect func(interval time.Duration) []metrics.Metric, interval time.Duration, maximumMetricAge time.Duration) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Interval:  interval,
		Retention: maximumMetricAge,
		collect:   collect,
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

				lastRun = now
				gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)
			}

			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in proxy metric collector: %v\n%s", fatalError, stack)
		}
	}()

	gatherer.Registry.Add(timeSlice, gatherer.collect(interval)...)
}

// Reads and clears the interval counters
func (srv *Server) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	accepted := srv.Metrics.SessionsAccepted.Swap(0)
	forced := srv.Metrics.ForcedDisconnects.Swap(0)
	published := srv.Metrics.MessagesPublished.Swap(0)
	dropped := srv.Metrics.FramesDropped.Swap(0)
	sent := srv.Metrics.BytesSent.Swap(0)

	var backlogs []uint64
	srv.mutex.Lock()
	h := srv.hub
	srv.mutex.Unlock()
	if h != nil {
		backlogs = h.backlogs()
	}
	active := len(backlogs)

	recordTime := time.Now()
	sessionNS := []string{global.NSProxy, global.NSSession}
	upstreamNS := []string{global.NSProxy, global.NSUpstream}

	var publishRate float64
	if interval > 0 {
		publishRate = float64(published) / interval.Seconds()
	}

	collection = []metrics.Metric{
		{
			Name:        "sessions_accepted",
			Description: "Client connections accepted in the interval",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: accepted, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "sessions_active",
			Description: "Clients connected at collection time",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: active, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "session_backlog",
			Description: "Typical frames queued per client (10% trimmed mean, ignores a few stalled clients)",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: calc.TrimmedMean(backlogs, 0.1), Unit: "frames", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "session_backlog_max",
			Description: "Frames queued for the furthest behind client",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: calc.Max(backlogs), Unit: "frames", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "forced_disconnects",
			Description: "Clients disconnected for falling behind in the interval",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: forced, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "bytes_sent",
			Description: "Bytes written to all clients in the interval",
			Namespace:   sessionNS,
			Value:       metrics.MetricValue{Raw: sent, Unit: "bytes", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "messages_published",
			Description: "Upstream messages offered to clients in the interval",
			Namespace:   upstreamNS,
			Value:       metrics.MetricValue{Raw: published, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "messages_per_second",
			Description: "Average upstream message rate over the interval",
			Namespace:   upstreamNS,
			Value:       metrics.MetricValue{Raw: publishRate, Unit: "msg/s", Interval: interval},
			Type:        metrics.Summary,
			Timestamp:   recordTime,
		},
		{
			Name:        "frames_refused",
			Description: "Messages not queued because a client buffer was full",
			Namespace:   upstreamNS,
			Value:       metrics.MetricValue{Raw: dropped, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
	}
	return
}
