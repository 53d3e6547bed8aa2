// Local only HTTP server for discovering and querying collected metrics
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Builds the metric query server without starting it
func SetupListener(ctx context.Context, port int, querier Querier) (server *http.Server) {
	mux := http.NewServeMux()

	index := jIndex{
		Program: "f1timing",
		Version: global.ProgVersion,
		Endpoints: map[string]string{
			global.DataPath + "<namespace>":        "metric values (name, starttime, endtime)",
			global.DiscoveryPath + "<namespace>":   "available metrics (name, description, unit, type)",
			global.AggregationPath + "<namespace>": "sum, avg, min or max of a metric (aggregation, name, starttime, endtime)",
		},
		TimeFormats: "RFC3339Nano or a negative duration relative to now (e.g. -5m)",
	}

	mux.HandleFunc("/", getOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		jResp(ctx, w, index)
	}))
	mux.HandleFunc(global.DiscoveryPath, getOnly(func(w http.ResponseWriter, r *http.Request) {
		handleDiscovery(ctx, querier, w, r)
	}))
	mux.HandleFunc(global.DataPath, getOnly(func(w http.ResponseWriter, r *http.Request) {
		handleData(ctx, querier, w, r)
	}))
	mux.HandleFunc(global.AggregationPath, getOnly(func(w http.ResponseWriter, r *http.Request) {
		handleAggregation(ctx, querier, w, r)
	}))

	server = &http.Server{
		Addr:         net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(port)),
		Handler:      mux,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	return
}

// Serves until the server is shut down
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric query server starting on http://%s/\n", server.Addr)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server failed: %v\n", err)
	}
}

func getOnly(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

func jResp(ctx context.Context, w http.ResponseWriter, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(logWriter.ctx, global.VerbosityStandard, global.ErrorLog, "%s\n", strings.TrimSpace(string(p)))
	return
}
