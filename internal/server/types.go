package server

import (
	"context"
	"f1timing/internal/metrics"
	"f1timing/internal/reader"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type JSONConfig struct {
	Network struct {
		Address     string  `json:"address"`
		Port        int     `json:"port"`
		Backlog     int     `json:"backlog,omitempty"`
		AcceptRate  float64 `json:"acceptRate,omitempty"`
		AcceptBurst int     `json:"acceptBurst,omitempty"`
	} `json:"network"`
	Upstream struct {
		Username       string  `json:"username"`
		Password       string  `json:"password,omitempty"`
		Lazy           bool    `json:"lazy"`
		PlaybackPath   string  `json:"playbackPath,omitempty"`
		PlaybackSpeed  float64 `json:"playbackSpeed,omitempty"`
		RecordPath     string  `json:"recordPath,omitempty"`
		SeedStorePath  string  `json:"seedStorePath,omitempty"`
		ConnectTimeout string  `json:"connectTimeout,omitempty"`
	} `json:"upstream"`
	Sessions struct {
		BufferSize   int    `json:"bufferSize,omitempty"`
		WriteTimeout string `json:"writeTimeout,omitempty"`
	} `json:"sessions"`
	Outputs struct {
		BeatsAddress string `json:"beatsAddress,omitempty"`
	} `json:"outputs"`
	Metrics struct {
		Interval          string `json:"collectionInterval"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"queryServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Listener
	ListenIP    string
	ListenPort  int
	Backlog     int     // recorded only, the kernel somaxconn applies
	AcceptRate  float64 // connections per second, 0 is unlimited
	AcceptBurst int

	// Upstream
	Username       string
	Password       string
	LazyUpstream   bool
	PlaybackPath   string
	PlaybackSpeed  float64
	RecordPath     string
	SeedStorePath  string
	ConnectTimeout time.Duration

	// Sessions
	SessionBufferSize   int // frames queued per session before a forced disconnect
	SessionWriteTimeout time.Duration

	// Outputs
	BeatsEndpoint string

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

// Produces the single upstream reader of a server run
type Opener func(ctx context.Context) (reader.Reader, error)

type Server struct {
	cfg  Config
	open Opener

	state atomic.Int32

	mutex       sync.Mutex // guards the fields set by Start and transitions out of Starting
	cancel      context.CancelFunc
	done        chan struct{}
	err         error
	listener    net.Listener
	limiter     *rate.Limiter
	stopPending bool // Stop called before the run was set up

	// Closed by the first session when the upstream is lazy
	upstreamWanted chan struct{}
	wantOnce       *sync.Once

	upstreamMutex sync.Mutex
	upstream      reader.Reader

	hub        *hub
	sessionsWG sync.WaitGroup

	Metrics          MetricStorage
	metricsCollector *Gatherer
	MetricServer     *http.Server
}

// Registry of connected sessions. Mutated by the accept loop and session exit,
// read by the pump.
type hub struct {
	mutex    sync.RWMutex
	sessions map[uuid.UUID]*session
}

type session struct {
	id     uuid.UUID
	conn   net.Conn
	remote string
	outbox chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	overflowed atomic.Bool // buffer filled, disconnect forced
	peerClosed atomic.Bool // client went away, nothing left to write to
}

type MetricStorage struct {
	SessionsAccepted  atomic.Uint64
	ForcedDisconnects atomic.Uint64
	MessagesPublished atomic.Uint64
	FramesDropped     atomic.Uint64 // offers refused by full session buffers
	BytesSent         atomic.Uint64
}

// Periodically moves server counters into the registry
type Gatherer struct {
	Registry  *metrics.Registry
	Interval  time.Duration
	Retention time.Duration
	collect   func(interval time.Duration) []metrics.Metric
}
