package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion string = "v0.3.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath    string = "/etc/f1timing.json"
	DefaultBinaryPath    string = "/usr/local/bin/f1timing"
	DefaultUnitPath      string = "/etc/systemd/system/f1timing.service"
	DefaultStateDir      string = "/var/lib/f1timing"
	DefaultSeedStorePath string = DefaultStateDir + "/seeds.db"
	PasswordEnvVar       string = "F1TIMING_PASSWORD"

	// Proxy server defaults
	DefaultProxyPort           int           = 50192
	DefaultProxyAddress        string        = "0.0.0.0"
	DefaultProxyBacklog        int           = 100
	DefaultSessionBufferSize   int           = 1024
	MinSessionBufferSize       int           = 64
	DefaultSessionWriteTimeout time.Duration = 10 * time.Second
	DefaultConnectTimeout      time.Duration = 15 * time.Second
	DefaultAcceptBurst         int           = 16

	// Recorder defaults
	DefaultRecordRetries  uint64        = 10
	DefaultRecordMaxDelay time.Duration = 2 * time.Minute

	// Timeout values
	ServerShutdownTimeout time.Duration = 10 * time.Second

	// Metric HTTP server
	HTTPListenPort   int           = 10000 + DefaultProxyPort%10000 // Default listen port
	HTTPListenAddr   string        = "localhost"                    // Metric queries only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DataPath         string        = "/data/"
	DiscoveryPath    string        = "/discover/"
	AggregationPath  string        = "/aggregate/"

	DefaultMetricInterval  time.Duration = 10 * time.Second
	DefaultMetricRetention time.Duration = 1 * time.Hour

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSProxy     string = "Proxy"
	NSSession   string = "Session"
	NSUpstream  string = "Upstream"
	NSAccept    string = "Accept"
	NSFeed      string = "Feed"
	NSKeyframe  string = "Keyframe"
	NSSeed      string = "Seed"
	NSTranslate string = "Translator"
	NSRecord    string = "Recorder"
	NSPlay      string = "Playback"
	NSFixup     string = "Fixup"
	NSoBeats    string = "Beats"
)
