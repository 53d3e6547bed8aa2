package server

import (
	"encoding/json"
	"f1timing/internal/global"
	"fmt"
	"os"
	"time"

	"github.com/pbnjay/memory"
)

// Rough encoded size of one message, used to bound session buffer memory
const typicalFrameSize = 64

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Parses JSON config into server config, filling defaults for anything unset
func (cfg JSONConfig) NewServerConf() (config Config, err error) {
	// Network settings
	config.ListenIP = cfg.Network.Address
	config.ListenPort = cfg.Network.Port
	config.Backlog = cfg.Network.Backlog
	config.AcceptRate = cfg.Network.AcceptRate
	config.AcceptBurst = cfg.Network.AcceptBurst

	// Upstream settings
	config.Username = cfg.Upstream.Username
	config.Password = cfg.Upstream.Password
	if config.Password == "" {
		config.Password = os.Getenv(global.PasswordEnvVar)
	}
	config.LazyUpstream = cfg.Upstream.Lazy
	config.PlaybackPath = cfg.Upstream.PlaybackPath
	config.PlaybackSpeed = cfg.Upstream.PlaybackSpeed
	config.RecordPath = cfg.Upstream.RecordPath
	config.SeedStorePath = cfg.Upstream.SeedStorePath
	if cfg.Upstream.ConnectTimeout != "" {
		config.ConnectTimeout, err = time.ParseDuration(cfg.Upstream.ConnectTimeout)
		if err != nil {
			err = fmt.Errorf("failed to parse upstream connect timeout: %w", err)
			return
		}
	}

	// Session settings
	config.SessionBufferSize = cfg.Sessions.BufferSize
	if cfg.Sessions.WriteTimeout != "" {
		config.SessionWriteTimeout, err = time.ParseDuration(cfg.Sessions.WriteTimeout)
		if err != nil {
			err = fmt.Errorf("failed to parse session write timeout: %w", err)
			return
		}
	}

	// Output settings
	config.BeatsEndpoint = cfg.Outputs.BeatsAddress

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age time: %w", err)
			return
		}
	}
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse metric collection interval time: %w", err)
			return
		}
	}

	if config.PlaybackSpeed < 0 {
		err = fmt.Errorf("playback speed must be positive, got %v", config.PlaybackSpeed)
		return
	}
	if config.PlaybackPath == "" && config.Username == "" {
		err = fmt.Errorf("upstream needs either a username for the live feed or a playback path")
		return
	}

	config.setDefaults()
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Network
	if cfg.ListenIP == "" {
		cfg.ListenIP = global.DefaultProxyAddress
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = global.DefaultProxyPort
	}
	if cfg.Backlog == 0 {
		cfg.Backlog = global.DefaultProxyBacklog
	}
	if cfg.AcceptRate > 0 && cfg.AcceptBurst == 0 {
		cfg.AcceptBurst = global.DefaultAcceptBurst
	}

	// Upstream
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = global.DefaultConnectTimeout
	}
	if cfg.PlaybackSpeed == 0 {
		cfg.PlaybackSpeed = 1.0
	}

	// Sessions
	if cfg.SessionBufferSize == 0 {
		cfg.SessionBufferSize = global.DefaultSessionBufferSize

		// A backlog's worth of full session buffers must fit in a small share of free memory
		availMem := memory.FreeMemory()
		if availMem > 0 {
			perSession := uint64(cfg.SessionBufferSize * typicalFrameSize)
			budget := availMem / 64
			if perSession*uint64(cfg.Backlog) > budget {
				cfg.SessionBufferSize = int(budget / uint64(cfg.Backlog) / typicalFrameSize)
			}
		}
	}
	if cfg.SessionBufferSize < global.MinSessionBufferSize {
		cfg.SessionBufferSize = global.MinSessionBufferSize
	}
	if cfg.SessionWriteTimeout == 0 {
		cfg.SessionWriteTimeout = global.DefaultSessionWriteTimeout
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricRetention
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPort
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}
