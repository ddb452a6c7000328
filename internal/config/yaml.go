// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mirage/internal/decoder"
	applog "mirage/internal/log"
	"mirage/internal/pipeline"
	"mirage/internal/resample"
	"mirage/internal/spectral"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var logger = applog.New("configuration")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Force debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Shape of the spectrogram.
	Decoder   DecoderConfig   `yaml:"decoder"`   // How files are read.
	Transport TransportConfig `yaml:"transport"` // Where columns are published while analysing.
	Onsets    OnsetConfig     `yaml:"onsets"`    // Energy-jump onset detection over written columns.
}

// AnalysisConfig mirrors pipeline.Config.
type AnalysisConfig struct {
	TargetRate      float64 `yaml:"target_rate"`      // Analysis sample rate in Hz.
	DurationSeconds float64 `yaml:"duration_seconds"` // Seconds of audio analysed per file.
	WindowSize      int     `yaml:"window_size"`      // Samples per window and per hop.
	Channels        int     `yaml:"channels"`         // Must be 1.
	Transform       string  `yaml:"transform"`        // "gonum" or "godsp".
	Resampler       string  `yaml:"resampler"`        // "zoh" or a polyphase quality.
	QueueSize       int     `yaml:"queue_size"`       // Decoder event queue bound.
}

// DecoderConfig holds settings for file decoding.
type DecoderConfig struct {
	ChunkFrames int `yaml:"chunk_frames"` // Mono frames per Data event.
}

// TransportConfig holds settings related to publishing columns over the network.
type TransportConfig struct {
	LogColumns       bool   `yaml:"log_columns"`        // Log a digest of each column at debug level.
	WebSocketEnabled bool   `yaml:"websocket_enabled"`  // Broadcast columns as JSON over WebSocket.
	WebSocketAddr    string `yaml:"websocket_addr"`     // Listen address, e.g. ":8080".
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send columns as binary UDP packets.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port, e.g. "127.0.0.1:9090".
}

// OnsetConfig configures analysis.OnsetDetector.
type OnsetConfig struct {
	Enabled        bool    `yaml:"enabled"`          // Count onsets and report them per file.
	Threshold      float64 `yaml:"threshold"`        // Minimum mean column power for an onset.
	MinEnergyRatio float64 `yaml:"min_energy_ratio"` // Minimum power increase over the previous column.
}

// Default returns the built-in configuration.
func Default() Config {
	analysis := pipeline.DefaultConfig()
	return Config{
		Debug:    false,
		LogLevel: "info",
		Analysis: AnalysisConfig{
			TargetRate:      analysis.TargetRate,
			DurationSeconds: analysis.DurationSeconds,
			WindowSize:      analysis.WindowSize,
			Channels:        analysis.Channels,
			Transform:       analysis.Transform,
			Resampler:       analysis.Resampler,
			QueueSize:       analysis.QueueSize,
		},
		Decoder: DecoderConfig{
			ChunkFrames: decoder.DefaultChunkFrames,
		},
		Transport: TransportConfig{
			LogColumns:       false,
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
		Onsets: OnsetConfig{
			Enabled:        true,
			Threshold:      1e5,
			MinEnergyRatio: 2,
		},
	}
}

// SearchPaths are tried in order when LoadConfig is given an empty path.
var SearchPaths = []string{
	"config.yaml",
	"mirage.yaml",
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches SearchPaths. If no file is found, it uses built-in defaults. After
// loading defaults or from file, it applies environment variable overrides and
// validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range SearchPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	logger.Debugf("loaded %s", path)

	// Environment wins over the file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every section. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q is not one of debug, info, warn, error, fatal", ErrInvalid, c.LogLevel)
	}

	if err := c.Pipeline().Validate(); err != nil {
		return fmt.Errorf("%w: analysis: %w", ErrInvalid, err)
	}
	if !contains(spectral.Backends, c.Analysis.Transform) {
		return fmt.Errorf("%w: analysis.transform %q is not one of %s",
			ErrInvalid, c.Analysis.Transform, strings.Join(spectral.Backends, ", "))
	}
	if !contains(resample.Backends, c.Analysis.Resampler) {
		return fmt.Errorf("%w: analysis.resampler %q is not one of %s",
			ErrInvalid, c.Analysis.Resampler, strings.Join(resample.Backends, ", "))
	}

	if c.Decoder.ChunkFrames <= 0 {
		return fmt.Errorf("%w: decoder.chunk_frames must be positive, got %d", ErrInvalid, c.Decoder.ChunkFrames)
	}

	if c.Transport.WebSocketEnabled && !strings.Contains(c.Transport.WebSocketAddr, ":") {
		return fmt.Errorf("%w: transport.websocket_addr %q appears invalid (missing port?)", ErrInvalid, c.Transport.WebSocketAddr)
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("%w: transport.udp_target_address must be set when UDP is enabled", ErrInvalid)
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("%w: transport.udp_target_address %q appears invalid (missing port?)", ErrInvalid, c.Transport.UDPTargetAddress)
		}
	}

	if c.Onsets.Enabled {
		if c.Onsets.Threshold < 0 {
			return fmt.Errorf("%w: onsets.threshold cannot be negative, got %g", ErrInvalid, c.Onsets.Threshold)
		}
		if c.Onsets.MinEnergyRatio <= 1 {
			return fmt.Errorf("%w: onsets.min_energy_ratio must exceed 1, got %g", ErrInvalid, c.Onsets.MinEnergyRatio)
		}
	}

	return nil
}

// Pipeline converts the analysis section into a pipeline.Config.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		TargetRate:      c.Analysis.TargetRate,
		DurationSeconds: c.Analysis.DurationSeconds,
		WindowSize:      c.Analysis.WindowSize,
		Channels:        c.Analysis.Channels,
		Transform:       c.Analysis.Transform,
		Resampler:       c.Analysis.Resampler,
		QueueSize:       c.Analysis.QueueSize,
	}
}

// Level returns the effective log level; Debug overrides LogLevel.
func (c *Config) Level() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// applyEnvOverrides reads the ENV_* variables. Values that fail to parse are
// logged and ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			logger.Infof("overriding debug from env: %v", bVal)
		} else {
			logger.Warnf("ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		logger.Infof("overriding log_level from env: %s", val)
	}

	// ENV_{...} analysis overrides.

	// ENV_TARGET_RATE
	if val, ok := os.LookupEnv("ENV_TARGET_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Analysis.TargetRate = fVal
			logger.Infof("overriding analysis.target_rate from env: %g", fVal)
		} else {
			logger.Warnf("ignoring ENV_TARGET_RATE=%q: %v", val, err)
		}
	}
	// ENV_DURATION_SECONDS
	if val, ok := os.LookupEnv("ENV_DURATION_SECONDS"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Analysis.DurationSeconds = fVal
			logger.Infof("overriding analysis.duration_seconds from env: %g", fVal)
		} else {
			logger.Warnf("ignoring ENV_DURATION_SECONDS=%q: %v", val, err)
		}
	}
	// ENV_WINDOW_SIZE
	if val, ok := os.LookupEnv("ENV_WINDOW_SIZE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.WindowSize = iVal
			logger.Infof("overriding analysis.window_size from env: %d", iVal)
		} else {
			logger.Warnf("ignoring ENV_WINDOW_SIZE=%q: %v", val, err)
		}
	}

	// ENV_{WS,UDP}_{...} transport overrides. Setting an address enables
	// the transport.

	// ENV_WS_ADDR
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		cfg.Transport.WebSocketAddr = val
		cfg.Transport.WebSocketEnabled = val != ""
		logger.Infof("overriding transport.websocket_addr from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			logger.Infof("overriding transport.udp_enabled from env: %v", bVal)
		} else {
			logger.Warnf("ignoring ENV_UDP_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		cfg.Transport.UDPEnabled = val != ""
		logger.Infof("overriding transport.udp_target_address from env: %s", val)
	}
}
