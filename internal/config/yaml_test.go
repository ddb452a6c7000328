// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	applog "mirage/internal/log"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	want := Default()
	if cfg.Analysis != want.Analysis || cfg.Decoder != want.Decoder ||
		cfg.Transport != want.Transport || cfg.Onsets != want.Onsets {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("config.yaml", []byte("analysis:\n  window_size: 512\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.WindowSize != 512 {
		t.Errorf("window_size = %d, want 512", cfg.Analysis.WindowSize)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: warn
analysis:
  target_rate: 22050
  duration_seconds: 30
  window_size: 2048
  transform: godsp
  resampler: medium
decoder:
  chunk_frames: 1024
transport:
  udp_enabled: true
  udp_target_address: "127.0.0.1:9999"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := cfg.Pipeline()
	if p.TargetRate != 22050 || p.DurationSeconds != 30 || p.WindowSize != 2048 {
		t.Errorf("unexpected analysis section: %+v", p)
	}
	if p.Transform != "godsp" || p.Resampler != "medium" {
		t.Errorf("unexpected backends: %+v", p)
	}
	if p.Channels != 1 || p.QueueSize != 16 {
		t.Errorf("unset keys should keep defaults: %+v", p)
	}
	if cfg.Decoder.ChunkFrames != 1024 {
		t.Errorf("chunk_frames = %d, want 1024", cfg.Decoder.ChunkFrames)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "127.0.0.1:9999" {
		t.Errorf("unexpected transport section: %+v", cfg.Transport)
	}
	if cfg.Level() != applog.LevelWarn {
		t.Errorf("Level() = %v, want WARN", cfg.Level())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{"stereo", "analysis:\n  channels: 2\n"},
		{"unknown transform", "analysis:\n  transform: fftw\n"},
		{"unknown resampler", "analysis:\n  resampler: linear\n"},
		{"bad log level", "log_level: loud\n"},
		{"zero chunk", "decoder:\n  chunk_frames: 0\n"},
		{"udp without port", "transport:\n  udp_enabled: true\n  udp_target_address: localhost\n"},
		{"websocket without port", "transport:\n  websocket_enabled: true\n  websocket_addr: localhost\n"},
		{"too short", "analysis:\n  duration_seconds: 0.01\n"},
		{"flat onset ratio", "onsets:\n  min_energy_ratio: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tt.content))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_TARGET_RATE", "22050")
	t.Setenv("ENV_DURATION_SECONDS", "60")
	t.Setenv("ENV_WINDOW_SIZE", "not-a-number")
	t.Setenv("ENV_WS_ADDR", "127.0.0.1:7000")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "127.0.0.1:9091")

	cfg := Default()
	cfg.applyEnvOverrides()

	if !cfg.Debug || cfg.Level() != applog.LevelDebug {
		t.Errorf("ENV_DEBUG not applied")
	}
	if cfg.Analysis.TargetRate != 22050 || cfg.Analysis.DurationSeconds != 60 {
		t.Errorf("analysis overrides not applied: %+v", cfg.Analysis)
	}
	if cfg.Analysis.WindowSize != Default().Analysis.WindowSize {
		t.Errorf("unparsable ENV_WINDOW_SIZE should be ignored, got %d", cfg.Analysis.WindowSize)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddr != "127.0.0.1:7000" {
		t.Errorf("ENV_WS_ADDR not applied: %+v", cfg.Transport)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "127.0.0.1:9091" {
		t.Errorf("ENV_UDP_TARGET_ADDRESS not applied: %+v", cfg.Transport)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestOptionsApply(t *testing.T) {
	t.Parallel()
	cfg := Default()
	opts := NewOptions()

	// Values without MarkChanged are ignored.
	opts.WindowSize = 4096
	opts.TargetRate = 44100
	opts.MarkChanged(FlagRate)
	opts.UDPTargetAddress = "127.0.0.1:9000"
	opts.MarkChanged(FlagUDP)
	opts.Verbose = true
	opts.MarkChanged(FlagVerbose)

	if err := opts.Apply(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.TargetRate != 44100 {
		t.Errorf("rate = %g, want 44100", cfg.Analysis.TargetRate)
	}
	if cfg.Analysis.WindowSize != Default().Analysis.WindowSize {
		t.Errorf("window changed without flag: %d", cfg.Analysis.WindowSize)
	}
	if !cfg.Transport.UDPEnabled {
		t.Error("udp flag should enable UDP")
	}
	if !cfg.Debug || !cfg.Transport.LogColumns {
		t.Error("verbose should force debug logging")
	}

	opts.WindowSize = 1
	opts.MarkChanged(FlagWindow)
	if err := opts.Apply(&cfg); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
