// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"
	"math"

	"mirage/internal/resample"
	"mirage/internal/spectral"
)

// Config fixes the shape of every session a Pipeline runs. It is copied at
// construction and never changes afterwards.
type Config struct {
	TargetRate      float64 // analysis sample rate in Hz
	DurationSeconds float64 // length of audio analysed per session
	WindowSize      int     // samples per analysis window and hop
	Channels        int     // must be 1; analysis is mono only
	Transform       string  // spectral backend, see spectral.NewTransform
	Resampler       string  // converter backend, see resample.NewFactory
	QueueSize       int     // bound of the decoder event queue
}

// DefaultQueueSize bounds the decoder event queue when Config.QueueSize is 0.
const DefaultQueueSize = 16

// DefaultConfig returns the analysis shape used for similarity features.
func DefaultConfig() Config {
	return Config{
		TargetRate:      11025,
		DurationSeconds: 135,
		WindowSize:      1024,
		Channels:        1,
		Transform:       spectral.Gonum,
		Resampler:       resample.ZeroOrderHold,
		QueueSize:       DefaultQueueSize,
	}
}

// HopCount returns floor(TargetRate*DurationSeconds/WindowSize).
func (c Config) HopCount() int {
	if c.WindowSize <= 0 {
		return 0
	}
	return int(math.Floor(c.TargetRate * c.DurationSeconds / float64(c.WindowSize)))
}

// BinCount returns WindowSize/2+1.
func (c Config) BinCount() int {
	return c.WindowSize/2 + 1
}

// Validate checks the values that do not depend on a transform backend.
func (c Config) Validate() error {
	if c.TargetRate <= 0 {
		return fmt.Errorf("target rate must be positive, got %.1f", c.TargetRate)
	}
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive, got %.1f", c.DurationSeconds)
	}
	if c.WindowSize < 2 {
		return fmt.Errorf("window size must be at least 2, got %d", c.WindowSize)
	}
	if c.Channels != 1 {
		return fmt.Errorf("only mono analysis is supported, got %d channels", c.Channels)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size cannot be negative, got %d", c.QueueSize)
	}
	if c.HopCount() < 1 {
		return fmt.Errorf("%.1f s at %.1f Hz does not fill a single %d-sample window",
			c.DurationSeconds, c.TargetRate, c.WindowSize)
	}
	return nil
}
