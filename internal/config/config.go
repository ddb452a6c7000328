// SPDX-License-Identifier: MIT
package config

// Command names understood by the CLI.
const (
	CommandAnalyze = "analyze"
	CommandVersion = "version"
)

// Flag names. Only flags the user actually set override the file config.
const (
	FlagConfig    = "config"
	FlagRate      = "rate"
	FlagSeconds   = "seconds"
	FlagWindow    = "window"
	FlagTransform = "transform"
	FlagResampler = "resampler"
	FlagWS        = "ws"
	FlagUDP       = "udp"
	FlagVerbose   = "verbose"
)

// Options holds everything parsed from the command line.
type Options struct {
	Command    string   // CommandAnalyze or CommandVersion
	ConfigPath string   // empty searches SearchPaths
	Files      []string // inputs for CommandAnalyze

	TargetRate       float64
	DurationSeconds  float64
	WindowSize       int
	Transform        string
	Resampler        string
	WebSocketAddr    string
	UDPTargetAddress string
	Verbose          bool

	changed map[string]bool
}

// NewOptions returns Options whose flag values start from the built-in
// defaults, so help output shows them.
func NewOptions() *Options {
	d := Default()
	return &Options{
		TargetRate:       d.Analysis.TargetRate,
		DurationSeconds:  d.Analysis.DurationSeconds,
		WindowSize:       d.Analysis.WindowSize,
		Transform:        d.Analysis.Transform,
		Resampler:        d.Analysis.Resampler,
		WebSocketAddr:    "",
		UDPTargetAddress: "",
		changed:          make(map[string]bool),
	}
}

// MarkChanged records that the named flag was given explicitly.
func (o *Options) MarkChanged(flag string) {
	if o.changed == nil {
		o.changed = make(map[string]bool)
	}
	o.changed[flag] = true
}

// Changed reports whether the named flag was given explicitly.
func (o *Options) Changed(flag string) bool {
	return o.changed[flag]
}

// Apply overrides cfg with every explicitly set flag and validates the
// result.
func (o *Options) Apply(cfg *Config) error {
	if o.Changed(FlagRate) {
		cfg.Analysis.TargetRate = o.TargetRate
	}
	if o.Changed(FlagSeconds) {
		cfg.Analysis.DurationSeconds = o.DurationSeconds
	}
	if o.Changed(FlagWindow) {
		cfg.Analysis.WindowSize = o.WindowSize
	}
	if o.Changed(FlagTransform) {
		cfg.Analysis.Transform = o.Transform
	}
	if o.Changed(FlagResampler) {
		cfg.Analysis.Resampler = o.Resampler
	}
	if o.Changed(FlagWS) {
		cfg.Transport.WebSocketAddr = o.WebSocketAddr
		cfg.Transport.WebSocketEnabled = o.WebSocketAddr != ""
	}
	if o.Changed(FlagUDP) {
		cfg.Transport.UDPTargetAddress = o.UDPTargetAddress
		cfg.Transport.UDPEnabled = o.UDPTargetAddress != ""
	}
	if o.Changed(FlagVerbose) && o.Verbose {
		cfg.Debug = true
		cfg.Transport.LogColumns = true
	}
	return cfg.Validate()
}
