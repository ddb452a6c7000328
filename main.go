// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mirage/cmd"
	"mirage/internal/analysis"
	"mirage/internal/config"
	"mirage/internal/decoder"
	applog "mirage/internal/log"
	"mirage/internal/pipeline"
	"mirage/internal/report"
	"mirage/internal/transport"
	"mirage/internal/transport/udp"
	"mirage/pkg/build"
)

// main is the entry point for the spectrogram analyser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase:
//   - Initialize build information
//   - Parse command line arguments
//   - Load the file configuration and apply flag overrides
//   - Open the column transports and build the pipeline
//
// 2. Analysis Phase:
//   - Decode each file into the pipeline, one session at a time
//   - Publish columns to the transports as they are written
//   - Render a summary per file
//
// 3. Shutdown Phase:
//   - Handle termination signals between files
//   - Close the pipeline and transports
func main() {
	// ==================== STARTUP PHASE ====================

	// Development builds carry no ldflags; the defaults are good enough.
	if err := build.Initialize(); err != nil {
		applog.Debugf("build info: %v", err)
	}

	options, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatal(err)
	}
	if options == nil {
		return
	}

	if options.Command == config.CommandVersion {
		fmt.Println(build.GetBuildFlags())
		return
	}

	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		applog.Fatal(err)
	}
	if err := options.Apply(cfg); err != nil {
		applog.Fatal(err)
	}
	applog.SetLevel(cfg.Level())

	sink, onsets, err := openTransports(cfg)
	if err != nil {
		applog.Fatal(err)
	}

	var opts []pipeline.Option
	if sink != nil {
		opts = append(opts, pipeline.WithSink(sink))
	}
	p, err := pipeline.New(cfg.Pipeline(), opts...)
	if err != nil {
		applog.Fatal(err)
	}

	// ==================== ANALYSIS PHASE ====================

	// Setup signal handling; the file being analysed finishes first.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	failed := 0
	interrupted := false
	for _, path := range options.Files {
		select {
		case sig := <-done:
			applog.Warnf("received %v, skipping remaining files", sig)
			interrupted = true
		default:
		}
		if interrupted {
			break
		}

		summary := report.Summary{Path: path, Config: p.Config()}
		if onsets != nil {
			onsets.Reset()
		}
		src, err := decoder.Open(path, cfg.Decoder.ChunkFrames)
		if err == nil {
			summary.Result, err = p.Decode(src)
		}
		if err != nil {
			summary.Err = err
			failed++
		} else if onsets != nil {
			summary.Onsets = onsets.Onsets()
		}
		fmt.Print(report.Render(summary))
	}

	// ==================== SHUTDOWN PHASE ====================

	if err := p.Close(); err != nil {
		applog.Errorf("error closing pipeline: %v", err)
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			applog.Errorf("error closing transports: %v", err)
		}
	}

	if failed > 0 || interrupted {
		os.Exit(1)
	}
}

// openTransports builds the column sinks enabled in cfg. The returned
// transport is nil when none are enabled; the detector is nil when onset
// detection is disabled.
func openTransports(cfg *config.Config) (transport.Transport, *analysis.OnsetDetector, error) {
	var sinks transport.Multi
	var ws *transport.WebSocketTransport

	if cfg.Transport.LogColumns {
		sinks = append(sinks, transport.NewLoggingTransport())
	}

	if cfg.Transport.WebSocketEnabled {
		var err error
		ws, err = transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			return nil, nil, errors.Join(err, sinks.Close())
		}
		sinks = append(sinks, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, nil, errors.Join(err, sinks.Close())
		}
		pub, err := udp.NewPublisher(sender, cfg.Pipeline().BinCount())
		if err != nil {
			return nil, nil, errors.Join(err, sender.Close(), sinks.Close())
		}
		sinks = append(sinks, pub)
	}

	var onsets *analysis.OnsetDetector
	if cfg.Onsets.Enabled {
		// Onset events go to WebSocket clients alongside the columns.
		var next transport.Transport
		if ws != nil {
			next = ws
		}
		var err error
		onsets, err = analysis.NewOnsetDetector(cfg.Onsets.Threshold, cfg.Onsets.MinEnergyRatio, next)
		if err != nil {
			return nil, nil, errors.Join(err, sinks.Close())
		}
		sinks = append(sinks, onsets)
	}

	if len(sinks) == 0 {
		return nil, nil, nil
	}
	return sinks, onsets, nil
}
