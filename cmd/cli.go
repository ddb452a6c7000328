// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"mirage/internal/config"
	"mirage/internal/resample"
	"mirage/internal/spectral"
	"mirage/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ParseArgs parses args (without the program name) into Options. A nil
// Options with a nil error means cobra already handled the request, e.g.
// --help.
func ParseArgs(args []string) (*config.Options, error) {
	buildInfo := build.GetBuildFlags()
	options := config.NewOptions()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Analyze command
	analyzeCmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Compute the power spectrogram of one or more WAV or MP3 files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = config.CommandAnalyze
			options.Files = args
			cmd.Flags().Visit(func(f *pflag.Flag) {
				options.MarkChanged(f.Name)
			})
			return nil
		},
	}

	flags := analyzeCmd.Flags()
	flags.StringVar(&options.ConfigPath, config.FlagConfig, "",
		"Path to a YAML config file (default: search config.yaml, mirage.yaml)")
	flags.Float64VarP(&options.TargetRate, config.FlagRate, "r", options.TargetRate,
		"Analysis sample rate, measured in Hertz (Hz)")
	flags.Float64VarP(&options.DurationSeconds, config.FlagSeconds, "s", options.DurationSeconds,
		"Seconds of audio analysed per file")
	flags.IntVarP(&options.WindowSize, config.FlagWindow, "w", options.WindowSize,
		"Samples per analysis window and hop")
	flags.StringVar(&options.Transform, config.FlagTransform, options.Transform,
		fmt.Sprintf("Spectral transform backend %v", spectral.Backends))
	flags.StringVar(&options.Resampler, config.FlagResampler, options.Resampler,
		fmt.Sprintf("Resampler backend %v", resample.Backends))
	flags.StringVar(&options.WebSocketAddr, config.FlagWS, "",
		"Broadcast columns as JSON on ws://<addr>/ws, e.g. :8080")
	flags.StringVar(&options.UDPTargetAddress, config.FlagUDP, "",
		"Send columns as UDP packets to host:port")
	flags.BoolVarP(&options.Verbose, config.FlagVerbose, "v", false,
		"Show verbose output")
	rootCmd.AddCommand(analyzeCmd)

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = config.CommandVersion
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if options.Command == "" {
		return nil, nil
	}

	return options, nil
}
