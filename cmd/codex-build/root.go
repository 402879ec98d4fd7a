package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codex-storage/go-codex/build"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	Verbose    bool
	ConfigFile string
}

// NewRootCommand creates the codex-build root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "codex-build",
		Short: "Prepare the native codex library",
		Long: `codex-build resolves the pinned nim-codex source tree, builds the
native library for the selected linking mode and records a stamp so
repeated runs skip the build. Run it before go build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zap.InfoLevel
			if opts.Verbose {
				level = zap.DebugLevel
			}
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(level)
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			logger, err := cfg.Build()
			if err != nil {
				return err
			}
			build.SetLogger(logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "options file (default codexbuild.yaml if present)")

	cmd.AddCommand(NewEnsureCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))

	return cmd
}
