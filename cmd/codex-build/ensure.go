package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codex-storage/go-codex/build"
)

// EnsureOptions holds flags for the ensure command.
type EnsureOptions struct {
	*RootOptions
	Static    bool
	Dynamic   bool
	SourceDir string
	Make      string
	LibParams string
}

// NewEnsureCommand creates the ensure command.
func NewEnsureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnsureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Resolve the source tree and build the native library if needed",
		Long: `Clone the pinned nim-codex revision when absent, refuse a checkout
that drifted from the pin, and build the native library for the
selected linking mode. An artifact whose stamp matches the pin and
mode is left untouched.

Example:
  codex-build ensure
  codex-build ensure --static
  codex-build ensure --source vendor/nim-codex --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsure(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Static, "static", false, "build and stamp the static archive (libcodex.a)")
	cmd.Flags().BoolVar(&opts.Dynamic, "dynamic", false, "build and stamp the shared library (libcodex.so, the default)")
	cmd.Flags().StringVar(&opts.SourceDir, "source", "", "native source tree location (default "+build.DefaultSourceDir+")")
	cmd.Flags().StringVar(&opts.Make, "make", "", "make binary to drive the native build")
	cmd.Flags().StringVar(&opts.LibParams, "lib-params", "", "extra native compiler parameters (CODEX_LIB_PARAMS)")

	return cmd
}

func runEnsure(cmd *cobra.Command, opts *EnsureOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fileOpts, err := build.LoadOptions(opts.ConfigFile)
	if err != nil {
		return err
	}

	mode, err := resolveMode(opts, fileOpts)
	if err != nil {
		return err
	}

	sourceDir := firstOf(opts.SourceDir, fileOpts.SourceDir, build.DefaultSourceDir)

	resolver := build.NewResolver(sourceDir)
	if err := resolver.Ensure(ctx); err != nil {
		return err
	}

	driver := &build.Driver{
		SourceDir: sourceDir,
		Mode:      mode,
		Revision:  resolver.Revision,
		MakeProg:  firstOf(opts.Make, fileOpts.Make),
		LibParams: firstOf(opts.LibParams, fileOpts.LibParams),
	}
	art, err := driver.Ensure(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Artifact: %s\n", art.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "Mode:     %s\n", art.Mode)
	fmt.Fprintf(cmd.OutOrStdout(), "Revision: %s\n", art.Revision)
	if tag := mode.BuildTag(); tag != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nBuild with: go build -tags %s\n", tag)
	}
	return nil
}

// resolveMode folds the flags and the options file into one mode.
// Flags win; the file only applies when neither flag is set.
func resolveMode(opts *EnsureOptions, fileOpts build.Options) (build.Mode, error) {
	if !opts.Static && !opts.Dynamic && fileOpts.Mode != "" {
		return build.ParseMode(fileOpts.Mode)
	}
	return build.ResolveMode(opts.Static, opts.Dynamic)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
