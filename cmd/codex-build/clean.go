package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codex-storage/go-codex/build"
)

// CleanOptions holds flags for the clean command.
type CleanOptions struct {
	*RootOptions
	SourceDir  string
	Submodules bool
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove built artifacts and their stamps",
		Long: `Remove the native artifacts, stamps and locks for both linking
modes. With --submodules the source tree's submodules are also
deregistered, which forces the next ensure to resync them. Use it
when the checkout drifted from the pin and ensure refuses to build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SourceDir, "source", "", "native source tree location (default "+build.DefaultSourceDir+")")
	cmd.Flags().BoolVar(&opts.Submodules, "submodules", false, "also deregister the source tree's submodules")

	return cmd
}

func runClean(cmd *cobra.Command, opts *CleanOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fileOpts, err := build.LoadOptions(opts.ConfigFile)
	if err != nil {
		return err
	}
	sourceDir := firstOf(opts.SourceDir, fileOpts.SourceDir, build.DefaultSourceDir)

	for _, mode := range []build.Mode{build.ModeDynamic, build.ModeStatic} {
		d := &build.Driver{SourceDir: sourceDir, Mode: mode}
		for _, path := range []string{
			d.ArtifactPath(),
			d.ArtifactPath() + ".stamp",
			d.ArtifactPath() + ".lock",
		} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", path, err)
			}
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Removed artifacts and stamps")

	if opts.Submodules {
		if _, err := os.Stat(sourceDir); err == nil {
			if err := build.NewGit(sourceDir).SubmoduleDeinit(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deregistered submodules")
		}
	}
	return nil
}
