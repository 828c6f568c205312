package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ricesearch/gloo/internal/config"
	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
	"github.com/ricesearch/gloo/internal/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(apperrors.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gloo",
		Short: "gloo - pooling, depth-k qrels and group leave-one-out analysis",
		Long: `gloo builds judged pools from ranked retrieval runs, derives depth-k
qrels from an annotated pool, and measures how each group's ranking moves
when its runs are scored without their own pool contribution.

  gloo pool  > annots          # annotated pool from the contributing runs
  gloo qrels -k 10 annots      # depth-10 qrels
  gloo loo --run-groups pids   # official vs leave-one-out rankings`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("format", "text", "report format (text, json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	rootCmd.AddCommand(
		poolCmd(),
		qrelsCmd(),
		looCmd(),
		versionCmd(),
	)

	return rootCmd
}

// setup loads configuration, applies global flags and returns the logger.
// apply runs the subcommand's flag overrides before validation.
func setup(cmd *cobra.Command, apply func(*config.Config)) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "loading configuration", err)
	}

	overrideString(cmd, "log-level", &cfg.Log.Level)
	overrideString(cmd, "log-format", &cfg.Log.Format)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if apply != nil {
		apply(cfg)
	}

	if err := cfg.Validate(config.Section(cmd.Name())); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid configuration", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Debug("configuration loaded", "command", cmd.Name(), "config", path)
	return cfg, log, nil
}

// writeOutput runs write against stdout, or against path when set. A file
// is written beside path and renamed into place, so a failed write leaves
// any existing path untouched.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return apperrors.InternalError(fmt.Sprintf("creating %s", path), err)
	}
	tmp := f.Name()

	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.InternalError(fmt.Sprintf("creating %s", path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperrors.InternalError(fmt.Sprintf("writing %s", path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperrors.InternalError(fmt.Sprintf("writing %s", path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.InternalError(fmt.Sprintf("replacing %s", path), err)
	}
	return nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

func overrideStrings(cmd *cobra.Command, name string, dst *[]string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetStringSlice(name)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gloo %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
