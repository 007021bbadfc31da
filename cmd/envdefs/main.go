package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sameehj/envdefs/internal/loader"
	"github.com/sameehj/envdefs/pkg/config"
	"github.com/sameehj/envdefs/pkg/defs"
	"github.com/sameehj/envdefs/pkg/exec"
	"github.com/sameehj/envdefs/pkg/render"
	"github.com/sameehj/envdefs/pkg/runtime/logging"
	"github.com/sameehj/envdefs/pkg/version"
	"github.com/spf13/cobra"
)

// exitCodeError carries a child process exit status through cobra.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "envdefs",
		Short: "Inject .env entries into a build as preprocessor definitions",
		Long: `envdefs reads KEY=VALUE lines from a .env file and hands them to the build
as string-literal preprocessor definitions.

  envdefs flags                       # build_flags = !envdefs flags
  envdefs load -o include/env.h       # write a header before compiling
  envdefs run -- pio run              # extend PLATFORMIO_BUILD_FLAGS for one build`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./.envdefs.yaml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "definition file (default: .env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		loadCmd(opts),
		flagsCmd(opts),
		renderCmd(opts),
		runCmd(opts),
		versionCmd(),
	)
	return root
}

func loadCmd(opts *globalOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load definitions, print the summary and optionally write them to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			list, err := loadDefinitions(cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if output == "" {
				output = cfg.Output
			}
			if output == "" {
				return nil
			}
			if format == "" {
				format = cfg.Format
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			changed, err := writeRendered(output, f, list)
			if err != nil {
				return err
			}
			logger.Info("definitions_written", "path", output, "format", f, "changed", changed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+formatList())
	cmd.Flags().StringVarP(&output, "output", "o", "", "write rendered definitions to this file")
	return cmd
}

func flagsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Print definitions as -D compiler flags for build_flags = !envdefs flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			list, err := loadDefinitions(cfg, logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), render.FormatFlags, list)
		},
	}
}

func renderCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print definitions to stdout in the chosen format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Format
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			list, err := loadDefinitions(cfg, logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), f, list)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+formatList())
	return cmd
}

func runCmd(opts *globalOptions) *cobra.Command {
	var timeout string

	cmd := &cobra.Command{
		Use:   "run -- COMMAND [ARGS...]",
		Short: "Run a build command with the definitions appended to PLATFORMIO_BUILD_FLAGS",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			runner := &exec.Runner{
				Timeout: cfg.Run.Timeout,
				Stdout:  cmd.OutOrStdout(),
				Stderr:  cmd.ErrOrStderr(),
			}
			if timeout != "" {
				d, err := parseTimeout(timeout)
				if err != nil {
					return err
				}
				runner.Timeout = d
			}

			list, err := loadDefinitions(cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env := exec.BuildFlagsEnv(os.Environ(), render.Flags(list))
			logger.Debug("build_command_start", "command", args[0], "definitions", list.Names())
			code, err := runner.Run(ctx, args[0], args[1:], env)
			if err != nil {
				return err
			}
			logger.Info("build_command_exit", "command", args[0], "code", code)
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timeout, "timeout", "", "kill the build command after this duration (e.g. 10m)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// resolve layers CLI flags over the config file and ENVDEFS_* variables.
func (o *globalOptions) resolve(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, required := o.configPath, o.configPath != ""
	if path == "" {
		path = config.DefaultConfigPath()
		required = os.Getenv("ENVDEFS_CONFIG") != ""
	}

	cfg, err := config.LoadConfig(path, required)
	if err != nil {
		return nil, nil, err
	}
	if o.envFile != "" {
		cfg.EnvFile = o.envFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}

	logger, _ := logging.WithRunID(logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
	logger = logger.With("command", cmd.Name())
	return cfg, logger, nil
}

func loadDefinitions(cfg *config.Config, logger *slog.Logger, console io.Writer) (defs.List, error) {
	l := loader.New(
		loader.WithPath(cfg.EnvFile),
		loader.WithConsole(console),
		loader.WithLogger(logger),
	)

	var list defs.List
	if _, err := l.Load(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// writeRendered writes the rendered list to path, leaving the file untouched
// when its content is already current so build tools do not see a change.
func writeRendered(path string, f render.Format, list defs.List) (bool, error) {
	var buf bytes.Buffer
	if err := render.Write(&buf, f, list); err != nil {
		return false, err
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, buf.Bytes()) {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("prepare output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func formatList() string {
	return strings.Join(render.Formats(), ", ")
}

func parseTimeout(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", v, err)
	}
	return d, nil
}
