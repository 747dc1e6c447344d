// Command xlsform validates XLSForm workbooks and maintains their settings
// sheet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-xlsform/internal/config"
)

// Exit codes returned by validate and merge.
const (
	exitValid   = 0
	exitInvalid = 1
	exitFatal   = 2
)

// exitCodeError carries a process exit code without an error message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the state shared by every command of one invocation.
type app struct {
	verbose    bool
	projectDir string
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "xlsform",
		Short: "Validate XLSForm workbooks before publishing them",
		Long: `xlsform checks XLSForm survey workbooks for problems that break form
conversion or confuse enumerators: duplicate names, undefined choice lists,
broken group nesting, unresolved ${references}, circular calculations and
missing settings. It can also run ODK Validate when the jar and pyxform are
installed, and maintain the settings sheet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&a.projectDir, "project-dir", "C", "", "Project directory (default: current)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to "+config.FileName+" (default: <project-dir>/"+config.FileName+")")

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newSettingsCmd(a))
	return root
}

// init loads configuration and builds the logger.
func (a *app) init() error {
	if a.projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		a.projectDir = wd
	}
	path := a.configPath
	if path == "" {
		path = config.Path(a.projectDir)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// resolveFile returns the workbook named by args, or the configured default
// resolved against the project directory.
func (a *app) resolveFile(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	file := a.cfg.XLSFormFile
	if filepath.IsAbs(file) || a.projectDir == "" {
		return file
	}
	return filepath.Join(a.projectDir, file)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitValid
	}
	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitFatal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
