package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-xlsform/pkg/external"
	"github.com/goliatone/go-xlsform/pkg/orchestrator"
	"github.com/goliatone/go-xlsform/pkg/report"
	"github.com/goliatone/go-xlsform/pkg/rules"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

const watchDebounce = 500 * time.Millisecond

type validateFlags struct {
	output    outputFlags
	skipODK   bool
	jarPath   string
	timeout   time.Duration
	chunkSize int
	watch     bool
}

func newValidateCmd(a *app) *cobra.Command {
	var flags validateFlags
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an XLSForm workbook",
		Long: `Runs every local rule against the workbook and, unless --skip-odk is set,
ODK Validate through pyxform's xls2xform. Exits 0 when the form is valid, 1
when it has errors and 2 when the workbook could not be read.

The file defaults to xlsform_file from xlsform.yaml (survey.xlsx).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args, flags)
		},
	}
	addOutputFlags(cmd, &flags.output)
	cmd.Flags().BoolVar(&flags.skipODK, "skip-odk", false, "Skip ODK Validate")
	cmd.Flags().StringVar(&flags.jarPath, "jar-path", "", "Path to ODK_Validate.jar")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "ODK Validate timeout (default from config, 180s)")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "Validate forms larger than N survey rows in concurrent chunks")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Re-validate whenever the workbook is saved")
	return cmd
}

func addOutputFlags(cmd *cobra.Command, out *outputFlags) {
	cmd.Flags().BoolVar(&out.json, "json", false, "Write the report as JSON")
	cmd.Flags().BoolVar(&out.yaml, "yaml", false, "Write the report as YAML")
	cmd.Flags().StringVar(&out.format, "format", "", "Report format: text, json, yaml or structured")
	cmd.Flags().BoolVar(&out.noColor, "no-color", false, "Disable coloured severity badges")
}

func (a *app) engine() *rules.Engine {
	opts := []rules.Option{
		rules.WithLogger(a.logger),
		rules.WithDisabled(a.cfg.Rules.Disabled...),
	}
	if a.cfg.Rules.BlankRunThreshold > 0 {
		opts = append(opts, rules.WithBlankRunThreshold(a.cfg.Rules.BlankRunThreshold))
	}
	return rules.NewEngine(opts...)
}

func (a *app) orchestrator(flags validateFlags) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithEngine(a.engine()),
		orchestrator.WithChunkSize(flags.chunkSize),
	}
	if a.cfg.ODK.Enabled && !flags.skipODK {
		jar := flags.jarPath
		if jar == "" {
			jar = a.cfg.ODK.JarPath
		}
		timeout := flags.timeout
		if timeout <= 0 {
			timeout = a.cfg.GetODKTimeout()
		}
		opts = append(opts, orchestrator.WithExternal(external.New(
			external.WithJarPath(jar),
			external.WithProjectDir(a.projectDir),
			external.WithTimeout(timeout),
			external.WithLogger(a.logger),
		)))
	}
	return orchestrator.New(opts...)
}

func (a *app) runValidate(cmd *cobra.Command, args []string, flags validateFlags) error {
	format, err := flags.output.resolve(a.cfg)
	if err != nil {
		return err
	}
	file := a.resolveFile(args)
	o := a.orchestrator(flags)
	color := a.cfg.Output.Color && !flags.output.noColor

	once := func(ctx context.Context, w io.Writer) (*report.Report, error) {
		rep, err := o.Validate(ctx, orchestrator.Request{Source: workbook.SourceFromFile(file)})
		if err != nil {
			return nil, err
		}
		if err := a.writeReport(w, rep, format, color); err != nil {
			return nil, err
		}
		return rep, nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !flags.watch {
		rep, err := once(ctx, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return exitFor(rep)
	}
	return a.watch(ctx, file, func() error {
		_, err := once(ctx, cmd.OutOrStdout())
		return err
	})
}

// watch runs fn once and again after every settled write to file, until ctx
// is cancelled. Spreadsheet editors often save by renaming a temporary file,
// so the parent directory is watched.
func (a *app) watch(ctx context.Context, file string, fn func() error) error {
	target, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", file, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch: %s: %w", filepath.Dir(target), err)
	}

	if err := fn(); err != nil {
		return err
	}
	a.logger.Info("watching for changes", zap.String("file", target))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			a.logger.Debug("workbook changed", zap.String("file", target))
			if err := fn(); err != nil {
				return err
			}
		}
	}
}
