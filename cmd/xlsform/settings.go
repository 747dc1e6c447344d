package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-xlsform/pkg/orchestrator"
	"github.com/goliatone/go-xlsform/pkg/settings"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or update the settings sheet (form_title, form_id, version)",
	}
	cmd.AddCommand(newSettingsStatusCmd(a))
	cmd.AddCommand(newSettingsSetCmd(a))
	return cmd
}

func newSettingsStatusCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status [file]",
		Short: "Report missing settings and suggest values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.settingsStatus(cmd, args)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			return st.Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the status as JSON")
	return cmd
}

func (a *app) settingsStatus(cmd *cobra.Command, args []string) (settings.StatusReport, error) {
	file := a.resolveFile(args)
	f, err := orchestrator.New(orchestrator.WithLogger(a.logger)).Load(cmd.Context(), workbook.SourceFromFile(file))
	if err != nil {
		return settings.StatusReport{}, err
	}
	return settings.Status(f, file, workbook.Stem(workbook.SourceFromFile(file))), nil
}

type setFlags struct {
	values        settings.Values
	ensureFormula bool
	interactive   bool
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var flags setFlags
	cmd := &cobra.Command{
		Use:   "set [file]",
		Short: "Write form_title, form_id and version into the settings sheet",
		Long: `Creates the settings sheet and any missing columns, then writes the given
values into row 2. When --version is omitted the version cell is set to
` + settings.VersionFormula + ` so every save produces a new version.

With --interactive, missing values are asked for on the terminal with
suggestions derived from the file name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSettingsSet(cmd, args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.values.Title, "title", "", "Form title (settings.form_title)")
	cmd.Flags().StringVar(&flags.values.ID, "id", "", "Form id (settings.form_id)")
	cmd.Flags().StringVar(&flags.values.Version, "version", "", "Version (settings.version); defaults to the version formula")
	cmd.Flags().BoolVar(&flags.ensureFormula, "ensure-version-formula", false, "Enforce the version formula even when title and id are unchanged")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Prompt for values")
	return cmd
}

func (a *app) runSettingsSet(cmd *cobra.Command, args []string, flags setFlags) error {
	file := a.resolveFile(args)
	values := flags.values
	ensure := flags.ensureFormula

	if flags.interactive {
		st, err := a.settingsStatus(cmd, args)
		if err != nil {
			return err
		}
		asked, write, err := settings.NewPrompter(nil).Ask(cmd.Context(), st)
		if err != nil {
			return err
		}
		if !write {
			fmt.Fprintln(cmd.OutOrStdout(), "Settings left unchanged.")
			return nil
		}
		values = merge(values, asked)
		ensure = true
	}

	if err := settings.Update(cmd.Context(), file, values, ensure); err != nil {
		if errors.Is(err, settings.ErrNothingToUpdate) {
			return fmt.Errorf("provide --title and/or --id and/or --version (or --ensure-version-formula)")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[OK] Updated settings in %s\n", filepath.Base(file))
	return nil
}

// merge prefers explicit flag values over prompted ones.
func merge(flags, asked settings.Values) settings.Values {
	if flags.Title == "" {
		flags.Title = asked.Title
	}
	if flags.ID == "" {
		flags.ID = asked.ID
	}
	if flags.Version == "" {
		flags.Version = asked.Version
	}
	return flags
}
