package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-xlsform/pkg/workbook"
)

func newMergeCmd(a *app) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "merge <file> <file>...",
		Short: "Validate several workbooks as chunks of one form",
		Long: `Validates each workbook as a chunk and runs the rules that span chunks,
such as duplicate names and undefined choice lists, once over the merged form.
The external validator does not run on merged forms.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.resolve(a.cfg)
			if err != nil {
				return err
			}
			sources := make([]workbook.Source, 0, len(args))
			for _, arg := range args {
				sources = append(sources, workbook.SourceFromFile(arg))
			}
			o := a.orchestrator(validateFlags{skipODK: true})
			rep, err := o.Merge(cmd.Context(), sources...)
			if err != nil {
				return err
			}
			if err := a.writeReport(cmd.OutOrStdout(), rep, format, a.cfg.Output.Color && !out.noColor); err != nil {
				return err
			}
			return exitFor(rep)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}
