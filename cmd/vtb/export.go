package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/porter"
)

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full graph as JSONL (stdout unless -o)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp := porter.NewExporter(app.Tasks, app.Rels)

			if output == "" || output == "-" {
				_, err := exp.Export(cmd.Context(), os.Stdout)
				return err
			}

			stats, err := exp.ExportFile(cmd.Context(), output)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s exported %d task(s), %d child_of, %d depends_on to %s\n",
				color.GreenString("✓"), stats.Tasks, stats.ChildOf, stats.DependsOn, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var (
		input        string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a JSONL dump (stdin unless -i)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imp := porter.NewImporter(app.Tasks, app.Rels)
			opts := porter.Options{SkipExisting: skipExisting}

			var (
				result *porter.Result
				err    error
			)
			if input == "" || input == "-" {
				result, err = imp.Import(cmd.Context(), os.Stdin, "stdin", opts)
			} else {
				result, err = imp.ImportFile(cmd.Context(), input, opts)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s imported: %d created, %d replaced, %d skipped, %d child_of, %d depends_on\n",
				color.GreenString("✓"), result.TasksCreated, result.TasksReplaced,
				result.TasksSkipped, result.ChildOfEdges, result.DependsEdges)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input file (default stdin)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "leave live tasks untouched")
	return cmd
}
