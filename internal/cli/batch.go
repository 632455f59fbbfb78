package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/taxon/internal/batch"
	"github.com/crimson-sun/taxon/internal/tabular"
)

func batchCmd(a *app) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "batch INPUT",
		Short: "Classify the description column of a CSV, XLSX or NDJSON file",
		Long: fmt.Sprintf(`Reads INPUT, classifies its %q column and writes the table with
%q and %q columns added. Without -o the result is written next to
INPUT as result_<name>.xlsx.`, batch.InputColumn, batch.Level1Column, batch.Level2Column),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if out == "" {
				out = filepath.Join(filepath.Dir(in), tabular.ResultName(in))
			}
			if _, err := tabular.Lookup(in); err != nil {
				return err
			}

			eng, set, err := a.loadEngine()
			if err != nil {
				return err
			}
			defer set.Close()

			runner := batch.New(eng, batch.WithWorkers(a.cfg.Batch.Workers), batch.WithLogger(a.logger))
			summary, err := runner.RunFile(cmd.Context(), in, out)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(struct {
				Output string `json:"output"`
				batch.Summary
			}{out, summary})
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "", "result file; format follows its extension")
	return c
}
