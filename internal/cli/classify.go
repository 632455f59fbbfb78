package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/taxon/internal/batch"
	"github.com/crimson-sun/taxon/internal/output"
	"github.com/crimson-sun/taxon/internal/output/file"
	"github.com/crimson-sun/taxon/internal/output/multi"
	"github.com/crimson-sun/taxon/internal/output/stdout"
)

func classifyCmd(a *app) *cobra.Command {
	var (
		verbosity string
		pretty    bool
		tee       string
	)

	c := &cobra.Command{
		Use:   "classify [TEXT...]",
		Short: "Classify texts given as arguments, or one per line on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := classifyInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			eng, set, err := a.loadEngine()
			if err != nil {
				return err
			}
			defer set.Close()

			v := output.ParseVerbosity(a.cfg.Output.Verbosity)
			if cmd.Flags().Changed("verbosity") {
				v = output.ParseVerbosity(verbosity)
			}
			if !cmd.Flags().Changed("pretty") {
				pretty = a.cfg.Output.Pretty
			}

			var out output.Output = stdout.NewWriter(cmd.OutOrStdout(), v, pretty)
			if tee != "" {
				f, err := file.New(tee, v)
				if err != nil {
					return err
				}
				out = multi.New(out, f)
			}

			runner := batch.New(eng, batch.WithWorkers(a.cfg.Batch.Workers), batch.WithLogger(a.logger))
			emitErr := runner.Emit(cmd.Context(), values, out)
			if err := out.Close(); err != nil && emitErr == nil {
				emitErr = err
			}
			return emitErr
		},
	}

	c.Flags().StringVar(&verbosity, "verbosity", "", "minimal, standard or full (default $TAXON_VERBOSITY or standard)")
	c.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	c.Flags().StringVar(&tee, "tee", "", "also append NDJSON records to this file")
	return c
}

// classifyInputs returns args, or the lines of in when there are none.
func classifyInputs(in io.Reader, args []string) ([]any, error) {
	if len(args) > 0 {
		values := make([]any, len(args))
		for i, a := range args {
			values[i] = a
		}
		return values, nil
	}

	var values []any
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		values = append(values, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return values, nil
}
