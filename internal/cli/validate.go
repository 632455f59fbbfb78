package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every artifact in the manifest and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, set, err := a.loadEngine()
			if err != nil {
				return err
			}
			defer set.Close()

			cats := eng.Taxonomy()
			branches := 0
			for _, c := range cats {
				if len(c.Subcategories) > 0 {
					branches++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d level-1 classes, %d level-2 branches, %d features\n",
				len(cats), branches, set.Context.Vectorizer.Dim())
			return nil
		},
	}
}
