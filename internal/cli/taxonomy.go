package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func taxonomyCmd(a *app) *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "taxonomy",
		Short: "List level-1 labels and their level-2 vocabularies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, set, err := a.loadEngine()
			if err != nil {
				return err
			}
			defer set.Close()

			w := cmd.OutOrStdout()
			cats := eng.Taxonomy()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(cats)
			}
			for _, c := range cats {
				if len(c.Subcategories) == 0 {
					fmt.Fprintf(w, "%s\n", c.Name)
					continue
				}
				fmt.Fprintf(w, "%s: %s\n", c.Name, strings.Join(c.Subcategories, ", "))
			}
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return c
}
