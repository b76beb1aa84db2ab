package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search chat messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			hits, err := a.index.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("no results")
				return nil
			}

			for _, h := range hits {
				fmt.Printf("%2d. [%s] %s: %s\n", h.Rank, h.Date, h.Role, h.Snippet)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "k", 10, "maximum results")
	return cmd
}
