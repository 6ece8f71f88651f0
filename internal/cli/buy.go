package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newBuyCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "buy <player> <item>",
		Short: "Spend requisition points on an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"item":     args[1],
				"quantity": quantity,
			}

			var result Transaction
			path := "/api/v1/players/" + url.PathEscape(args[0]) + "/purchase"
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "Number of units to buy")

	return cmd
}
