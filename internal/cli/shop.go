package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Armoury catalog, inventory and ledger commands",
	}

	cmd.AddCommand(newShopItemsCmd())
	cmd.AddCommand(newShopInventoryCmd())
	cmd.AddCommand(newShopTransactionsCmd())

	return cmd
}

func newShopItemsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List armoury items",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/shop/items"
			if category != "" {
				path += "?category=" + url.QueryEscape(category)
			}

			var result []ShopItem
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(ShopItemList(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")

	return cmd
}

func newShopInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <player>",
		Short: "Show a player's inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []InventoryEntry
			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0])+"/inventory", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(InventoryList(result))
			return nil
		},
	}
}

func newShopTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <player>",
		Short: "Show a player's purchase ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Transaction
			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0])+"/transactions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(TransactionList(result))
			return nil
		},
	}
}
