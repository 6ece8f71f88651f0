package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player sheet management commands",
	}

	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerDeleteCmd())
	cmd.AddCommand(newPlayerLoginCmd())

	return cmd
}

// loadSheet reads a raw sheet from a JSON file, or returns an empty one
func loadSheet(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file: %w", err)
	}
	var sheet map[string]any
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse sheet file: %w", err)
	}
	return sheet, nil
}

func newPlayerCreateCmd() *cobra.Command {
	var name, pass, sheetFile string
	var rp int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player from a sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := loadSheet(sheetFile)
			if err != nil {
				return err
			}
			if name != "" {
				sheet["name"] = name
			}
			if pass != "" {
				sheet["pw"] = pass
			}
			if cmd.Flags().Changed("rp") {
				sheet["requisitionPoints"] = rp
			}

			var result PlayerResult
			if err := client.Post("/api/v1/players", sheet, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (overrides sheet file)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password for the new player")
	cmd.Flags().StringVar(&sheetFile, "sheet", "", "Path to a JSON sheet file")
	cmd.Flags().IntVar(&rp, "rp", 0, "Starting requisition points")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Player
			if err := client.Get("/api/v1/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(PlayerList(result))
			return nil
		},
	}
}

func newPlayerUpdateCmd() *cobra.Command {
	var sheetFile string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Merge a partial sheet over a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sheetFile == "" {
				return fmt.Errorf("--sheet is required")
			}
			sheet, err := loadSheet(sheetFile)
			if err != nil {
				return err
			}

			var result PlayerResult
			if err := client.Patch("/api/v1/players/"+url.PathEscape(args[0]), sheet, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetFile, "sheet", "", "Path to a partial JSON sheet file (required)")
	_ = cmd.MarkFlagRequired("sheet")

	return cmd
}

func newPlayerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a player record (requires login as that player)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/players/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Player deleted")
			return nil
		},
	}
}

func newPlayerLoginCmd() *cobra.Command {
	var name, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login as a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name, "pw": pass}
			var result AuthResult

			if err := client.Post("/api/v1/players/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}
