package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage process categories",
}

var categorySetCmd = &cobra.Command{
	Use:   "set <pattern> <category>",
	Short: "Assign a category to processes matching a name pattern",
	Long: `Assign a category to every current and future process whose name contains
the given pattern. The match is a case-insensitive substring match.`,
	Args: cobra.ExactArgs(2),
	RunE: runCategorySet,
}

func init() {
	categoryCmd.AddCommand(categorySetCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategorySet(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Post("/categories", map[string]string{
		"pattern":  args[0],
		"category": args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to set category: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	fmt.Printf("processes matching %q now categorized as %q\n", args[0], args[1])
	return nil
}
