package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	usageDays     int
	usageCategory string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show total daily usage across all processes",
	Long: `Show total active hours per day, either across every tracked process or
restricted to one category via --category.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "number of days to include")
	usageCmd.Flags().StringVar(&usageCategory, "category", "", "restrict to one category")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	client := NewClient()

	path := fmt.Sprintf("/usage?days=%d", usageDays)
	title := "Total usage"
	if usageCategory != "" {
		path = fmt.Sprintf("/categories/time?category=%s&days=%d", usageCategory, usageDays)
		title = fmt.Sprintf("Usage: %s", usageCategory)
	}

	if jsonOut {
		data, status, err := client.Get(path)
		if err != nil {
			return fmt.Errorf("failed to get usage: %w", err)
		}
		if status != 200 {
			return fmt.Errorf("server returned status %d: %s", status, string(data))
		}
		fmt.Println(string(data))
		return nil
	}

	var resp seriesResponse
	if err := client.GetJSON(path, &resp); err != nil {
		return fmt.Errorf("failed to get usage: %w", err)
	}

	fmt.Println(titleStyle.Render(title))
	printSeries(resp.Points, "h")
	return nil
}
