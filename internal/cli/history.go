package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history <process>",
	Short: "Show daily usage history for a process",
	Long:  `Show per-day active hours for a process over a trailing window of days.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "number of days to include")
	rootCmd.AddCommand(historyCmd)
}

type seriesResponse struct {
	Points []seriesPoint `json:"points"`
}

type seriesPoint struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	client := NewClient()

	path := fmt.Sprintf("/history?process=%s&days=%d", url.QueryEscape(args[0]), historyDays)

	if jsonOut {
		data, status, err := client.Get(path)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		if status != 200 {
			return fmt.Errorf("server returned status %d: %s", status, string(data))
		}
		fmt.Println(string(data))
		return nil
	}

	var resp seriesResponse
	if err := client.GetJSON(path, &resp); err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Usage history: %s", args[0])))
	printSeries(resp.Points, "h")
	return nil
}

// printSeries renders a date/value series with a crude horizontal bar chart.
func printSeries(points []seriesPoint, unit string) {
	max := 0.0
	for _, p := range points {
		if p.Hours > max {
			max = p.Hours
		}
	}

	for _, p := range points {
		bar := ""
		if max > 0 {
			n := int(p.Hours / max * 30)
			for i := 0; i < n; i++ {
				bar += "█"
			}
		}
		fmt.Printf("%s %s %s\n",
			mutedStyle.Render(p.Date.Format("2006-01-02")),
			cellStyle.Render(fmt.Sprintf("%6.2f%s", p.Hours, unit)),
			headerStyle.Render(bar),
		)
	}
}
