package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var ontimeDays int

var uptimeCmd = &cobra.Command{
	Use:   "uptime",
	Short: "Show current system uptime",
	RunE:  runUptime,
}

var ontimeCmd = &cobra.Command{
	Use:   "ontime",
	Short: "Show daily system on-time",
	Long:  `Show how many hours the machine was powered on per day.`,
	RunE:  runOnTime,
}

func init() {
	ontimeCmd.Flags().IntVar(&ontimeDays, "days", 7, "number of days to include")
	rootCmd.AddCommand(uptimeCmd)
	rootCmd.AddCommand(ontimeCmd)
}

type uptimeResponse struct {
	LastBootTime  *time.Time `json:"last_boot_time"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

func runUptime(cmd *cobra.Command, args []string) error {
	client := NewClient()

	if jsonOut {
		data, status, err := client.Get("/uptime")
		if err != nil {
			return fmt.Errorf("failed to get uptime: %w", err)
		}
		if status != 200 {
			return fmt.Errorf("server returned status %d: %s", status, string(data))
		}
		fmt.Println(string(data))
		return nil
	}

	var resp uptimeResponse
	if err := client.GetJSON("/uptime", &resp); err != nil {
		return fmt.Errorf("failed to get uptime: %w", err)
	}

	if resp.LastBootTime == nil {
		fmt.Println(mutedStyle.Render("boot time unknown"))
		return nil
	}

	fmt.Printf("%s %s\n",
		mutedStyle.Render("booted:"),
		cellStyle.Render(resp.LastBootTime.Local().Format(time.RFC1123)),
	)
	fmt.Printf("%s %s\n",
		mutedStyle.Render("uptime:"),
		cellStyle.Render(formatDuration(time.Duration(resp.UptimeSeconds)*time.Second)),
	)
	return nil
}

func runOnTime(cmd *cobra.Command, args []string) error {
	client := NewClient()

	path := fmt.Sprintf("/ontime?days=%d", ontimeDays)

	if jsonOut {
		data, status, err := client.Get(path)
		if err != nil {
			return fmt.Errorf("failed to get on-time: %w", err)
		}
		if status != 200 {
			return fmt.Errorf("server returned status %d: %s", status, string(data))
		}
		fmt.Println(string(data))
		return nil
	}

	var resp seriesResponse
	if err := client.GetJSON(path, &resp); err != nil {
		return fmt.Errorf("failed to get on-time: %w", err)
	}

	fmt.Println(titleStyle.Render("Daily on-time"))
	printSeries(resp.Points, "h")
	return nil
}
