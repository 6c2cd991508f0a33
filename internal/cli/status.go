package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked foreground processes",
	Long:  `Query the running daemon for the currently tracked processes and their usage today.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// Styles
var (
	colorPrimary = lipgloss.Color("86")  // Cyan
	colorMuted   = lipgloss.Color("245") // Light gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

type processRow struct {
	PID              int32   `json:"pid"`
	DisplayName      string  `json:"display_name"`
	Executable       string  `json:"executable"`
	Category         string  `json:"category"`
	TimeTodaySeconds float64 `json:"time_today_seconds"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/processes")
	if err != nil {
		return fmt.Errorf("failed to get processes: %w", err)
	}
	if status != 200 {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var rows []processRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Tracked processes"))

	if len(rows) == 0 {
		fmt.Println(mutedStyle.Render("  nothing tracked yet"))
		return nil
	}

	// Longest usage first
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TimeTodaySeconds > rows[j].TimeTodaySeconds
	})

	fmt.Printf("%s %s %s %s\n",
		headerStyle.Render(fmt.Sprintf("%-8s", "PID")),
		headerStyle.Render(fmt.Sprintf("%-30s", "NAME")),
		headerStyle.Render(fmt.Sprintf("%-15s", "CATEGORY")),
		headerStyle.Render("TODAY"),
	)

	for _, r := range rows {
		name := truncateName(r.DisplayName, 30)
		fmt.Printf("%s %s %s %s\n",
			cellStyle.Render(fmt.Sprintf("%-8d", r.PID)),
			cellStyle.Render(fmt.Sprintf("%-30s", name)),
			cellStyle.Render(fmt.Sprintf("%-15s", r.Category)),
			cellStyle.Render(formatDuration(time.Duration(r.TimeTodaySeconds)*time.Second)),
		)
	}

	return nil
}

// truncateName shortens a display name to max characters. Counting runes,
// not bytes, so multibyte titles are never cut mid-character.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
