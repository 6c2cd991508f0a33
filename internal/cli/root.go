package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	host    string
	port    int
	jsonOut bool

	// Version info (set from main)
	Version = "0.1.0"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timethread",
	Short: "Per-process foreground usage tracking",
	Long: `Timethread tracks how long foreground applications run on this machine,
classifies them into categories (Coding, Entertainment, Work, ...) and keeps
per-day usage history plus a daily system on-time ledger. The daemon exposes
an HTTP API that the client subcommands talk to.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&host, "host", "127.0.0.1", "server host")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 8273, "server port")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// GetServerURL returns the server URL based on flags
func GetServerURL() string {
	return fmt.Sprintf("http://%s:%d", host, port)
}
