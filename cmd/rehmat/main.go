package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
)

var (
	// Global flags
	verbose bool

	// Logger for one-shot commands; serve builds its own from config.
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rehmat",
	Short: "Rehmat Shipping user lookup and report generator",
	Long: `rehmat looks up users in the shipping directory by name or email and
renders the matches into a printable PDF report.

Run "rehmat serve" for the HTTP API or "rehmat search <term>" for a one-off lookup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logpkg.NewCLI(verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	searchCmd.Flags().StringVar(&endpoint, "endpoint", envOr("UPSTREAM_URL", domain.DefaultUpstreamURL),
		"User directory URL (or set UPSTREAM_URL env)")
	searchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 10*time.Second, "Directory fetch timeout")
	searchCmd.Flags().StringVar(&reportPath, "report", "", "Write the matches as a PDF report to this path")
	searchCmd.Flags().Lookup("report").NoOptDefVal = domain.ReportFileName

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(versionCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		os.Exit(1)
	}
}
