package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig     bool
	flagDebug            bool
	flagBaseURL          string
	flagExplainURL       string
	flagTimeout          int
	flagUserAgent        string
	flagCloudflareBypass bool
)

var rootCmd = &cobra.Command{
	Use:           "xkcd",
	Short:         "Fetch xkcd comics, their explanations and images",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")

	// transport
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "comic site (default http://xkcd.com)")
	rootCmd.PersistentFlags().StringVar(&flagExplainURL, "explain-url", "", "explain wiki base URL")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "HTTP timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	rootCmd.PersistentFlags().BoolVar(&flagCloudflareBypass, "cloudflare-bypass", false, "wrap the transport with the Cloudflare bypass")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
