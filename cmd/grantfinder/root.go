// Package main provides the entry point for the grantfinder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for grantfinder.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantfinder",
		Short: "Find funding opportunities for nonprofit technology projects",
		Long: `grantfinder crawls foundation and government grant sites, scores pages
for relevance to nonprofit technology work, and reports the funding
opportunities it finds.

Seeds come from a built-in target list, Google Programmable Search, and
grant RSS feeds. Per-domain crawl policies, keywords, and notification
settings live in a .grantfinder YAML file (see "grantfinder init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFindCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
