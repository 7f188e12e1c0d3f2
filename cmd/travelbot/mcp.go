package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mansiraturi/travelbot/pkg/travelbot/mcptools"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the search tools as an MCP server",
	Long: `Starts a Model Context Protocol (MCP) server exposing the flight, hotel,
and attraction searches as tools, so AI agents can call them directly.

Uses stdio transport; all logging goes to stderr to keep the JSON-RPC
stream on stdout clean.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cmd, cfg)
		slog.SetDefault(logger)

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)

		flights, hotels, attractions := newSearchClients(cfg)
		srv := mcptools.NewServer(flights, hotels, attractions, mcptools.WithLogger(logger))

		slog.Info("starting mcp server on stdio")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("mcp server failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
