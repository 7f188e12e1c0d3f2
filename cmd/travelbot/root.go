package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "travelbot",
	Short: "Travelbot is a conversational trip planner",
	Long: `Travelbot plans trips through a resumable conversation: it extracts the
trip request from free text, asks for missing details one question at a
time, searches flights, hotels, and attractions, and assembles an
itinerary. Every turn is checkpointed, so conversations survive process
restarts and continue exactly where they stopped.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "travelbot.yaml", "Path to the config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}
