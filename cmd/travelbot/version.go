package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mansiraturi/travelbot/pkg/travelbot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of travelbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("travelbot version %s\n", strings.TrimSpace(travelbot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
