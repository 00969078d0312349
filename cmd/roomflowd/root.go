package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomflowd",
	Short: "roomflowd runs the booking lifecycle state machine",
	Long:  `roomflowd coordinates room-reservation lifecycles: auto-approval, ancillary-service sub-workflows, snapshot persistence, and the transition API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the roomflowd config file")
}
