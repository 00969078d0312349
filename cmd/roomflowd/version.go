package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the roomflowd release version, overridable at build time.
var Version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of roomflowd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roomflowd version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
