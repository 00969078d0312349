package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one declined-timeout sweep and exit",
	Long:  `Fires the decline timeout for every booking that has sat in Declined past the 24-hour window. Intended for cron when the serve-mode sweeper is not running.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		app, err := buildApp(configPath)
		if err != nil {
			fmt.Printf("Error initializing roomflowd: %v\n", err)
			os.Exit(1)
		}

		moved, err := app.exec.SweepDeclined(context.Background())
		if err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sweep complete: %d booking(s) moved\n", moved)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
