package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <reservation-id> <legacy-status>",
	Short: "Synthesize a machine snapshot for a pre-machine booking",
	Long:  `Maps a legacy flat status (REQUESTED, APPROVED, ...) to an initial machine state and persists the snapshot. Migrated bookings are never auto-approvable.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		tenant, _ := cmd.Flags().GetString("tenant")

		app, err := buildApp(configPath)
		if err != nil {
			fmt.Printf("Error initializing roomflowd: %v\n", err)
			os.Exit(1)
		}

		result, err := app.exec.Migrate(context.Background(), tenant, args[0], args[1])
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Migrated %s to state %s\n", args[0], result.NewState)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("tenant", "", "Tenant identifier for the booking")
}
