package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/database"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all local usage history",
	RunE:  clearHistory,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func clearHistory(cmd *cobra.Command, args []string) error {
	fmt.Print("This will delete all local usage history. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath := cfg.History.Path
	if dbPath == "" {
		dbPath, err = database.GetDefaultDBPath()
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
	}
	db, err := database.Connect(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.NewRepository(db).Clear(); err != nil {
		return err
	}

	fmt.Println("Local usage history cleared")
	return nil
}
