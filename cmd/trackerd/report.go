package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/database"
	"github.com/shahmeerahmad1435/tracker-app/internal/reporter"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [period]",
	Short: "Generate a local usage report (period: day, week, month)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  generateReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func generateReport(cmd *cobra.Command, args []string) error {
	periodType := "day"
	if len(args) > 0 {
		periodType = args[0]
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

	rep := reporter.New(database.NewRepository(db))

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		return err
	}

	if reportJSON {
		jsonStr, err := reporter.FormatReportJSON(report)
		if err != nil {
			return err
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(reporter.FormatReportText(report))
	}

	return nil
}
