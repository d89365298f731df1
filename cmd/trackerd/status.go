package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/daemon"
	"github.com/shahmeerahmad1435/tracker-app/internal/status"
	"github.com/shahmeerahmad1435/tracker-app/pkg/detector"
	"github.com/shahmeerahmad1435/tracker-app/pkg/utils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status and current foreground window",
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check agent status: %w", err)
	}

	if !running {
		color.Red("Status: Not running")
	} else {
		color.Green("Status: Running (PID: %d)", pid)
		if cfg.Status.Enabled {
			printAgentStatus(cfg)
		}
	}

	// Show current window detection even when the agent is not running
	det, err := detector.New()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return nil
	}
	defer det.Close()

	info, err := det.ActiveWindow()
	if err == nil && info != nil {
		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  App: %s\n", info.AppName)
		fmt.Printf("  Title: %s\n", info.WindowTitle)
		fmt.Printf("  Display: %s\n", info.DisplayServer)
	}

	activity, err := det.ActivityInfo()
	if err == nil && activity != nil {
		fmt.Printf("\nSystem State:\n")
		fmt.Printf("  Locked: %v\n", activity.IsLocked)
		fmt.Printf("  Idle Time: %s\n", utils.FormatRoundedUnit(activity.IdleSeconds))
	}

	return nil
}

// printAgentStatus asks the running agent's status server for its view.
func printAgentStatus(cfg *config.Config) {
	url := fmt.Sprintf("http://%s:%d/api/status", cfg.Status.Host, cfg.Status.Port)
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("Could not reach status server: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var st status.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("Could not decode status response: %v\n", err)
		return
	}

	fmt.Printf("Session: %s", st.State)
	if st.UserName != "" {
		fmt.Printf(" (%s)", st.UserName)
	}
	fmt.Println()
	if st.CheckInTime != "" {
		fmt.Printf("Checked in at: %s\n", st.CheckInTime)
	}
	fmt.Printf("Uptime: %s\n", st.Uptime)

	fmt.Println("Services:")
	for _, svc := range st.Services {
		if svc.Running {
			fmt.Printf("  %s: %s\n", svc.Name, color.GreenString("running"))
		} else {
			fmt.Printf("  %s: %s\n", svc.Name, color.YellowString("stopped"))
		}
	}

	if len(st.Pending) > 0 {
		fmt.Printf("Pending usage entries: %d\n", len(st.Pending))
	}
}
