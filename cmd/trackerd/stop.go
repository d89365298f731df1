package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running agent",
	RunE:  stopAgent,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func stopAgent(cmd *cobra.Command, args []string) error {
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
		fmt.Println("Agent is not running")
		return nil
	}

	fmt.Printf("Stopping agent (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		return err
	}

	fmt.Println("Agent stopped successfully")
	return nil
}
