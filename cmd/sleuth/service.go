package main

import (
	"github.com/spf13/cobra"

	"github.com/marta/sleuth/internal/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the launchd agent that runs watch mode",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the binary and load the launchd agent",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Install() },
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Unload the launchd agent and remove the binary",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Uninstall() },
}

var serviceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent now",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Start() },
}

var serviceStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the agent",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Stop() },
}

var serviceRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the agent",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Restart() },
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the agent is loaded",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Status() },
}

var serviceLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail the agent's log files",
	RunE:  func(cmd *cobra.Command, args []string) error { return service.Logs() },
}

func init() {
	serviceCmd.AddCommand(
		serviceInstallCmd,
		serviceUninstallCmd,
		serviceStartCmd,
		serviceStopCmd,
		serviceRestartCmd,
		serviceStatusCmd,
		serviceLogsCmd,
	)
	rootCmd.AddCommand(serviceCmd)
}
