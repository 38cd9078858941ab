// Package cli implements the roomodes command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roomodes/roomodes/internal/config"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// Flag values shared by all commands.
var (
	flagProjectRoot string
	flagConfigPath  string
	flagLogLevel    string
	flagLogFile     string
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "roomodes",
	Short: "MCP server exposing a mode-governed task system",
	Long: `roomodes is an MCP (Model Context Protocol) server that exposes a
mode-governed task system over JSON-RPC 2.0 on stdin/stdout.

A mode is a named operational profile that constrains which tool groups and
file paths a task may touch; tasks are created and manipulated through
client-visible sessions that expire when idle.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roomodes %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProjectRoot, "project-root", "", "project root directory (for .roomodes)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log file path (defaults to stderr)")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the configuration from flags, environment, and the
// optional config file.
func loadConfig() (*config.Config, error) {
	return config.Load(config.Overrides{
		ConfigPath:  flagConfigPath,
		ProjectRoot: flagProjectRoot,
		LogLevel:    flagLogLevel,
		LogFile:     flagLogFile,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
