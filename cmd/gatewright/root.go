package main

import (
	"fmt"
	"os"

	"github.com/gatewright/gatewright/internal/config"
	"github.com/gatewright/gatewright/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	rootCmd = &cobra.Command{
		Use:   "gatewright",
		Short: "gatewright holds coding-agent tool calls behind project checks",
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
	}
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(hookCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(checkCmd())
	return rootCmd.Execute()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
