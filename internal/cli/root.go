// Package cli wires configuration, storage and services into commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dailytasks",
	Short: "Daily task lists with carry-over and project archival",
	Long: `dailytasks keeps one task list per day, carries unfinished work into the
next day and archives projects that are done or abandoned.

Configuration comes from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(carryOverCmd)
	rootCmd.AddCommand(archiveProjectsCmd)
	rootCmd.AddCommand(maintenanceCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
