// Package cmd implements the replay CLI's subcommands: list, show, and
// summary, all reading from the same sqlite-backed battle store the API
// server writes to.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// dbPath is the file path to the sqlite database, set via the --db flag.
var dbPath string

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Inspect persisted fight-club battles",
	Long:  "List, show, and summarize battle replays stored by the fight-club API server.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".fight-club", "fightclub.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to sqlite database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
