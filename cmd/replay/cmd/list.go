package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"fight-club/internal/config"
	"fight-club/internal/store"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent battles",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum battles to list")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := store.Open(config.PersistenceConfig{DSN: dbPath})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	battles, err := db.ListBattles(listLimit)
	if err != nil {
		return fmt.Errorf("list battles: %w", err)
	}
	if len(battles) == 0 {
		fmt.Fprintln(os.Stderr, "No battles found")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "WINNER", "ROUNDS", "SEED", "DURATION_MS", "CREATED_AT")
	for _, b := range battles {
		table.Append(
			b.ID,
			string(b.Winner),
			strconv.Itoa(b.TotalRounds),
			strconv.FormatUint(uint64(b.Seed), 10),
			strconv.FormatInt(b.DurationMs, 10),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	table.Render()
	return nil
}
