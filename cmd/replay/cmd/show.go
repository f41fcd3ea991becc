package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"fight-club/internal/battle/event"
	"fight-club/internal/config"
	"fight-club/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <battle-id>",
	Short: "Print a battle's full event log",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	db, err := store.Open(config.PersistenceConfig{DSN: dbPath})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	battle, err := db.GetBattle(id)
	if err != nil {
		return fmt.Errorf("load battle: %w", err)
	}
	if battle == nil {
		fmt.Fprintf(os.Stderr, "No battle found with id %q\n", id)
		return nil
	}

	fmt.Printf("\nBattle %s  |  Winner: %s  |  Rounds: %d  |  Seed: %d\n\n",
		battle.ID, battle.Winner, battle.TotalRounds, battle.Seed)

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ROUND", "TYPE", "ACTOR", "TARGET", "DAMAGE", "MISSED")
	for _, e := range battle.Result.Events {
		table.Append(
			strconv.Itoa(e.Round),
			string(e.Type),
			e.ActorID,
			e.TargetID,
			damageCell(e),
			strconv.FormatBool(e.Missed),
		)
	}
	table.Render()
	return nil
}

func damageCell(e event.Event) string {
	if e.Damage == nil {
		return ""
	}
	return strconv.Itoa(*e.Damage)
}
