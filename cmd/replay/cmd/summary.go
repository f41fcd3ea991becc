package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"fight-club/internal/battle/sim"
	"fight-club/internal/config"
	"fight-club/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <battle-id>",
	Short: "Print the final board state of a battle",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("\nBattle %s  |  Winner: %s\n\n", battle.ID, battle.Winner)
	printRoster(os.Stdout, "PLAYER", battle.Result.FinalState.PlayerUnits)
	printRoster(os.Stdout, "BOT", battle.Result.FinalState.BotUnits)
	return nil
}

func printRoster(w *os.File, label string, units []sim.UnitSnapshot) {
	fmt.Fprintf(w, "--- %s ---\n", label)
	table := tablewriter.NewTable(w)
	table.Header("INSTANCE", "TEMPLATE", "ALIVE", "HP", "X", "Y")
	for _, u := range units {
		table.Append(
			u.InstanceID,
			u.TemplateID,
			strconv.FormatBool(u.Alive),
			fmt.Sprintf("%d/%d", u.CurrentHP, u.MaxHP),
			strconv.Itoa(u.Position.X),
			strconv.Itoa(u.Position.Y),
		)
	}
	table.Render()
	fmt.Fprintln(w)
}
