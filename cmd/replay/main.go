// Command replay is the operator CLI for inspecting persisted battles: list
// recent battles, show a full event log, or print the final board state.
package main

import "fight-club/cmd/replay/cmd"

func main() {
	cmd.Execute()
}
