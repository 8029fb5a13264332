package main

import (
	"fmt"
	"os"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/assignments"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/auth"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/frequency"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/root"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/schedules"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	schedules.InitSchedules(rootCmd)
	assignments.InitAssignments(rootCmd)
	users.InitUsers(rootCmd)
	frequency.InitFrequency(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
