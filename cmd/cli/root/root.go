package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "neatplan",
	Short:         "NeatPlan cleaning schedule CLI",
	Long:          "Command line interface for the NeatPlan cleaning schedule API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
