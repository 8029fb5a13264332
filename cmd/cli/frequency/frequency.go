package frequency

import (
	"fmt"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/spf13/cobra"
)

func InitFrequency(rootCmd *cobra.Command) {
	frequencyCmd := &cobra.Command{
		Use:   "frequency",
		Short: "Frequency helpers that run locally",
	}
	frequencyCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(frequencyCmd)
}

// suggestCmd maps free text and task frequencies to a Frequency without calling the API.
func suggestCmd() *cobra.Command {
	var tasks []string

	cmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Suggest a cleaning frequency",
		Long: `Suggest a frequency from a detected description and/or task frequencies.

Example:
  neatplan frequency suggest "Monthly deep clean"
  neatplan frequency suggest --task daily --task "every day" --task weekly`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			tf := make([]cycle.Text, len(tasks))
			for i, t := range tasks {
				tf[i] = cycle.Text(t)
			}

			f := cycle.SuggestFrequency(text, tf)
			next, err := cycle.CalculateNextDueDate(f, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (next due if started now: %s)\n", f, next.Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Task frequency text, repeatable")
	return cmd
}
