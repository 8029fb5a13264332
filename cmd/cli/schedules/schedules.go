package schedules

import (
	"fmt"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/client"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/output"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/spf13/cobra"
)

func InitSchedules(rootCmd *cobra.Command) {
	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Browse cleaning checklists",
	}
	schedulesCmd.AddCommand(listSchedulesCmd(), showScheduleCmd())
	rootCmd.AddCommand(schedulesCmd)
}

func frequencyOrDash[T ~string](f *T) string {
	if f == nil || *f == "" {
		return "-"
	}
	return string(*f)
}

func listSchedulesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list struct {
				Items []models.Schedule `json:"items"`
				Total int               `json:"total"`
			}
			if err := client.AuthCall("GET", "/schedules?limit=100", nil, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(list.Items)
			}

			rows := make([][]interface{}, 0, len(list.Items))
			for _, s := range list.Items {
				rows = append(rows, []interface{}{s.ID, s.Title, frequencyOrDash(s.DetectedFrequency), frequencyOrDash(s.SuggestedFrequency)})
			}
			output.RenderTable([]string{"ID", "Title", "Detected", "Suggested"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

func showScheduleCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a schedule with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s models.Schedule
			if err := client.AuthCall("GET", "/schedules/"+args[0], nil, &s); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(s)
			}

			fmt.Printf("Schedule %d: %s\n", s.ID, s.Title)
			fmt.Printf("Suggested frequency: %s\n", frequencyOrDash(s.SuggestedFrequency))
			rows := make([][]interface{}, 0, len(s.Tasks))
			for _, t := range s.Tasks {
				rows = append(rows, []interface{}{t.ID, t.Position + 1, t.Description, frequencyOrDash(t.Frequency)})
			}
			output.RenderTable([]string{"Task ID", "#", "Description", "Frequency"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}
