package assignments

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/client"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/output"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ==========================
// Init Assignments
// ==========================
func InitAssignments(rootCmd *cobra.Command) {
	assignmentsCmd := &cobra.Command{
		Use:     "assignments",
		Aliases: []string{"due"},
		Short:   "Scheduled cleaning for rooms and equipment",
	}
	assignmentsCmd.PersistentFlags().String("kind", "room", "room or equipment")
	assignmentsCmd.AddCommand(listAssignmentsCmd(), completeAssignmentCmd(), sweepCmd())
	rootCmd.AddCommand(assignmentsCmd)
}

// basePath maps --kind to the API collection.
func basePath(cmd *cobra.Command) (string, error) {
	kind, _ := cmd.Flags().GetString("kind")
	switch models.SubjectKind(kind) {
	case models.SubjectRoom:
		return "/room-schedules", nil
	case models.SubjectEquipment:
		return "/equipment-schedules", nil
	}
	return "", fmt.Errorf("--kind must be room or equipment, got %q", kind)
}

// dueIn renders a due date relative to now, e.g. "3 days ago" or "2 hours from now".
func dueIn(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// ==========================
// LIST
// ==========================
func listAssignmentsCmd() *cobra.Command {
	var asJSON bool
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments, soonest due first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := basePath(cmd)
			if err != nil {
				return err
			}
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if status != "" {
				q.Set("status", strings.ToUpper(status))
			}

			var list struct {
				Items []models.AssignmentView `json:"items"`
				Total int                     `json:"total"`
			}
			if err := client.AuthCall("GET", path+"?"+q.Encode(), nil, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(list.Items)
			}

			now := time.Now()
			rows := make([][]interface{}, 0, len(list.Items))
			for _, a := range list.Items {
				last := "never"
				if a.LastCompleted != nil {
					last = humanize.Time(*a.LastCompleted)
				}
				rows = append(rows, []interface{}{
					a.ID, a.SubjectName, a.ScheduleTitle, a.Frequency,
					a.EffectiveStatus, dueIn(a.NextDue, now), last,
				})
			}
			output.RenderTable([]string{"ID", "Subject", "Schedule", "Frequency", "Status", "Due", "Last done"}, rows)
			fmt.Printf("%d of %d assignments\n", len(list.Items), list.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	cmd.Flags().StringVar(&status, "status", "", "Filter by stored status (PENDING, OVERDUE, COMPLETED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of assignments")
	return cmd
}

// ==========================
// COMPLETE
// ==========================
func completeAssignmentCmd() *cobra.Command {
	var taskIDs []int
	var notes string

	cmd := &cobra.Command{
		Use:   "complete [id]",
		Short: "Mark an assignment as done now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := basePath(cmd)
			if err != nil {
				return err
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid assignment id %q", args[0])
			}

			payload := map[string]any{"notes": notes}
			if len(taskIDs) > 0 {
				payload["completed_task_ids"] = taskIDs
			}
			var out struct {
				Assignment models.AssignmentView `json:"assignment"`
			}
			if err := client.AuthCall("POST", path+"/"+args[0]+"/complete", payload, &out); err != nil {
				return err
			}

			a := out.Assignment
			fmt.Printf("Completed %s (%s). Next due %s, %s.\n",
				a.SubjectName, a.Frequency, a.NextDue.Local().Format("Mon 2 Jan 2006 15:04"), dueIn(a.NextDue, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&taskIDs, "tasks", nil, "Completed task ids, e.g. --tasks 3,4")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	return cmd
}

// ==========================
// SWEEP (admin)
// ==========================
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the overdue sweep now (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res struct {
				Checked     int `json:"checked"`
				Transitions int `json:"transitions"`
				NewOverdue  []struct {
					Kind string `json:"kind"`
					ID   int    `json:"id"`
				} `json:"new_overdue"`
			}
			if err := client.AuthCall("POST", "/admin/sweep", nil, &res); err != nil {
				return err
			}
			fmt.Printf("Checked %s assignments, %s status changes, %d newly overdue\n",
				humanize.Comma(int64(res.Checked)), humanize.Comma(int64(res.Transitions)), len(res.NewOverdue))
			for _, a := range res.NewOverdue {
				fmt.Printf("- %s #%d\n", a.Kind, a.ID)
			}
			return nil
		},
	}
}
