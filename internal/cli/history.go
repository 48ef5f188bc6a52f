// history.go implements "intentional history" and "intentional events".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/model"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reflection sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			sessions, err := rt.store.LoadReflectionSessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No reflections yet.")
				return nil
			}

			// Newest first.
			for i := len(sessions) - 1; i >= 0 && len(sessions)-i <= limit; i-- {
				s := sessions[i]
				fmt.Fprintf(out, "  %s  %-16s  %-22s  %4.0fs  %s\n",
					s.StartTime.In(rt.location).Format("Jan 02 15:04"),
					s.AppName, outcome(s), s.Duration().Seconds(), s.Question)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of sessions to show")
	return cmd
}

// outcome summarises how a session ended.
func outcome(s model.ReflectionSession) string {
	var label string
	switch s.State.Kind {
	case model.StateActive:
		label = "in progress"
	case model.StateCancelled:
		label = "cancelled"
	case model.StateCompleted:
		label = string(s.State.Cause)
	}
	switch {
	case s.ProceededToApp:
		label += ", opened"
	case s.AlternativeAppChosen != "":
		label += ", " + s.AlternativeAppChosen
	}
	return label
}

func newEventsCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the audit log of reflection events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			events, err := rt.events.ReadAll()
			if err != nil {
				return err
			}
			if len(events) > limit {
				events = events[len(events)-limit:]
			}
			out := cmd.OutOrStdout()
			for _, e := range events {
				detail := e.AppName
				switch {
				case e.Error != "":
					detail += " " + e.Error
				case e.Reason != "":
					detail += " " + e.Reason
				case e.Alternative != "":
					detail += " -> " + e.Alternative
				}
				fmt.Fprintf(out, "  %s  %-22s  %s\n", e.Time.In(rt.location).Format("Jan 02 15:04:05"), e.Event, detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of events to show")
	return cmd
}
