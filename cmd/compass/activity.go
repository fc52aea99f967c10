package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentcompass/compass/pkg/audit"
)

func newActivityCmd() *cobra.Command {
	var (
		kind    string
		source  string
		since   string
		limit   int
		stats   bool
		session bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent fetch activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()

			if stats {
				rows, err := a.rec.Stats(ctx)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Println("No activity recorded yet.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KIND\tDAY\tFETCHES\tCOST")
				for _, s := range rows {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Kind, s.Day, s.Fetches, s.Cost)
				}
				return w.Flush()
			}

			opts := audit.QueryOpts{
				Kind:   kind,
				Source: source,
				Limit:  limit,
			}
			if session {
				opts.SessionID = a.sess.ID()
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				opts.Since = t
			}

			events, err := a.rec.Query(ctx, opts)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No activity recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKIND\tSOURCE\tCOST\tFORCED\tQUERY\tNOTE")
			for _, ev := range events {
				forced := ""
				if ev.Forced {
					forced = "yes"
				}
				note := ""
				if ev.Error != "" {
					note = clip(ev.Error, 40)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Kind, ev.Source,
					ev.Cost, forced, ev.Query, note)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter by resource kind")
	cmd.Flags().StringVar(&source, "source", "", "filter by source (cache, live, fixture, disabled)")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max events to return")
	cmd.Flags().BoolVar(&stats, "stats", false, "aggregate by kind and day")
	cmd.Flags().BoolVar(&session, "session", false, "only events from the current session")

	cmd.AddCommand(newActivityCleanupCmd())
	return cmd
}

func newActivityCleanupCmd() *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete activity older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := a.rec.Cleanup(context.Background(), retention)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d activity events.\n", deleted)
			return nil
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 30*24*time.Hour, "keep events newer than this")
	return cmd
}
