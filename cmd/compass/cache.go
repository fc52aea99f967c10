package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the session cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			stats := a.sess.CacheStats()
			fmt.Printf("Entries:  %d\nHits:     %d\nMisses:   %d\nHit rate: %.1f%%\n",
				stats.Entries, stats.Hits, stats.Misses, stats.HitRate())

			entries := a.sess.CacheEntries()
			if len(entries) == 0 {
				return nil
			}
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tRESULTS\tFETCHED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\n",
					e.Key, e.Payload.Results, e.FetchedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			a.sess.InvalidateCache()
			fmt.Println("Cache cleared.")
			return nil
		},
	}

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
