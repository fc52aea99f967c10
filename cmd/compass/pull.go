package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/contentcompass/compass/pkg/credits"
	"github.com/contentcompass/compass/pkg/models"
)

func newPullCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch every enabled resource in one go",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			kinds := a.sess.EnabledKinds()
			if len(kinds) == 0 {
				fmt.Println("No endpoints enabled.")
				return nil
			}

			if a.sess.Mode() == models.ModeLive {
				estimate, err := credits.Estimate(kinds)
				if err != nil {
					return err
				}
				fmt.Printf("Fetching %d resources, worst case %d credits if nothing is cached.\n\n",
					len(kinds), estimate)
			}

			creditsBefore := a.sess.CreditsUsed()

			// Fetches run concurrently but serialize on the session, so
			// each one still charges and caches as a single unit.
			g, ctx := errgroup.WithContext(context.Background())
			for _, kind := range kinds {
				g.Go(func() error {
					if _, err := a.sess.Fetch(ctx, kind, nil, force); err != nil {
						return fmt.Errorf("pull %s: %w", kind, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tRESULTS\tFETCHED")
			for _, e := range a.sess.CacheEntries() {
				fmt.Fprintf(w, "%s\t%d\t%s\n",
					e.Key, e.Payload.Results, e.FetchedAt.Format("2006-01-02 15:04:05"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			total := a.sess.CreditsUsed()
			fmt.Printf("\nCharged %d credits this pull. Credits used this session: %d.\n",
				total-creditsBefore, total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and re-fetch")
	return cmd
}
