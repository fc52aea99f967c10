package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/contentcompass/compass/pkg/credits"
	"github.com/contentcompass/compass/pkg/models"
)

func newCreditsCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Show credits used this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Printf("Credits used this session: %s\n", humanize.Comma(int64(a.sess.CreditsUsed())))

			if !history {
				return nil
			}

			entries := a.sess.History()
			if len(entries) == 0 {
				fmt.Println("No charges yet.")
				return nil
			}
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tKIND\tCOST\tCHARGED AT")
			for i, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
					i+1, e.Kind, e.Cost, e.ChargedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "show every charge in order")

	priceCmd := &cobra.Command{
		Use:   "prices",
		Short: "Show the credit price of each resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tCREDITS")
			for _, kind := range models.AllKinds() {
				cost, err := credits.CostOf(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\n", kind, cost)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(priceCmd)
	return cmd
}
