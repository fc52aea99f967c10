package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/contentcompass/compass/pkg/models"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session mode, credits and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			credential := "not set"
			if a.sess.HasCredential() {
				credential = "set"
			}
			stats := a.sess.CacheStats()

			var disabled []string
			for _, kind := range models.AllKinds() {
				if !a.sess.Enabled(kind) {
					disabled = append(disabled, string(kind))
				}
			}

			fmt.Printf("Session:      %s\n", a.sess.ID())
			fmt.Printf("Mode:         %s\n", a.sess.Mode())
			fmt.Printf("Credential:   %s\n", credential)
			fmt.Printf("Credits used: %s\n", humanize.Comma(int64(a.sess.CreditsUsed())))
			fmt.Printf("Cache:        %d entries, %d hits, %d misses\n",
				stats.Entries, stats.Hits, stats.Misses)
			if len(disabled) > 0 {
				fmt.Printf("Disabled:     %s\n", strings.Join(disabled, ", "))
			}
			if plan := a.sess.Plan(); plan != nil {
				fmt.Printf("Plan:         %s on %s\n", plan.Niche, plan.Platform)
			}
			if brief := a.sess.Brief(); brief != nil {
				fmt.Printf("Brief:        %s\n", brief.TrendName)
			}
			return nil
		},
	}
}
