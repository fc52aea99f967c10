package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start a fresh session",
		Long: `Reset discards the current session: cache, credit ledger, plan and
brief are wiped from memory and from the snapshot database. The mode and
credential carry over, so a live session stays live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.sess.Reset(); err != nil {
				return err
			}
			fmt.Printf("Session reset. New session ID: %s\n", a.sess.ID())
			return nil
		},
	}
}
