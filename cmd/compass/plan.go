package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/planner"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate and manage the weekly content plan",
	}

	cmd.AddCommand(
		newPlanGenerateCmd(),
		newPlanShowCmd(),
		newPlanClearCmd(),
	)
	return cmd
}

func newPlanGenerateCmd() *cobra.Command {
	var (
		niche    string
		platform string
		tone     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a five-day plan for a niche",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(niche) == "" {
				return fmt.Errorf("--niche is required")
			}

			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()

			// Current trends give the model context. A failed fetch is not
			// fatal; the plan just loses trend grounding.
			trends, err := a.sess.Fetch(ctx, models.KindTrends, nil, false)
			if err != nil {
				a.log.Warn("trend fetch failed, planning without trend context", zap.Error(err))
				trends = models.EmptyPayload()
			}

			plan, err := a.gen.WeeklyPlan(ctx, planner.PlanRequest{
				Niche:    niche,
				Platform: platform,
				Tone:     tone,
			}, trends)
			if err != nil {
				return err
			}
			a.sess.SetPlan(plan)

			printPlan(plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&niche, "niche", "", "creator niche, e.g. Cooking")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform (default TikTok)")
	cmd.Flags().StringVar(&tone, "tone", "", "content tone (default Funny)")
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored weekly plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			plan := a.sess.Plan()
			if plan == nil {
				if a.sess.Mode() != models.ModeDemo {
					fmt.Println("No plan generated yet. Run 'compass plan generate --niche <niche>'.")
					return nil
				}
				plan, err = a.fixtures.WeeklyPlan()
				if err != nil {
					return err
				}
				fmt.Println("No plan generated yet. Showing the bundled sample plan.")
				fmt.Println()
			}

			printPlan(plan)
			return nil
		},
	}
}

func newPlanClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored weekly plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			a.sess.ClearPlan()
			fmt.Println("Plan cleared.")
			return nil
		},
	}
}

func printPlan(plan *models.WeeklyPlan) {
	fmt.Printf("Weekly plan for %s on %s", plan.Niche, plan.Platform)
	if !plan.GeneratedAt.IsZero() {
		fmt.Printf(" (generated %s)", plan.GeneratedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	for _, idea := range plan.Ideas {
		fmt.Println()
		fmt.Printf("%s: %s\n", strings.ToUpper(idea.Day), idea.Trend)
		fmt.Printf("  Idea:       %s\n", idea.VideoIdea)
		fmt.Printf("  Hook:       %s\n", idea.Hook)
		fmt.Printf("  Hashtags:   %s\n", strings.Join(idea.Hashtags, " "))
		fmt.Printf("  Difficulty: %s\n", idea.Difficulty)
		fmt.Printf("  Best time:  %s\n", idea.BestTime)
	}
}
