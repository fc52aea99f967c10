package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/planner"
)

func newBriefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate and manage the content brief",
	}

	cmd.AddCommand(
		newBriefGenerateCmd(),
		newBriefShowCmd(),
		newBriefClearCmd(),
	)
	return cmd
}

func newBriefGenerateCmd() *cobra.Command {
	var (
		topic       string
		niche       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a production brief for one topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("--topic is required")
			}

			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			req := planner.BriefRequest{
				Topic:       topic,
				Niche:       niche,
				Description: description,
			}

			// A plan idea for the same trend seeds the brief: its hook and
			// posting time survive when the model supplies none, and its
			// video idea fills in a missing description.
			if idea := planIdeaFor(a.sess.Plan(), topic); idea != nil {
				req.Prefill = idea
				if req.Niche == "" {
					req.Niche = a.sess.Plan().Niche
				}
				if req.Description == "" {
					req.Description = idea.VideoIdea
				}
			}

			brief, err := a.gen.ContentBrief(context.Background(), req)
			if err != nil {
				return err
			}
			a.sess.SetBrief(brief)

			printBrief(brief)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "trend or topic the brief covers")
	cmd.Flags().StringVar(&niche, "niche", "", "creator niche (default General)")
	cmd.Flags().StringVar(&description, "description", "", "extra context for the brief")
	return cmd
}

func newBriefShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored content brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			brief := a.sess.Brief()
			if brief == nil {
				if a.sess.Mode() != models.ModeDemo {
					fmt.Println("No brief generated yet. Run 'compass brief generate --topic <topic>'.")
					return nil
				}
				brief, err = a.fixtures.BriefTemplate()
				if err != nil {
					return err
				}
				fmt.Println("No brief generated yet. Showing the bundled sample brief.")
				fmt.Println()
			}

			printBrief(brief)
			return nil
		},
	}
}

func newBriefClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored content brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			a.sess.ClearBrief()
			fmt.Println("Brief cleared.")
			return nil
		},
	}
}

// planIdeaFor returns the stored plan idea whose trend matches topic.
func planIdeaFor(plan *models.WeeklyPlan, topic string) *models.Idea {
	if plan == nil {
		return nil
	}
	for i := range plan.Ideas {
		if strings.EqualFold(plan.Ideas[i].Trend, strings.TrimSpace(topic)) {
			return &plan.Ideas[i]
		}
	}
	return nil
}

func printBrief(brief *models.Brief) {
	s := brief.Sections

	fmt.Printf("Content brief: %s\n", brief.TrendName)
	fmt.Printf("  Niche:      %s\n", brief.Niche)
	fmt.Printf("  Prepared:   %s\n", brief.PreparedDate)
	if brief.Description != "" {
		fmt.Printf("  Context:    %s\n", brief.Description)
	}
	fmt.Println()
	fmt.Println("Why this trend")
	fmt.Printf("  %s\n", s.WhyThisTrend)
	fmt.Println()
	fmt.Println("What to create")
	fmt.Printf("  Format:     %s\n", s.Format)
	fmt.Printf("  Length:     %s\n", s.Length)
	fmt.Printf("  Hook:       %s\n", s.HookCopy)
	fmt.Printf("  Best time:  %s\n", s.BestTime)
	fmt.Println()
	fmt.Println("Hashtag strategy")
	fmt.Printf("  Safe:       %s\n", strings.Join(s.SafeHashtags, " "))
	fmt.Printf("  Aggressive: %s\n", strings.Join(s.AggressiveHashtags, " "))
	fmt.Printf("  Gems:       %s\n", strings.Join(s.GemHashtags, " "))
}
