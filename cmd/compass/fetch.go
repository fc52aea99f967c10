package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/session"
)

func newTrendsCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Fetch the curated trend digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(models.KindTrends, nil, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and re-fetch")
	return cmd
}

func newHashtagsCmd() *cobra.Command {
	var (
		force   bool
		limit   int
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "hashtags",
		Short: "Fetch hashtag performance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := models.Params{}
			if limit > 0 {
				params["limit"] = strconv.Itoa(limit)
			}
			if orderBy != "" {
				params["order_by"] = orderBy
			}
			return runFetch(models.KindHashtags, params, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and re-fetch")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows to request")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort column (views or count)")
	return cmd
}

func newVideosCmd() *cobra.Command {
	var (
		force bool
		limit int
		niche string
	)

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Fetch the trending video digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := models.Params{}
			if limit > 0 {
				params["limit"] = strconv.Itoa(limit)
			}
			if niche != "" {
				params["niche"] = niche
			}
			return runFetch(models.KindVideos, params, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and re-fetch")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows to request")
	cmd.Flags().StringVar(&niche, "niche", "", "filter videos by niche")
	return cmd
}

func newNichesCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "niches",
		Short: "Fetch the niche category listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(models.KindNiches, nil, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and re-fetch")
	return cmd
}

// runFetch fetches one kind through the session and renders the result.
// Failed live fetches fall back to the last cached payload when one exists.
func runFetch(kind models.ResourceKind, params models.Params, force bool) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	statsBefore := a.sess.CacheStats()
	creditsBefore := a.sess.CreditsUsed()

	payload, err := a.sess.Fetch(ctx, kind, params, force)
	if err != nil {
		var ferr *session.FetchError
		if !errors.As(err, &ferr) || ferr.LastKnown == nil {
			return err
		}
		fmt.Printf("Live fetch failed: %v\n", ferr.Err)
		fmt.Printf("Showing last cached data from %s.\n\n", ferr.LastKnown.FetchedAt.Format("2006-01-02 15:04:05"))
		payload = ferr.LastKnown.Payload
	}

	if err := renderPayload(kind, payload); err != nil {
		return err
	}
	fmt.Println()
	printFetchFooter(a.sess, statsBefore, creditsBefore)
	return nil
}

// printFetchFooter reports where the last fetch was served from and what it
// cost. The source is derived from the counters so the fetch path itself
// stays unchanged.
func printFetchFooter(sess *session.Session, before models.CacheStats, creditsBefore int) {
	total := sess.CreditsUsed()
	cost := total - creditsBefore
	switch {
	case sess.CacheStats().Hits > before.Hits:
		fmt.Printf("Source: cache, no charge. Credits used this session: %d.\n", total)
	case cost > 0:
		fmt.Printf("Source: live, charged %d credits. Credits used this session: %d.\n", cost, total)
	case sess.Mode() == models.ModeDemo:
		fmt.Printf("Source: demo data, no charge. Credits used this session: %d.\n", total)
	default:
		fmt.Printf("No charge. Credits used this session: %d.\n", total)
	}
}

func renderPayload(kind models.ResourceKind, p models.Payload) error {
	switch kind {
	case models.KindTrends:
		return renderTrends(p)
	case models.KindHashtags:
		return renderHashtags(p)
	case models.KindVideos:
		return renderVideos(p)
	case models.KindNiches:
		return renderNiches(p)
	default:
		return fmt.Errorf("no renderer for kind %q", kind)
	}
}

func renderTrends(p models.Payload) error {
	groups, err := p.TrendGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No trends found.")
		return nil
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Println()
		}
		if g.Date != "" {
			fmt.Printf("Trends for %s\n", g.Date)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tTREND\tDESCRIPTION")
		for _, e := range g.Trends {
			rank := "-"
			if e.Ranking > 0 {
				rank = strconv.Itoa(e.Ranking)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", rank, e.Trend.Name, e.Trend.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func renderHashtags(p models.Payload) error {
	tags, err := p.Hashtags()
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Println("No hashtags found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HASHTAG\tPOSTS\tTOTAL VIEWS")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Hashtag, humanize.Comma(t.Count), humanize.Comma(t.TotalViews))
	}
	return w.Flush()
}

func renderVideos(p models.Payload) error {
	videos, err := p.Videos()
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tVIEWS\tLENGTH\tDESCRIPTION\tURL")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.Type, humanize.Comma(v.Views), clock(v.Duration), clip(v.Description, 50), v.URL)
	}
	return w.Flush()
}

func renderNiches(p models.Payload) error {
	niches, err := p.Niches()
	if err != nil {
		return err
	}
	if len(niches) == 0 {
		fmt.Println("No niches found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NICHE\tVIDEOS\tAVG VIEWS")
	for _, n := range niches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.Name, humanize.Comma(n.Videos), humanize.Comma(n.AvgViews))
	}
	return w.Flush()
}

// clock renders a duration in seconds as m:ss.
func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
