package mcp

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/contentcompass/compass/pkg/credits"
	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/session"
)

// formatPayload renders a payload as a text table for kind.
func formatPayload(kind models.ResourceKind, p models.Payload) (string, error) {
	switch kind {
	case models.KindTrends:
		return formatTrends(p)
	case models.KindHashtags:
		return formatHashtags(p)
	case models.KindVideos:
		return formatVideos(p)
	case models.KindNiches:
		return formatNiches(p)
	default:
		return "", fmt.Errorf("no formatter for kind %q", kind)
	}
}

func formatTrends(p models.Payload) (string, error) {
	groups, err := p.TrendGroups()
	if err != nil {
		return "", err
	}
	if len(groups) == 0 || len(groups[0].Trends) == 0 {
		return "No trends found.", nil
	}
	g := groups[0]
	var b strings.Builder
	if g.Date != "" {
		fmt.Fprintf(&b, "Trends for %s\n\n", g.Date)
	}
	fmt.Fprintf(&b, "%4s  %-25s %s\n", "Rank", "Trend", "Description")
	b.WriteString(strings.Repeat("-", 90) + "\n")
	for _, t := range g.Trends {
		fmt.Fprintf(&b, "%4d  %-25s %s\n", t.Ranking, t.Trend.Name, t.Trend.Description)
	}
	return b.String(), nil
}

func formatHashtags(p models.Payload) (string, error) {
	tags, err := p.Hashtags()
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "No hashtags found.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %12s %16s\n", "Hashtag", "Posts", "Total Views")
	b.WriteString(strings.Repeat("-", 54) + "\n")
	for _, t := range tags {
		fmt.Fprintf(&b, "%-24s %12s %16s\n",
			t.Hashtag, humanize.Comma(t.Count), humanize.Comma(t.TotalViews))
	}
	return b.String(), nil
}

func formatVideos(p models.Payload) (string, error) {
	videos, err := p.Videos()
	if err != nil {
		return "", err
	}
	if len(videos) == 0 {
		return "No videos found.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %12s %7s  %s\n", "Type", "Views", "Length", "Description")
	b.WriteString(strings.Repeat("-", 92) + "\n")
	for _, v := range videos {
		fmt.Fprintf(&b, "%-8s %12s %7s  %s\n",
			v.Type, humanize.Comma(v.Views), formatClock(v.Duration), truncate(v.Description, 60))
		if v.URL != "" {
			fmt.Fprintf(&b, "%31s%s\n", "", v.URL)
		}
	}
	return b.String(), nil
}

func formatNiches(p models.Payload) (string, error) {
	niches, err := p.Niches()
	if err != nil {
		return "", err
	}
	if len(niches) == 0 {
		return "No niches found.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %10s %14s\n", "Niche", "Videos", "Avg Views")
	b.WriteString(strings.Repeat("-", 46) + "\n")
	for _, n := range niches {
		fmt.Fprintf(&b, "%-20s %10s %14s\n",
			n.Name, humanize.Comma(n.Videos), humanize.Comma(n.AvgViews))
	}
	return b.String(), nil
}

func formatCredits(total int, history []models.LedgerEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Credits used this session: %s\n", humanize.Comma(int64(total)))
	b.WriteString("\nPrice list:\n")
	for _, kind := range models.AllKinds() {
		cost, _ := credits.CostOf(kind)
		fmt.Fprintf(&b, "  %-10s %6d credits\n", kind, cost)
	}
	if len(history) == 0 {
		b.WriteString("\nNo charges yet.\n")
		return b.String()
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-10s %8s  %-20s\n", "Kind", "Cost", "Charged At")
	b.WriteString(strings.Repeat("-", 42) + "\n")
	for _, e := range history {
		fmt.Fprintf(&b, "%-10s %8d  %-20s\n",
			e.Kind, e.Cost, e.ChargedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// formatCacheStats formats cache stats as text.
func formatCacheStats(stats models.CacheStats) string {
	return fmt.Sprintf("Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n",
		stats.Entries, stats.Hits, stats.Misses, stats.HitRate())
}

func formatPlan(plan *models.WeeklyPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "WEEKLY CONTENT PLAN\nNiche: %s | Platform: %s\n\n", plan.Niche, plan.Platform)
	for _, idea := range plan.Ideas {
		fmt.Fprintf(&b, "=== %s ===\n", idea.Day)
		fmt.Fprintf(&b, "Trend: %s\n", idea.Trend)
		fmt.Fprintf(&b, "Idea: %s\n", idea.VideoIdea)
		fmt.Fprintf(&b, "Hook: %s\n", idea.Hook)
		fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(idea.Hashtags, " "))
		fmt.Fprintf(&b, "Difficulty: %s | Best Time: %s\n\n", idea.Difficulty, idea.BestTime)
	}
	return b.String()
}

func formatBrief(brief *models.Brief) string {
	s := brief.Sections
	return fmt.Sprintf(`CONTENT BRIEF: %s
Niche: %s | Date: %s

WHY THIS TREND
%s

WHAT TO CREATE
Format: %s
Length: %s
Hook: %s
Best time: %s

HASHTAGS
Safe: %s
Aggressive: %s
Gems: %s
`, brief.TrendName, brief.Niche, brief.PreparedDate,
		s.WhyThisTrend, s.Format, s.Length, s.HookCopy, s.BestTime,
		strings.Join(s.SafeHashtags, " "),
		strings.Join(s.AggressiveHashtags, " "),
		strings.Join(s.GemHashtags, " "))
}

func formatEvents(events []models.FetchEvent) string {
	if len(events) == 0 {
		return "No activity recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-10s %-9s %7s %-6s %s\n", "Time", "Kind", "Source", "Cost", "Forced", "Query")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, ev := range events {
		forced := ""
		if ev.Forced {
			forced = "yes"
		}
		fmt.Fprintf(&b, "%-20s %-10s %-9s %7d %-6s %s\n",
			ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Kind, ev.Source, ev.Cost, forced, ev.Query)
		if ev.Error != "" {
			fmt.Fprintf(&b, "%21serror: %s\n", "", ev.Error)
		}
	}
	return b.String()
}

func formatStatus(sess *session.Session) string {
	credential := "not set"
	if sess.HasCredential() {
		credential = "set"
	}
	stats := sess.CacheStats()
	return fmt.Sprintf("Session %s\n"+
		"  Mode:         %s\n"+
		"  Credential:   %s\n"+
		"  Credits used: %s\n"+
		"  Cache:        %d entries, %d hits, %d misses\n",
		sess.ID(), sess.Mode(), credential,
		humanize.Comma(int64(sess.CreditsUsed())),
		stats.Entries, stats.Hits, stats.Misses)
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
