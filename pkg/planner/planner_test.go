package planner

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/contentcompass/compass/pkg/models"
)

// scriptedGen returns a canned reply and records every prompt it saw.
type scriptedGen struct {
	reply   string
	err     error
	prompts []string
}

func (s *scriptedGen) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func trendsPayload(t *testing.T, names ...string) models.Payload {
	t.Helper()
	entries := make([]models.TrendEntry, 0, len(names))
	for i, name := range names {
		entries = append(entries, models.TrendEntry{
			Trend:   models.TrendInfo{Name: name},
			Ranking: i + 1,
		})
	}
	groups := []models.TrendGroup{{Date: "2026-08-17", Trends: entries}}
	raw, err := json.Marshal(groups)
	if err != nil {
		t.Fatalf("marshal trends: %v", err)
	}
	return models.Payload{Results: 1, Data: raw}
}

const fiveIdeas = `[
  {"day": "Monday", "trend": "Silent Vlogging", "video_idea": "Film a silent studio tour", "hook": "No words needed.", "hashtags": ["#silentvlog"], "difficulty": "Easy", "best_time": "14:00 UTC"},
  {"day": "Tuesday", "trend": "One Pan Dinners", "video_idea": "Cook dinner in one pan", "hook": "One pan. That's it.", "hashtags": ["#onepan"], "difficulty": "Medium", "best_time": "15:00 UTC"},
  {"day": "Wednesday", "trend": "Desk Setup Tours", "video_idea": "Tour the new desk", "hook": "This desk cost $80.", "hashtags": ["#desksetup"], "difficulty": "Easy", "best_time": "16:00 UTC"},
  {"day": "Thursday", "trend": "5AM Club", "video_idea": "Timelapse a 5am start", "hook": "Before sunrise hits different.", "hashtags": ["#5amclub"], "difficulty": "Hard", "best_time": "17:00 UTC"},
  {"day": "Friday", "trend": "Micro Tutorials", "video_idea": "Teach one knife skill", "hook": "You slice wrong.", "hashtags": ["#microtutorial"], "difficulty": "Medium", "best_time": "14:00 UTC"}
]`

func TestWeeklyPlanParsesModelOutput(t *testing.T) {
	gen := &scriptedGen{reply: fiveIdeas}
	g := New(gen, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Cooking"}, trendsPayload(t, "Silent Vlogging"))
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(plan.Ideas) != 5 {
		t.Fatalf("got %d ideas, want 5", len(plan.Ideas))
	}
	if plan.Ideas[0].Hook != "No words needed." {
		t.Errorf("first hook = %q", plan.Ideas[0].Hook)
	}
	if plan.Niche != "Cooking" || plan.Platform != "TikTok" {
		t.Errorf("envelope = %q/%q, want Cooking/TikTok", plan.Niche, plan.Platform)
	}
	if plan.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not stamped")
	}
}

func TestWeeklyPlanStripsCodeFences(t *testing.T) {
	gen := &scriptedGen{reply: "```json\n" + fiveIdeas + "\n```"}
	g := New(gen, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Cooking"}, models.Payload{})
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if plan.Ideas[1].Trend != "One Pan Dinners" {
		t.Errorf("fenced output not parsed, got trend %q", plan.Ideas[1].Trend)
	}
}

func TestWeeklyPlanTruncatesExtraIdeas(t *testing.T) {
	var ideas []models.Idea
	if err := json.Unmarshal([]byte(fiveIdeas), &ideas); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ideas = append(ideas, models.Idea{Day: "Saturday", Trend: "Bonus"})
	raw, _ := json.Marshal(ideas)

	g := New(&scriptedGen{reply: string(raw)}, nil)
	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Cooking"}, models.Payload{})
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(plan.Ideas) != 5 {
		t.Fatalf("got %d ideas, want 5", len(plan.Ideas))
	}
	if plan.Ideas[4].Day != "Friday" {
		t.Errorf("last idea day = %q, want Friday", plan.Ideas[4].Day)
	}
}

func TestWeeklyPlanFallbackOnGarbage(t *testing.T) {
	gen := &scriptedGen{reply: "Sorry, I cannot help with that."}
	g := New(gen, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Home Decor", Tone: "Educational"}, trendsPayload(t, "Thrift Flip Reveals", "Desk Setup Tours"))
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(plan.Ideas) != 5 {
		t.Fatalf("got %d ideas, want 5", len(plan.Ideas))
	}
	first := plan.Ideas[0]
	if first.Trend != "Thrift Flip Reveals" {
		t.Errorf("first fallback trend = %q", first.Trend)
	}
	if first.Hook != "POV: You just discovered Thrift Flip Reveals..." {
		t.Errorf("fallback hook = %q", first.Hook)
	}
	if first.VideoIdea != "Create a educational TikTok video about Thrift Flip Reveals" {
		t.Errorf("fallback video idea = %q", first.VideoIdea)
	}
	// Trends run out after two entries, then the niche fills in.
	if plan.Ideas[2].Trend != "Home Decor tips" {
		t.Errorf("third fallback trend = %q", plan.Ideas[2].Trend)
	}
	if got := plan.Ideas[2].Hashtags[2]; got != "#homedecor" {
		t.Errorf("niche hashtag = %q, want #homedecor", got)
	}
	wantDifficulty := []string{"Easy", "Medium", "Hard", "Easy", "Medium"}
	wantTime := []string{"14:00 UTC", "15:00 UTC", "16:00 UTC", "17:00 UTC", "14:00 UTC"}
	for i, idea := range plan.Ideas {
		if idea.Difficulty != wantDifficulty[i] {
			t.Errorf("idea %d difficulty = %q, want %q", i, idea.Difficulty, wantDifficulty[i])
		}
		if idea.BestTime != wantTime[i] {
			t.Errorf("idea %d best time = %q, want %q", i, idea.BestTime, wantTime[i])
		}
	}
}

func TestWeeklyPlanFallbackOnShortList(t *testing.T) {
	gen := &scriptedGen{reply: `[{"day": "Monday"}, {"day": "Tuesday"}]`}
	g := New(gen, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Tech"}, models.Payload{})
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if plan.Ideas[0].Trend != "Tech tips" {
		t.Errorf("short list should fall back, got trend %q", plan.Ideas[0].Trend)
	}
}

func TestWeeklyPlanFallbackOnGeneratorError(t *testing.T) {
	gen := &scriptedGen{err: errors.New("quota exhausted")}
	g := New(gen, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Tech"}, models.Payload{})
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(plan.Ideas) != 5 {
		t.Fatalf("got %d ideas, want 5", len(plan.Ideas))
	}
}

func TestWeeklyPlanWithoutGenerator(t *testing.T) {
	g := New(nil, nil)

	plan, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Fitness"}, models.Payload{})
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(plan.Ideas) != 5 {
		t.Fatalf("got %d ideas, want 5", len(plan.Ideas))
	}
	if plan.Ideas[0].Hashtags[2] != "#fitness" {
		t.Errorf("niche hashtag = %q", plan.Ideas[0].Hashtags[2])
	}
}

func TestWeeklyPlanRequiresNiche(t *testing.T) {
	g := New(&scriptedGen{reply: fiveIdeas}, nil)
	if _, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "  "}, models.Payload{}); err == nil {
		t.Fatal("expected error for empty niche")
	}
}

func TestWeekPromptCarriesTrendContext(t *testing.T) {
	gen := &scriptedGen{reply: fiveIdeas}
	g := New(gen, nil)

	_, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Cooking", Platform: "YouTube Shorts", Tone: "Dramatic"}, trendsPayload(t, "Silent Vlogging", "One Pan Dinners"))
	if err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{
		"a Cooking creator on YouTube Shorts with a Dramatic tone",
		"Current trending topics: Silent Vlogging, One Pan Dinners",
		"Return ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestWeekPromptDefaultsTrendContext(t *testing.T) {
	gen := &scriptedGen{reply: fiveIdeas}
	g := New(gen, nil)

	if _, err := g.WeeklyPlan(context.Background(), PlanRequest{Niche: "Cooking"}, models.Payload{}); err != nil {
		t.Fatalf("WeeklyPlan: %v", err)
	}
	if !strings.Contains(gen.prompts[0], "Current trending topics: general viral content") {
		t.Error("empty payload should fall back to the generic trend context")
	}
}

func TestContentBriefMergesModelOutput(t *testing.T) {
	gen := &scriptedGen{reply: `{"why_this_trend": "Viewers cannot look away.", "hook_copy": "Stop scrolling."}`}
	g := New(gen, nil)

	brief, err := g.ContentBrief(context.Background(), BriefRequest{Topic: "Silent Vlogging", Niche: "Lifestyle"})
	if err != nil {
		t.Fatalf("ContentBrief: %v", err)
	}
	if brief.Sections.WhyThisTrend != "Viewers cannot look away." {
		t.Errorf("parsed field lost: %q", brief.Sections.WhyThisTrend)
	}
	if brief.Sections.HookCopy != "Stop scrolling." {
		t.Errorf("parsed hook lost: %q", brief.Sections.HookCopy)
	}
	if brief.Sections.Length != "30-60 seconds" {
		t.Errorf("missing field not filled from fallback: %q", brief.Sections.Length)
	}
	if len(brief.Sections.GemHashtags) != 3 {
		t.Errorf("gem hashtags = %v", brief.Sections.GemHashtags)
	}
}

func TestContentBriefFallback(t *testing.T) {
	g := New(&scriptedGen{reply: "not json"}, nil)

	brief, err := g.ContentBrief(context.Background(), BriefRequest{Topic: "One Pan Dinners"})
	if err != nil {
		t.Fatalf("ContentBrief: %v", err)
	}
	if brief.Niche != "General" {
		t.Errorf("niche default = %q, want General", brief.Niche)
	}
	if brief.Sections.HookCopy != "Wait... is this really One Pan Dinners? 🤯" {
		t.Errorf("fallback hook = %q", brief.Sections.HookCopy)
	}
	if brief.Sections.BestTime != "2-4 PM UTC" {
		t.Errorf("fallback best time = %q", brief.Sections.BestTime)
	}
}

func TestContentBriefPrefillSeedsFallback(t *testing.T) {
	idea := &models.Idea{Hook: "One pan. That's it.", BestTime: "15:00 UTC"}
	g := New(nil, nil)

	brief, err := g.ContentBrief(context.Background(), BriefRequest{Topic: "One Pan Dinners", Niche: "Cooking", Prefill: idea})
	if err != nil {
		t.Fatalf("ContentBrief: %v", err)
	}
	if brief.Sections.HookCopy != "One pan. That's it." {
		t.Errorf("prefill hook lost: %q", brief.Sections.HookCopy)
	}
	if brief.Sections.BestTime != "15:00 UTC" {
		t.Errorf("prefill best time lost: %q", brief.Sections.BestTime)
	}
}

func TestContentBriefModelBeatsPrefill(t *testing.T) {
	idea := &models.Idea{Hook: "One pan. That's it."}
	gen := &scriptedGen{reply: `{"hook_copy": "Stop scrolling."}`}
	g := New(gen, nil)

	brief, err := g.ContentBrief(context.Background(), BriefRequest{Topic: "One Pan Dinners", Prefill: idea})
	if err != nil {
		t.Fatalf("ContentBrief: %v", err)
	}
	if brief.Sections.HookCopy != "Stop scrolling." {
		t.Errorf("model hook should win over prefill, got %q", brief.Sections.HookCopy)
	}
}

func TestContentBriefRequiresTopic(t *testing.T) {
	g := New(nil, nil)
	if _, err := g.ContentBrief(context.Background(), BriefRequest{Niche: "Tech"}); err == nil {
		t.Fatal("expected error for empty topic")
	}
}

func TestContentBriefStampsDate(t *testing.T) {
	g := New(nil, nil)
	brief, err := g.ContentBrief(context.Background(), BriefRequest{Topic: "Silent Vlogging"})
	if err != nil {
		t.Fatalf("ContentBrief: %v", err)
	}
	if ok, _ := regexp.MatchString(`^\d{4}-\d{2}-\d{2}$`, brief.PreparedDate); !ok {
		t.Errorf("prepared date = %q, want YYYY-MM-DD", brief.PreparedDate)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"[1,2]", "[1,2]"},
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  \n```json\n{\"a\":1}\n```\n", "{\"a\":1}"},
		{"prefix ```json\n[1]\n```", "prefix ```json\n[1]\n```"},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
