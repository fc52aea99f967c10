package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/contentcompass/compass/pkg/models"
)

// Defaults applied when a request leaves the field empty.
const (
	DefaultPlatform = "TikTok"
	DefaultTone     = "Funny"
	DefaultNiche    = "General"
)

// TextGenerator produces free-form text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator builds plans and briefs. A nil TextGenerator is allowed and
// yields fallback content only.
type Generator struct {
	gen TextGenerator
	log *zap.Logger
}

// New returns a Generator backed by gen.
func New(gen TextGenerator, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{gen: gen, log: log}
}

// PlanRequest describes the creator profile a weekly plan is built for.
type PlanRequest struct {
	Niche    string
	Platform string
	Tone     string
}

// BriefRequest describes the video a content brief is prepared for.
// Prefill carries a plan idea whose hook and posting time seed the brief
// when the model does not supply its own.
type BriefRequest struct {
	Topic       string
	Niche       string
	Description string
	Prefill     *models.Idea
}

// WeeklyPlan generates a Monday-to-Friday content plan. The top trends in
// the payload give the model context; when the model output cannot be
// parsed as at least five ideas, the fallback ideas are used instead.
func (g *Generator) WeeklyPlan(ctx context.Context, req PlanRequest, trends models.Payload) (*models.WeeklyPlan, error) {
	niche := strings.TrimSpace(req.Niche)
	if niche == "" {
		return nil, errors.New("planner: niche is required")
	}
	platform := req.Platform
	if platform == "" {
		platform = DefaultPlatform
	}
	tone := req.Tone
	if tone == "" {
		tone = DefaultTone
	}

	names := trends.TrendNames(5)
	trendsContext := "general viral content"
	if len(names) > 0 {
		trendsContext = strings.Join(names, ", ")
	}

	ideas := fallbackIdeas(niche, platform, tone, names)
	if g.gen != nil {
		raw, err := g.gen.Generate(ctx, weekPrompt(niche, platform, tone, trendsContext))
		switch {
		case err != nil:
			g.log.Warn("plan generation failed, using fallback ideas", zap.Error(err))
		default:
			parsed, ok := parseIdeas(raw)
			if ok {
				ideas = parsed
			} else {
				g.log.Warn("plan output was not usable json, using fallback ideas")
			}
		}
	}

	return &models.WeeklyPlan{
		Ideas:       ideas,
		Niche:       niche,
		Platform:    platform,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// ContentBrief generates a brief for one topic. Model output is merged
// over the fallback sections so missing fields are always filled.
func (g *Generator) ContentBrief(ctx context.Context, req BriefRequest) (*models.Brief, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, errors.New("planner: topic is required")
	}
	niche := strings.TrimSpace(req.Niche)
	if niche == "" {
		niche = DefaultNiche
	}

	sections := fallbackSections(topic, niche, req.Prefill)
	if g.gen != nil {
		raw, err := g.gen.Generate(ctx, briefPrompt(topic, niche, req.Description))
		switch {
		case err != nil:
			g.log.Warn("brief generation failed, using fallback sections", zap.Error(err))
		default:
			parsed, ok := parseSections(raw)
			if ok {
				sections = mergeSections(sections, parsed)
			} else {
				g.log.Warn("brief output was not usable json, using fallback sections")
			}
		}
	}

	return &models.Brief{
		TrendName:    topic,
		Niche:        niche,
		PreparedDate: time.Now().Format("2006-01-02"),
		Description:  req.Description,
		Sections:     sections,
	}, nil
}

func weekPrompt(niche, platform, tone, trends string) string {
	return fmt.Sprintf(`Generate 5 content ideas for a %s creator on %s with a %s tone.

Current trending topics: %s

For each day (Monday-Friday), provide:
1. A specific video idea (1 sentence)
2. An engaging hook (first line to capture attention)
3. 3 relevant hashtags
4. Difficulty level (Easy/Medium/Hard)
5. Best posting time in UTC

Format as JSON array with keys: day, trend, video_idea, hook, hashtags (array), difficulty, best_time
Return ONLY valid JSON, no markdown.`, niche, platform, tone, trends)
}

func briefPrompt(topic, niche, description string) string {
	return fmt.Sprintf(`Create a professional content brief for a creator making a video about %q in the %s niche.

Include:
1. Why This Trend (2-3 sentences on why it's relevant now)
2. What To Create:
   - Video format recommendation
   - Suggested length
   - Hook copy (attention-grabbing first line)
   - Best posting time
3. Hashtag Strategy:
   - 4 safe hashtags (mid competition)
   - 4 aggressive hashtags (high reach)
   - 3 hidden gem hashtags (low competition)

Additional context: %s

Format as JSON with keys: why_this_trend, format, length, hook_copy, best_time, safe_hashtags, aggressive_hashtags, gem_hashtags
Return ONLY valid JSON, no markdown.`, topic, niche, description)
}

// parseIdeas decodes model output into plan ideas. It requires at least
// five entries and keeps only the first five.
func parseIdeas(raw string) ([]models.Idea, bool) {
	var ideas []models.Idea
	if err := json.Unmarshal([]byte(stripFences(raw)), &ideas); err != nil {
		return nil, false
	}
	if len(ideas) < 5 {
		return nil, false
	}
	return ideas[:5], true
}

func parseSections(raw string) (models.BriefSections, bool) {
	var s models.BriefSections
	if err := json.Unmarshal([]byte(stripFences(raw)), &s); err != nil {
		return models.BriefSections{}, false
	}
	return s, true
}

// stripFences unwraps a ```json fenced block when the output starts with
// one. Models often fence JSON despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	body := strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(body)
}

func fallbackIdeas(niche, platform, tone string, trends []string) []models.Idea {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	difficulties := []string{"Easy", "Medium", "Hard"}
	ideas := make([]models.Idea, 0, len(days))
	for i, day := range days {
		trend := fmt.Sprintf("%s tips", niche)
		if i < len(trends) {
			trend = trends[i]
		}
		ideas = append(ideas, models.Idea{
			Day:        day,
			Trend:      trend,
			VideoIdea:  fmt.Sprintf("Create a %s %s video about %s", strings.ToLower(tone), platform, trend),
			Hook:       fmt.Sprintf("POV: You just discovered %s...", trend),
			Hashtags:   []string{"#fyp", "#viral", "#" + compact(niche)},
			Difficulty: difficulties[i%3],
			BestTime:   fmt.Sprintf("%d:00 UTC", 14+i%4),
		})
	}
	return ideas
}

func fallbackSections(topic, niche string, prefill *models.Idea) models.BriefSections {
	s := models.BriefSections{
		WhyThisTrend:       fmt.Sprintf("The %s trend is gaining momentum and presents a timely opportunity for creators in the %s space.", topic, niche),
		Format:             "Vertical video, fast-paced editing",
		Length:             "30-60 seconds",
		HookCopy:           fmt.Sprintf("Wait... is this really %s? 🤯", topic),
		BestTime:           "2-4 PM UTC",
		SafeHashtags:       []string{"#fyp", "#viral", "#trending", "#foryou"},
		AggressiveHashtags: []string{"#fyp", "#foryou", "#explore", "#viral"},
		GemHashtags:        []string{"#newtrend", "#underrated", "#mustwatch"},
	}
	if prefill != nil {
		if prefill.Hook != "" {
			s.HookCopy = prefill.Hook
		}
		if prefill.BestTime != "" {
			s.BestTime = prefill.BestTime
		}
	}
	return s
}

// mergeSections fills every field the model left empty from the fallback.
func mergeSections(fallback, parsed models.BriefSections) models.BriefSections {
	if parsed.WhyThisTrend == "" {
		parsed.WhyThisTrend = fallback.WhyThisTrend
	}
	if parsed.Format == "" {
		parsed.Format = fallback.Format
	}
	if parsed.Length == "" {
		parsed.Length = fallback.Length
	}
	if parsed.HookCopy == "" {
		parsed.HookCopy = fallback.HookCopy
	}
	if parsed.BestTime == "" {
		parsed.BestTime = fallback.BestTime
	}
	if len(parsed.SafeHashtags) == 0 {
		parsed.SafeHashtags = fallback.SafeHashtags
	}
	if len(parsed.AggressiveHashtags) == 0 {
		parsed.AggressiveHashtags = fallback.AggressiveHashtags
	}
	if len(parsed.GemHashtags) == 0 {
		parsed.GemHashtags = fallback.GemHashtags
	}
	return parsed
}

func compact(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
