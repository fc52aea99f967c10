package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/contentcompass/compass/pkg/audit"
	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/planner"
	"github.com/contentcompass/compass/pkg/session"
)

// Tool argument structs.

type fetchArgs struct {
	Kind    string `json:"kind"`
	Limit   int    `json:"limit"`
	Niche   string `json:"niche"`
	OrderBy string `json:"order_by"`
	Force   bool   `json:"force"`
}

type cacheArgs struct {
	Action string `json:"action"`
}

type planArgs struct {
	Niche    string `json:"niche"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
}

type briefArgs struct {
	Topic       string `json:"topic"`
	Niche       string `json:"niche"`
	Description string `json:"description"`
}

type activityArgs struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Limit  int    `json:"limit"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"compass_fetch":    handleFetch,
	"compass_credits":  handleCredits,
	"compass_cache":    handleCache,
	"compass_plan":     handlePlan,
	"compass_brief":    handleBrief,
	"compass_activity": handleActivity,
	"compass_status":   handleStatus,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "compass_fetch",
		Description: "Fetch trend data (trends, hashtags, videos or niches). Cache hits are free; live fetches spend session credits.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"kind"},
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"description": "Resource kind: trends, hashtags, videos or niches",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Max rows to fetch (optional, hashtags and videos only)",
				},
				"niche": map[string]any{
					"type":        "string",
					"description": "Niche filter for videos (optional)",
				},
				"order_by": map[string]any{
					"type":        "string",
					"description": "Sort column for hashtags, e.g. views or count (optional)",
				},
				"force": map[string]any{
					"type":        "boolean",
					"description": "Bypass the cache and re-fetch, re-charging in live mode (optional)",
				},
			},
		},
	},
	{
		Name:        "compass_credits",
		Description: "Show credits spent this session, the charge history and the price of each resource kind.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "compass_cache",
		Description: "Inspect or clear the session payload cache.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"description": "stats (default) or clear",
				},
			},
		},
	},
	{
		Name:        "compass_plan",
		Description: "Generate a Monday-to-Friday content plan for a niche, using current trends as context.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"niche"},
			"properties": map[string]any{
				"niche": map[string]any{
					"type":        "string",
					"description": "Creator niche, e.g. Cooking or Tech",
				},
				"platform": map[string]any{
					"type":        "string",
					"description": "TikTok, YouTube Shorts or Instagram Reels (optional, default TikTok)",
				},
				"tone": map[string]any{
					"type":        "string",
					"description": "Funny, Educational, Dramatic or Inspirational (optional, default Funny)",
				},
			},
		},
	},
	{
		Name:        "compass_brief",
		Description: "Generate a professional content brief for one topic or trend.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"topic"},
			"properties": map[string]any{
				"topic": map[string]any{
					"type":        "string",
					"description": "Topic or trend the video is about",
				},
				"niche": map[string]any{
					"type":        "string",
					"description": "Creator niche (optional, default General)",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Extra context about the trend or idea (optional)",
				},
			},
		},
	},
	{
		Name:        "compass_activity",
		Description: "Show recent fetch activity with source and cost, optionally filtered.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"description": "Filter by resource kind (optional)",
				},
				"source": map[string]any{
					"type":        "string",
					"description": "Filter by source: live, cache, fixture or disabled (optional)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Max events to return (optional, default 50)",
				},
			},
		},
	},
	{
		Name:        "compass_status",
		Description: "Show session mode, credential state, credits spent and cache statistics.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func handleFetch(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args fetchArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	kind := models.ResourceKind(args.Kind)
	if !kind.Valid() {
		return errorResult(fmt.Sprintf("unknown kind %q (use trends, hashtags, videos or niches)", args.Kind))
	}

	params := models.Params{}
	if args.Limit > 0 {
		params["limit"] = strconv.Itoa(args.Limit)
	}
	if args.Niche != "" {
		params["niche"] = args.Niche
	}
	if args.OrderBy != "" {
		params["order_by"] = args.OrderBy
	}

	before := s.sess.CreditsUsed()
	payload, err := s.sess.Fetch(ctx, kind, params, args.Force)
	if err != nil {
		var ferr *session.FetchError
		if errors.As(err, &ferr) && ferr.LastKnown != nil {
			text, ferr2 := formatPayload(kind, ferr.LastKnown.Payload)
			if ferr2 == nil {
				return textResult(fmt.Sprintf("Live fetch failed: %v\nShowing last cached data from %s.\n\n%s",
					ferr.Err, ferr.LastKnown.FetchedAt.Format("2006-01-02 15:04:05"), text))
			}
		}
		return errorResult("Error fetching " + string(kind) + ": " + err.Error())
	}

	text, err := formatPayload(kind, payload)
	if err != nil {
		return errorResult("Error decoding " + string(kind) + ": " + err.Error())
	}
	cost := s.sess.CreditsUsed() - before
	return textResult(fmt.Sprintf("%s\nCost: %d credits (session total %d)", text, cost, s.sess.CreditsUsed()))
}

func handleCredits(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatCredits(s.sess.CreditsUsed(), s.sess.History()))
}

func handleCache(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args cacheArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	switch args.Action {
	case "", "stats":
		return textResult(formatCacheStats(s.sess.CacheStats()))
	case "clear":
		s.sess.InvalidateCache()
		return textResult("All cache entries cleared.")
	default:
		return errorResult(fmt.Sprintf("unknown action %q (use stats or clear)", args.Action))
	}
}

func handlePlan(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.gen == nil {
		return textResult("Plan generation is not configured.")
	}
	var args planArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Niche == "" {
		return errorResult("niche is required")
	}

	trends, err := s.sess.Fetch(ctx, models.KindTrends, nil, false)
	if err != nil {
		// Plans degrade gracefully without trend context.
		trends = models.EmptyPayload()
	}

	plan, err := s.gen.WeeklyPlan(ctx, planner.PlanRequest{
		Niche:    args.Niche,
		Platform: args.Platform,
		Tone:     args.Tone,
	}, trends)
	if err != nil {
		return errorResult("Error generating plan: " + err.Error())
	}
	s.sess.SetPlan(plan)
	return textResult(formatPlan(plan))
}

func handleBrief(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.gen == nil {
		return textResult("Brief generation is not configured.")
	}
	var args briefArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Topic == "" {
		return errorResult("topic is required")
	}

	req := planner.BriefRequest{
		Topic:       args.Topic,
		Niche:       args.Niche,
		Description: args.Description,
	}
	// A stored plan idea for the same trend seeds the brief's hook, posting
	// time and description.
	if plan := s.sess.Plan(); plan != nil {
		for i := range plan.Ideas {
			if strings.EqualFold(plan.Ideas[i].Trend, strings.TrimSpace(args.Topic)) {
				req.Prefill = &plan.Ideas[i]
				if req.Niche == "" {
					req.Niche = plan.Niche
				}
				if req.Description == "" {
					req.Description = plan.Ideas[i].VideoIdea
				}
				break
			}
		}
	}

	brief, err := s.gen.ContentBrief(ctx, req)
	if err != nil {
		return errorResult("Error generating brief: " + err.Error())
	}
	s.sess.SetBrief(brief)
	return textResult(formatBrief(brief))
}

func handleActivity(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.activity == nil {
		return textResult("Activity logging is not configured.")
	}
	var args activityArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	events, err := s.activity.Query(ctx, audit.QueryOpts{
		Kind:   args.Kind,
		Source: args.Source,
		Limit:  args.Limit,
	})
	if err != nil {
		return errorResult("Error querying activity: " + err.Error())
	}
	return textResult(formatEvents(events))
}

func handleStatus(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatStatus(s.sess))
}
