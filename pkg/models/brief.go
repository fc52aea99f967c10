package models

// BriefSections holds the structured parts of a content brief. Fields left
// empty by the generator keep their fallback values when briefs are merged.
type BriefSections struct {
	WhyThisTrend       string   `json:"why_this_trend"`
	Format             string   `json:"format"`
	Length             string   `json:"length"`
	HookCopy           string   `json:"hook_copy"`
	BestTime           string   `json:"best_time"`
	SafeHashtags       []string `json:"safe_hashtags"`
	AggressiveHashtags []string `json:"aggressive_hashtags"`
	GemHashtags        []string `json:"gem_hashtags"`
}

// Brief is a production-ready content brief for a single trend or topic.
type Brief struct {
	TrendName    string        `json:"trend_name"`
	Niche        string        `json:"niche"`
	PreparedDate string        `json:"prepared_date"`
	Description  string        `json:"description,omitempty"`
	Sections     BriefSections `json:"sections"`
}
