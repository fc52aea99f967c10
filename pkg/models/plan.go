package models

import "time"

// Idea is one day's content idea inside a weekly plan.
type Idea struct {
	Day        string   `json:"day"`
	Trend      string   `json:"trend"`
	VideoIdea  string   `json:"video_idea"`
	Hook       string   `json:"hook"`
	Hashtags   []string `json:"hashtags"`
	Difficulty string   `json:"difficulty"`
	BestTime   string   `json:"best_time"`
}

// WeeklyPlan is a five-day content schedule generated for a niche.
type WeeklyPlan struct {
	Ideas       []Idea    `json:"ideas"`
	Niche       string    `json:"niche"`
	Platform    string    `json:"platform"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}
