package models

import (
	"encoding/json"
	"fmt"
)

// Payload is the envelope every resource endpoint returns: a result count
// plus the raw data array. Data is kept unparsed so the cache and snapshot
// store payloads byte for byte.
type Payload struct {
	Results int             `json:"results"`
	Data    json.RawMessage `json:"data"`
}

// EmptyPayload returns the zero-result envelope served for disabled endpoints.
func EmptyPayload() Payload {
	return Payload{Results: 0, Data: json.RawMessage(`[]`)}
}

// TrendGroup is one dated batch of trends in a trend digest payload.
type TrendGroup struct {
	Date   string       `json:"date,omitempty"`
	Trends []TrendEntry `json:"trends"`
}

// TrendEntry is a ranked trend inside a trend group.
type TrendEntry struct {
	Trend   TrendInfo `json:"trend"`
	Ranking int       `json:"ranking,omitempty"`
}

// TrendInfo carries the display fields of a single trend.
type TrendInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// HashtagStat is one row of a hashtag statistics payload.
type HashtagStat struct {
	Hashtag    string `json:"hashtag"`
	Count      int64  `json:"count"`
	TotalViews int64  `json:"total_views"`
}

// VideoStat is one row of a video digest payload.
type VideoStat struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Views       int64    `json:"views"`
	Duration    int      `json:"duration"`
	Hashtags    []string `json:"hashtags,omitempty"`
	URL         string   `json:"url,omitempty"`
	ExternalID  string   `json:"external_id,omitempty"`
}

// NicheInfo is one row of a niche listing payload.
type NicheInfo struct {
	Name     string `json:"name"`
	Videos   int64  `json:"videos"`
	AvgViews int64  `json:"avg_views"`
}

// TrendGroups decodes a trend digest payload.
func (p Payload) TrendGroups() ([]TrendGroup, error) {
	var groups []TrendGroup
	if err := json.Unmarshal(p.Data, &groups); err != nil {
		return nil, fmt.Errorf("decode trend groups: %w", err)
	}
	return groups, nil
}

// TrendNames returns up to limit trend names from the first trend group.
// Payloads that do not decode as trend groups yield an empty slice.
func (p Payload) TrendNames(limit int) []string {
	groups, err := p.TrendGroups()
	if err != nil || len(groups) == 0 {
		return nil
	}
	names := make([]string, 0, limit)
	for _, entry := range groups[0].Trends {
		if entry.Trend.Name == "" {
			continue
		}
		names = append(names, entry.Trend.Name)
		if len(names) == limit {
			break
		}
	}
	return names
}

// Hashtags decodes a hashtag statistics payload.
func (p Payload) Hashtags() ([]HashtagStat, error) {
	var stats []HashtagStat
	if err := json.Unmarshal(p.Data, &stats); err != nil {
		return nil, fmt.Errorf("decode hashtags: %w", err)
	}
	return stats, nil
}

// Videos decodes a video digest payload.
func (p Payload) Videos() ([]VideoStat, error) {
	var videos []VideoStat
	if err := json.Unmarshal(p.Data, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// Niches decodes a niche listing payload.
func (p Payload) Niches() ([]NicheInfo, error) {
	var niches []NicheInfo
	if err := json.Unmarshal(p.Data, &niches); err != nil {
		return nil, fmt.Errorf("decode niches: %w", err)
	}
	return niches, nil
}
