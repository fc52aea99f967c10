package models

import (
	"sort"
	"strings"
)

// Params holds optional fetch parameters such as a result limit or niche filter.
type Params map[string]string

// Normalize returns the canonical query form of p: keys and values trimmed
// and lower-cased, pairs sorted by key and joined as key=value with "&".
// Pairs with an empty key or value are dropped, so a nil map and
// {"niche": ""} produce the same form.
func (p Params) Normalize() string {
	if len(p) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// Value returns the trimmed parameter for key, or fallback when absent or empty.
func (p Params) Value(key, fallback string) string {
	if v := strings.TrimSpace(p[key]); v != "" {
		return v
	}
	return fallback
}

// FetchKey identifies one cacheable fetch: a resource kind plus the
// normalized parameter form. Requests that differ only in parameter order,
// whitespace or letter case map to the same key.
type FetchKey struct {
	Kind  ResourceKind `json:"kind"`
	Query string       `json:"query,omitempty"`
}

// NewFetchKey builds the cache key for kind with the given parameters.
func NewFetchKey(kind ResourceKind, params Params) FetchKey {
	return FetchKey{Kind: kind, Query: params.Normalize()}
}

// String renders the key in kind?query form for logs and storage.
func (k FetchKey) String() string {
	if k.Query == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "?" + k.Query
}
