package models

// ResourceKind identifies a fetchable resource category.
type ResourceKind string

const (
	// KindTrends is the curated trend digest.
	KindTrends ResourceKind = "trends"
	// KindHashtags is hashtag performance statistics.
	KindHashtags ResourceKind = "hashtags"
	// KindVideos is the trending video digest.
	KindVideos ResourceKind = "videos"
	// KindNiches is the niche category listing.
	KindNiches ResourceKind = "niches"
)

// AllKinds returns every resource kind in display order.
func AllKinds() []ResourceKind {
	return []ResourceKind{KindTrends, KindHashtags, KindVideos, KindNiches}
}

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindTrends, KindHashtags, KindVideos, KindNiches:
		return true
	}
	return false
}
