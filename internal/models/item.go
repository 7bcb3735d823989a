package models

import "time"

// SourceKind identifies which class of fetcher produced an item.
type SourceKind string

const (
	SourceKindForum  SourceKind = "forum"
	SourceKindSearch SourceKind = "search"
)

// Engagement holds forum interaction counts. Search items carry zeros.
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
}

// Score returns the weighted engagement value used for dedup survivor
// selection and selector tie-breaking. Comments weigh double because a
// comment is a stronger relevance signal than a vote.
func (e Engagement) Score() float64 {
	return float64(e.Upvotes) + float64(e.Comments)*2
}

// RawItem is one post or article as emitted by a fetcher. Body is plain
// text; fetchers strip HTML at the boundary.
type RawItem struct {
	SourceKind       SourceKind `json:"source_kind"`
	SourceSubchannel string     `json:"source_subchannel"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	URL              string     `json:"url"`
	PostedAt         time.Time  `json:"posted_at"`
	Engagement       Engagement `json:"engagement"`
	ContentHash      string     `json:"content_hash"`
}
