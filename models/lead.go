package models

import "time"

const (
	KindPost    = "post"
	KindComment = "comment"

	// DeletedAuthor replaces missing or removed author handles.
	DeletedAuthor = "[deleted]"
)

// Lead is the canonical record flowing through the pipeline: one post or
// comment that may express purchase intent. A Lead is created by the
// normalizer, deduplicated, scored exactly once, and read-only after that.
type Lead struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Subreddit    string    `json:"subreddit"`
	Author       string    `json:"author"`
	Title        string    `json:"title,omitempty"`
	Body         string    `json:"body"`
	URL          string    `json:"url"`
	Upvotes      int       `json:"upvotes"`
	CreatedAt    time.Time `json:"created_at"`
	QueryMatched []string  `json:"query_matched"`

	IntentScore   float64  `json:"intent_score"`
	IntentSignals []string `json:"intent_signals"`
}
