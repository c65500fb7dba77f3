package models

import "encoding/json"

// RedditListing is one page of Reddit's listing API. The same envelope wraps
// search results and comment trees.
type RedditListing struct {
	Data struct {
		After    string        `json:"after"`
		Children []RedditThing `json:"children"`
	} `json:"data"`
}

// RedditThing is a kind-tagged child. Kind "t3" is a post, "t1" a comment,
// "more" a collapsed continuation stub.
type RedditThing struct {
	Kind string     `json:"kind"`
	Data RedditItem `json:"data"`
}

// RedditItem covers both post and comment payloads. Posts use Title/Selftext,
// comments use Body; the Kind discriminant on the parent tells them apart.
type RedditItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Selftext   string          `json:"selftext"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Subreddit  string          `json:"subreddit"`
	Permalink  string          `json:"permalink"`
	URL        string          `json:"url"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	LinkID     string          `json:"link_id"`
	Replies    json.RawMessage `json:"replies"`
}

// ReplyListing decodes the Replies field, which Reddit sends as either an
// empty string or a nested listing.
func (i RedditItem) ReplyListing() (*RedditListing, bool) {
	if len(i.Replies) == 0 || string(i.Replies) == `""` {
		return nil, false
	}
	var listing RedditListing
	if err := json.Unmarshal(i.Replies, &listing); err != nil {
		return nil, false
	}
	return &listing, true
}
