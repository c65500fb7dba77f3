package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

const (
	maxPostBodyRunes    = 2000
	maxCommentBodyRunes = 1500
)

// ErrMalformed marks a raw result missing the fields the pipeline cannot work
// without. Callers skip and log these, they are never fatal.
var ErrMalformed = errors.New("malformed result")

// FromPost converts a raw post payload into a canonical Lead. The body is the
// title and selftext joined, since intent often lives in either.
func FromPost(item models.RedditItem, query string) (models.Lead, error) {
	if item.ID == "" || item.CreatedUTC == 0 {
		return models.Lead{}, fmt.Errorf("%w: post missing id or created_utc", ErrMalformed)
	}

	title := strings.TrimSpace(item.Title)
	selftext := strings.TrimSpace(item.Selftext)
	body := strings.TrimSpace(title + "\n\n" + selftext)

	return models.Lead{
		ID:           item.ID,
		Kind:         models.KindPost,
		Subreddit:    item.Subreddit,
		Author:       normalizeAuthor(item.Author),
		Title:        title,
		Body:         truncateRunes(body, maxPostBodyRunes),
		URL:          permalinkURL(item.Permalink, item.URL),
		Upvotes:      item.Score,
		CreatedAt:    time.Unix(int64(item.CreatedUTC), 0).UTC(),
		QueryMatched: []string{query},
	}, nil
}

// FromComment converts a raw comment payload into a canonical Lead. The
// subreddit and query are inherited from the post the comment was found under.
func FromComment(item models.RedditItem, subreddit, query string) (models.Lead, error) {
	if item.ID == "" || item.CreatedUTC == 0 {
		return models.Lead{}, fmt.Errorf("%w: comment missing id or created_utc", ErrMalformed)
	}

	return models.Lead{
		ID:           item.ID,
		Kind:         models.KindComment,
		Subreddit:    subreddit,
		Author:       normalizeAuthor(item.Author),
		Body:         truncateRunes(strings.TrimSpace(item.Body), maxCommentBodyRunes),
		URL:          commentURL(subreddit, item.LinkID, item.ID),
		Upvotes:      item.Score,
		CreatedAt:    time.Unix(int64(item.CreatedUTC), 0).UTC(),
		QueryMatched: []string{query},
	}, nil
}

// FilterWindow drops leads created before the cutoff. The fetcher already
// stops paginating past the window, but comments and cached pages can still
// carry older items.
func FilterWindow(in []models.Lead, cutoff time.Time) []models.Lead {
	out := make([]models.Lead, 0, len(in))
	for _, l := range in {
		if l.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func normalizeAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" || author == "[deleted]" || author == "[removed]" {
		return models.DeletedAuthor
	}
	return author
}

func permalinkURL(permalink, fallback string) string {
	if permalink != "" {
		return "https://www.reddit.com" + permalink
	}
	return fallback
}

func commentURL(subreddit, linkID, commentID string) string {
	if subreddit == "" || commentID == "" {
		return ""
	}
	postID := strings.TrimPrefix(linkID, "t3_")
	if postID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/_/%s", subreddit, postID, commentID)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
