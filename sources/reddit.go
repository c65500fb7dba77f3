package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	neturl "net/url"
	"strconv"
	"time"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

const (
	searchPageSize  = 100
	commentPageSize = 500

	defaultUserAgent = "rilf/0.1 (lead research cli)"
)

var (
	// ErrThrottled is Reddit telling us to slow down (HTTP 429).
	ErrThrottled = errors.New("throttled")

	// ErrTransient covers network failures and 5xx responses worth retrying.
	ErrTransient = errors.New("transient network error")
)

// PageCache replays previously fetched pages so repeated runs don't hammer
// the API. A nil cache disables replay.
type PageCache interface {
	Get(url string) ([]byte, bool)
	Put(url string, body []byte)
}

// SearcherConfig tunes politeness and retry behavior. Zero values fall back
// to defaults.
type SearcherConfig struct {
	UserAgent           string
	PoliteDelay         time.Duration
	MaxThrottleRetries  int
	MaxTransientRetries int
	BackoffCap          time.Duration
}

// Searcher issues paginated search and comment requests against Reddit's
// public read endpoint. It knows nothing about content semantics; it returns
// raw items and lets the pipeline decide what they mean.
type Searcher struct {
	logger *slog.Logger
	client *http.Client
	pacer  *Pacer
	cache  PageCache

	userAgent           string
	maxThrottleRetries  int
	maxTransientRetries int
	backoffBase         time.Duration
	backoffCap          time.Duration

	sleep func(time.Duration)
}

func NewSearcher(logger *slog.Logger, client *http.Client, cache PageCache, cfg SearcherConfig) *Searcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.PoliteDelay <= 0 {
		cfg.PoliteDelay = 1200 * time.Millisecond
	}
	if cfg.MaxThrottleRetries <= 0 {
		cfg.MaxThrottleRetries = 4
	}
	if cfg.MaxTransientRetries <= 0 {
		cfg.MaxTransientRetries = 2
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = 60 * time.Second
	}

	return &Searcher{
		logger:              logger,
		client:              client,
		pacer:               NewPacer(cfg.PoliteDelay),
		cache:               cache,
		userAgent:           cfg.UserAgent,
		maxThrottleRetries:  cfg.MaxThrottleRetries,
		maxTransientRetries: cfg.MaxTransientRetries,
		backoffBase:         cfg.PoliteDelay * 5,
		backoffCap:          cfg.BackoffCap,
		sleep:               time.Sleep,
	}
}

// SearchPosts pages through a subreddit's search results for one query,
// newest first, and returns raw items created at or after cutoff, up to max.
// Pagination stops on an empty page, a missing cursor, the max budget, or
// once a whole page falls outside the window (search results are
// time-ordered, so later pages only get older).
func (s *Searcher) SearchPosts(ctx context.Context, query, subreddit string, cutoff time.Time, max int) ([]models.RedditItem, error) {
	var out []models.RedditItem
	after := ""

	for max <= 0 || len(out) < max {
		params := neturl.Values{}
		params.Set("q", query)
		params.Set("restrict_sr", "1")
		params.Set("sort", "new")
		params.Set("t", "all")
		params.Set("limit", strconv.Itoa(searchPageSize))
		if after != "" {
			params.Set("after", after)
		}
		url := fmt.Sprintf("https://www.reddit.com/r/%s/search.json?%s", subreddit, params.Encode())

		var listing models.RedditListing
		if err := s.fetchJSON(ctx, url, &listing); err != nil {
			return out, err
		}

		if len(listing.Data.Children) == 0 {
			break
		}

		inWindow := 0
		for _, child := range listing.Data.Children {
			item := child.Data
			created := time.Unix(int64(item.CreatedUTC), 0).UTC()
			if created.Before(cutoff) {
				continue
			}
			inWindow++
			out = append(out, item)
			if max > 0 && len(out) >= max {
				break
			}
		}

		if inWindow == 0 {
			// Every result on this page is older than the window.
			break
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}

	return out, nil
}

// FetchComments retrieves up to max comments under a post, walking the reply
// tree depth-first. Collapsed "more" stubs are not expanded.
func (s *Searcher) FetchComments(ctx context.Context, permalink string, max int) ([]models.RedditItem, error) {
	url := fmt.Sprintf("https://www.reddit.com%s.json?limit=%d", permalink, commentPageSize)

	// The permalink endpoint returns two listings: the post, then the tree.
	var listings []models.RedditListing
	if err := s.fetchJSON(ctx, url, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var out []models.RedditItem
	s.walkComments(listings[1].Data.Children, max, &out)
	return out, nil
}

func (s *Searcher) walkComments(children []models.RedditThing, max int, out *[]models.RedditItem) {
	for _, child := range children {
		if len(*out) >= max {
			return
		}
		if child.Kind != "t1" {
			continue
		}
		if child.Data.Body != "" {
			*out = append(*out, child.Data)
		}
		if replies, ok := child.Data.ReplyListing(); ok {
			s.walkComments(replies.Data.Children, max, out)
		}
	}
}

// fetchJSON gets one URL with pacing, retry and caching. Throttling and
// transient failures are retried with capped exponential backoff and jitter;
// exhausting the retry budget surfaces the sentinel so the caller can abandon
// the query/subreddit pair without killing the run.
func (s *Searcher) fetchJSON(ctx context.Context, url string, dest any) error {
	if s.cache != nil {
		if body, ok := s.cache.Get(url); ok {
			return json.Unmarshal(body, dest)
		}
	}

	throttleAttempts := 0
	transientAttempts := 0

	for {
		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}

		body, err := s.fetchOnce(ctx, url)
		if err == nil {
			if s.cache != nil {
				s.cache.Put(url, body)
			}
			return json.Unmarshal(body, dest)
		}

		var attempt int
		switch {
		case errors.Is(err, ErrThrottled):
			throttleAttempts++
			if throttleAttempts > s.maxThrottleRetries {
				return err
			}
			attempt = throttleAttempts
		case errors.Is(err, ErrTransient):
			transientAttempts++
			if transientAttempts > s.maxTransientRetries {
				return err
			}
			attempt = transientAttempts
		default:
			return err
		}

		delay := s.backoffDelay(attempt)
		s.logger.Warn("retrying request", "url", url, "attempt", attempt, "delay", delay.String(), "error", err)
		s.sleep(delay)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Searcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrThrottled, url)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("reddit returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// backoffDelay doubles per attempt from 5x the polite delay, capped, plus up
// to a quarter of jitter so synchronized clients don't reconverge. Jitter
// stays below the next doubling, so successive delays always grow.
func (s *Searcher) backoffDelay(attempt int) time.Duration {
	delay := s.backoffBase << (attempt - 1)
	if delay > s.backoffCap {
		delay = s.backoffCap
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)+1))
}
