package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSearcher points the searcher at a local server by rewriting the host
// of every outgoing request.
func newTestSearcher(t *testing.T, srv *httptest.Server, cfg SearcherConfig) (*Searcher, *[]time.Duration) {
	t.Helper()
	if cfg.PoliteDelay == 0 {
		cfg.PoliteDelay = time.Millisecond
	}

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: rewriteTransport{target: srv.URL},
	}

	s := NewSearcher(testLogger(), client, nil, cfg)

	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	return s, &slept
}

type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u := rt.target + req.URL.Path
	if req.URL.RawQuery != "" {
		u += "?" + req.URL.RawQuery
	}
	redirected, err := http.NewRequestWithContext(req.Context(), req.Method, u, nil)
	if err != nil {
		return nil, err
	}
	redirected.Header = req.Header
	return http.DefaultTransport.RoundTrip(redirected)
}

func searchPage(after string, items ...models.RedditItem) string {
	listing := models.RedditListing{}
	listing.Data.After = after
	for _, item := range items {
		listing.Data.Children = append(listing.Data.Children, models.RedditThing{Kind: "t3", Data: item})
	}
	b, _ := json.Marshal(listing)
	return string(b)
}

func post(id string, createdUTC int64) models.RedditItem {
	return models.RedditItem{ID: id, Subreddit: "SaaS", CreatedUTC: float64(createdUTC)}
}

func TestSearchPosts_SinglePage(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/SaaS/search.json", r.URL.Path)
		assert.Equal(t, "crm alternative", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
		assert.Equal(t, "new", r.URL.Query().Get("sort"))
		fmt.Fprint(w, searchPage("", post("a", now.Unix()), post("b", now.Unix()-60)))
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	items, err := s.SearchPosts(context.Background(), "crm alternative", "SaaS", now.Add(-24*time.Hour), 10)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
}

func TestSearchPosts_PaginatesUntilEmptyCursor(t *testing.T) {
	now := time.Now().UTC()
	pages := []string{
		searchPage("t3_a", post("a", now.Unix())),
		searchPage("", post("b", now.Unix())),
	}
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls == 1 {
			assert.Equal(t, "t3_a", r.URL.Query().Get("after"))
		}
		fmt.Fprint(w, pages[calls])
		calls++
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	items, err := s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-time.Hour), 10)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, items, 2)
}

func TestSearchPosts_StopsAtLimit(t *testing.T) {
	now := time.Now().UTC()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, searchPage("more", post("a", now.Unix()), post("b", now.Unix()), post("c", now.Unix())))
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	items, err := s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-time.Hour), 2)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, items, 2)
}

func TestSearchPosts_StopsPastWindow(t *testing.T) {
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour).Unix()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Every item is older than the cutoff; the cursor still advertises more.
		fmt.Fprint(w, searchPage("more", post("old1", old), post("old2", old)))
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	items, err := s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-24*time.Hour), 10)

	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, calls, "should abandon pagination once results fall outside the window")
}

func TestFetchJSON_BackoffOnThrottle(t *testing.T) {
	now := time.Now().UTC()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, searchPage("", post("a", now.Unix())))
	}))
	defer srv.Close()

	s, slept := newTestSearcher(t, srv, SearcherConfig{MaxThrottleRetries: 4})
	items, err := s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-time.Hour), 10)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 4, calls)
	assert.Len(t, *slept, 3, "three throttles mean three backoff delays")
	for i := 1; i < len(*slept); i++ {
		assert.Greater(t, (*slept)[i], (*slept)[i-1], "backoff delays must increase")
	}
}

func TestFetchJSON_ThrottleRetriesExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, slept := newTestSearcher(t, srv, SearcherConfig{MaxThrottleRetries: 2})
	_, err := s.SearchPosts(context.Background(), "q", "SaaS", time.Now().Add(-time.Hour), 10)

	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
	assert.Len(t, *slept, 2)
}

func TestFetchJSON_TransientSmallerRetryBudget(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{MaxTransientRetries: 2})
	_, err := s.SearchPosts(context.Background(), "q", "SaaS", time.Now().Add(-time.Hour), 10)

	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestFetchJSON_NonRetryableStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	_, err := s.SearchPosts(context.Background(), "q", "SaaS", time.Now().Add(-time.Hour), 10)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrThrottled)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, 1, calls)
}

func TestFetchJSON_UsesCache(t *testing.T) {
	now := time.Now().UTC()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, searchPage("", post("a", now.Unix())))
	}))
	defer srv.Close()

	cache := &memCache{pages: map[string][]byte{}}
	client := &http.Client{Transport: rewriteTransport{target: srv.URL}}
	s := NewSearcher(testLogger(), client, cache, SearcherConfig{PoliteDelay: time.Millisecond})

	_, err := s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-time.Hour), 10)
	assert.NoError(t, err)
	_, err = s.SearchPosts(context.Background(), "q", "SaaS", now.Add(-time.Hour), 10)
	assert.NoError(t, err)

	assert.Equal(t, 1, calls, "second run should replay from cache")
}

type memCache struct {
	pages map[string][]byte
}

func (c *memCache) Get(url string) ([]byte, bool) {
	b, ok := c.pages[url]
	return b, ok
}

func (c *memCache) Put(url string, body []byte) {
	c.pages[url] = body
}

func TestFetchComments_WalksReplyTree(t *testing.T) {
	reply := `{"data":{"children":[{"kind":"t1","data":{"id":"c2","body":"nested reply","created_utc":1700000200}}]}}`
	tree := fmt.Sprintf(`[
		{"data":{"children":[{"kind":"t3","data":{"id":"p1","title":"post"}}]}},
		{"data":{"children":[
			{"kind":"t1","data":{"id":"c1","body":"top level","created_utc":1700000100,"replies":%s}},
			{"kind":"more","data":{}}
		]}}
	]`, reply)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ".json"))
		fmt.Fprint(w, tree)
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	comments, err := s.FetchComments(context.Background(), "/r/SaaS/comments/p1/title/", 10)

	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "c2", comments[1].ID)
}

func TestFetchComments_RespectsMax(t *testing.T) {
	tree := `[
		{"data":{"children":[]}},
		{"data":{"children":[
			{"kind":"t1","data":{"id":"c1","body":"one","created_utc":1}},
			{"kind":"t1","data":{"id":"c2","body":"two","created_utc":2}},
			{"kind":"t1","data":{"id":"c3","body":"three","created_utc":3}}
		]}}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tree)
	}))
	defer srv.Close()

	s, _ := newTestSearcher(t, srv, SearcherConfig{})
	comments, err := s.FetchComments(context.Background(), "/r/SaaS/comments/p1/x/", 2)

	assert.NoError(t, err)
	assert.Len(t, comments, 2)
}
