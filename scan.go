package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shineliang/reddit-intent-leads-cli/config"
	"github.com/shineliang/reddit-intent-leads-cli/data"
	"github.com/shineliang/reddit-intent-leads-cli/export"
	"github.com/shineliang/reddit-intent-leads-cli/leads"
	"github.com/shineliang/reddit-intent-leads-cli/models"
	"github.com/shineliang/reddit-intent-leads-cli/scoring"
	"github.com/shineliang/reddit-intent-leads-cli/sources"
)

type scanOptions struct {
	queries     []string
	subs        []string
	days        int
	limit       int
	comments    bool
	maxComments int
	minIntent   float64
	sleep       float64
	rulesPath   string
	englishOnly bool
	noCache     bool
	outDir      string
}

func runScanCmd(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	query := fs.String("query", "", "search query; comma-separated for multiple")
	subs := fs.String("subs", "SaaS,startups,Entrepreneur,smallbusiness", "comma-separated subreddits (without r/)")
	days := fs.Int("days", 14, "lookback window in days")
	limit := fs.Int("limit", 80, "max posts to fetch and max leads to export")
	comments := fs.Bool("comments", true, "score comments too")
	maxComments := fs.Int("max-comments", 50, "max comments per post")
	minIntent := fs.Float64("min-intent", 0, "drop leads below this intent score")
	sleep := fs.Float64("sleep", 1.2, "polite delay between requests, seconds")
	rulesPath := fs.String("rules", "", "YAML file replacing the built-in intent rules")
	englishOnly := fs.Bool("english-only", false, "drop leads not written in English")
	noCache := fs.Bool("no-cache", false, "disable the page cache")
	out := fs.String("out", "out", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := scanOptions{
		queries:     splitList(*query),
		subs:        parseSubs(*subs),
		days:        *days,
		limit:       *limit,
		comments:    *comments,
		maxComments: *maxComments,
		minIntent:   *minIntent,
		sleep:       *sleep,
		rulesPath:   *rulesPath,
		englishOnly: *englishOnly,
		noCache:     *noCache,
		outDir:      *out,
	}
	if len(opts.queries) == 0 {
		return errors.New("--query must not be empty")
	}
	if len(opts.subs) == 0 {
		return errors.New("--subs must not be empty")
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	// One scan per output directory at a time.
	lock := flock.New(filepath.Join(opts.outDir, ".rilf.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "acquire run lock")
	}
	if !locked {
		return errors.Errorf("another scan is writing to %s", opts.outDir)
	}
	defer lock.Unlock()

	var cache sources.PageCache
	if !opts.noCache {
		db, err := sqlx.Connect("sqlite", filepath.Join(opts.outDir, "cache.db"))
		if err != nil {
			return errors.Wrap(err, "open page cache")
		}
		defer db.Close()
		if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
			return errors.Wrap(err, "migrate page cache")
		}
		cache = data.NewPageCache(logger, db)
	}

	client, err := httpClient(config.Config.ProxyURL)
	if err != nil {
		return errors.Wrap(err, "create http client")
	}

	searcher := sources.NewSearcher(logger, client, cache, sources.SearcherConfig{
		UserAgent:   config.Config.UserAgent,
		PoliteDelay: time.Duration(opts.sleep * float64(time.Second)),
	})

	return runScan(ctx, logger, opts, searcher, time.Now().UTC())
}

// runScan is the pipeline: fetch, normalize, window-filter, dedupe, score,
// rank, export. Per-subreddit failures downgrade to warnings; only a total
// fetch failure or an unwritable output directory is fatal.
func runScan(ctx context.Context, logger *slog.Logger, opts scanOptions, searcher *sources.Searcher, now time.Time) error {
	runID := uuid.NewString()
	cutoff := now.AddDate(0, 0, -opts.days)
	logger.Info("starting scan", "run_id", runID, "queries", opts.queries, "subs", opts.subs, "days", opts.days, "limit", opts.limit)

	rules := scoring.DefaultRules
	if opts.rulesPath != "" {
		var err error
		rules, err = scoring.LoadRules(opts.rulesPath)
		if err != nil {
			return errors.Wrap(err, "load scoring rules")
		}
		logger.Info("loaded custom rules", "path", opts.rulesPath, "count", len(rules))
	}

	collected, fetchFailures := fetchCandidates(ctx, logger, opts, searcher, cutoff)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(collected) == 0 && fetchFailures > 0 {
		return errors.New("all fetches failed, nothing to export")
	}

	retained := leads.Dedupe(leads.FilterWindow(collected, cutoff))
	if opts.englishOnly {
		before := len(retained)
		retained = leads.NewEnglishFilter().Filter(retained)
		logger.Info("language filter applied", "kept", len(retained), "dropped", before-len(retained))
	}

	// Post bodies already carry the title, so scoring the body covers both.
	scorer := scoring.NewScorer(rules)
	for i := range retained {
		retained[i].IntentScore, retained[i].IntentSignals = scorer.Score(retained[i].Body)
	}

	ranked := leads.Rank(retained, opts.minIntent, opts.limit)

	if err := writeOutputs(opts, retained, ranked, export.RunInfo{
		RunID:       runID,
		Queries:     opts.queries,
		Subreddits:  opts.subs,
		Days:        opts.days,
		MinIntent:   opts.minIntent,
		GeneratedAt: now,
	}); err != nil {
		return err
	}

	logger.Info("scan complete", "run_id", runID,
		"fetched", len(collected), "retained", len(retained), "exported", len(ranked),
		"fetch_failures", fetchFailures)
	return nil
}

// fetchCandidates pulls posts (and optionally their comments) for every
// query/subreddit pair, sequentially so the polite delay stays honest.
// A pair that exhausts its retries is abandoned with a warning.
func fetchCandidates(ctx context.Context, logger *slog.Logger, opts scanOptions, searcher *sources.Searcher, cutoff time.Time) ([]models.Lead, int) {
	var collected []models.Lead
	fetchFailures := 0
	postsFetched := 0

	for _, query := range opts.queries {
		for _, sub := range opts.subs {
			if ctx.Err() != nil {
				return collected, fetchFailures
			}
			budget := opts.limit - postsFetched
			if budget <= 0 {
				return collected, fetchFailures
			}

			posts, err := searcher.SearchPosts(ctx, query, sub, cutoff, budget)
			if err != nil {
				fetchFailures++
				logger.Warn("abandoning query/subreddit pair", "query", query, "sub", sub, "error", err)
			}
			postsFetched += len(posts)

			for _, p := range posts {
				lead, err := leads.FromPost(p, query)
				if err != nil {
					logger.Warn("skipping malformed post", "sub", sub, "error", err)
					continue
				}
				collected = append(collected, lead)

				if !opts.comments || p.Permalink == "" {
					continue
				}
				comments, err := searcher.FetchComments(ctx, p.Permalink, opts.maxComments)
				if err != nil {
					logger.Warn("skipping comments", "post_id", p.ID, "error", err)
					continue
				}
				for _, c := range comments {
					commentLead, err := leads.FromComment(c, p.Subreddit, query)
					if err != nil {
						logger.Warn("skipping malformed comment", "post_id", p.ID, "error", err)
						continue
					}
					collected = append(collected, commentLead)
				}
			}
		}
	}

	return collected, fetchFailures
}

func writeOutputs(opts scanOptions, retained, ranked []models.Lead, info export.RunInfo) error {
	if err := writeFile(filepath.Join(opts.outDir, "raw.jsonl"), func(f *os.File) error {
		return export.WriteJSONL(f, retained)
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(opts.outDir, "leads.csv"), func(f *os.File) error {
		return export.WriteCSV(f, ranked)
	}); err != nil {
		return err
	}

	return writeFile(filepath.Join(opts.outDir, "leads.md"), func(f *os.File) error {
		return export.WriteMarkdown(f, info, ranked)
	})
}

func writeFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseSubs(s string) []string {
	var out []string
	for _, part := range splitList(s) {
		part = strings.TrimPrefix(part, "r/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
