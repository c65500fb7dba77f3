package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/shineliang/reddit-intent-leads-cli/config"
	"github.com/shineliang/reddit-intent-leads-cli/drafts"
)

type draftLead struct {
	id        string
	kind      string
	subreddit string
	title     string
	url       string
	body      string
}

func runDraftsCmd(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("drafts", flag.ExitOnError)
	in := fs.String("in", "out/leads.csv", "leads.csv produced by scan")
	out := fs.String("out", "out/drafts.md", "output Markdown path")
	model := fs.String("model", config.Config.OpenAIModel, "chat model to use")
	concurrency := fs.Int("concurrency", 4, "parallel draft requests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	apiKey, err := drafts.LookupAPIKey()
	if err != nil {
		return err
	}

	client, err := httpClient("")
	if err != nil {
		return errors.Wrap(err, "create http client")
	}
	generator := drafts.NewOpenAIClient(client, config.Config.OpenAIBaseURL, apiKey, *model)

	return runDrafts(ctx, logger, *in, *out, *concurrency, generator)
}

func runDrafts(ctx context.Context, logger *slog.Logger, inPath, outPath string, concurrency int, generator drafts.Generator) error {
	rows, err := readLeadsCSV(inPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.Errorf("no leads in %s", inPath)
	}
	logger.Info("generating drafts", "leads", len(rows), "concurrency", concurrency)

	// Generated concurrently, written in lead order.
	results := make([]string, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			draft, err := generator.Generate(gctx, leadPrompt(row))
			if err != nil {
				logger.Warn("draft skipped", "lead_id", row.id, "error", err)
				return nil // one failed row never fails the run
			}
			results[i] = draft
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Suggested replies\n\n")
	written := 0
	for i, row := range rows {
		if results[i] == "" {
			continue
		}
		written++
		heading := row.title
		if heading == "" {
			heading = row.id
		}
		fmt.Fprintf(&b, "## %d. [%s] r/%s %s\n", written, row.kind, row.subreddit, heading)
		fmt.Fprintf(&b, "- url: %s\n\n", row.url)
		fmt.Fprintf(&b, "%s\n\n", results[i])
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", outPath)
	}

	logger.Info("drafts written", "path", outPath, "drafts", written, "skipped", len(rows)-written)
	return nil
}

func leadPrompt(row draftLead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subreddit: r/%s\n", row.subreddit)
	if row.title != "" {
		fmt.Fprintf(&b, "Title: %s\n", row.title)
	}
	fmt.Fprintf(&b, "URL: %s\n\n%s", row.url, row.body)
	return b.String()
}

func readLeadsCSV(path string) ([]draftLead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if len(records) < 1 {
		return nil, errors.Errorf("%s: missing header", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"id", "kind", "subreddit", "title", "url", "body"} {
		if _, ok := col[required]; !ok {
			return nil, errors.Errorf("%s: missing column %q", path, required)
		}
	}

	out := make([]draftLead, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, draftLead{
			id:        rec[col["id"]],
			kind:      rec[col["kind"]],
			subreddit: rec[col["subreddit"]],
			title:     rec[col["title"]],
			url:       rec[col["url"]],
			body:      rec[col["body"]],
		})
	}
	return out, nil
}
