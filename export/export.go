// Package export renders an already-ranked lead sequence to the run's output
// files. It performs no scoring or filtering of its own.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

// signalDelimiter joins multi-valued CSV cells (signals, queries).
const signalDelimiter = ";"

var csvHeader = []string{
	"id", "kind", "subreddit", "author", "title", "url",
	"created_at", "intent_score", "intent_signals", "query_matched", "body",
}

// RunInfo describes the scan that produced the leads, stamped into the
// Markdown header.
type RunInfo struct {
	RunID       string
	Queries     []string
	Subreddits  []string
	Days        int
	MinIntent   float64
	GeneratedAt time.Time
}

// WriteCSV renders one row per lead in ranked order.
func WriteCSV(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, l := range leads {
		row := []string{
			l.ID,
			l.Kind,
			l.Subreddit,
			l.Author,
			l.Title,
			l.URL,
			l.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatFloat(l.IntentScore, 'f', 2, 64),
			strings.Join(l.IntentSignals, signalDelimiter),
			strings.Join(l.QueryMatched, signalDelimiter),
			l.Body,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", l.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders a human-readable report, one section per lead, in the
// same order as the CSV.
func WriteMarkdown(w io.Writer, info RunInfo, leads []models.Lead) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Leads for: %s\n\n", strings.Join(info.Queries, ", "))
	fmt.Fprintf(&b, "- run_id: %s\n", info.RunID)
	fmt.Fprintf(&b, "- generated_at: %s\n", info.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- subs: %s\n", formatSubs(info.Subreddits))
	fmt.Fprintf(&b, "- days: %d\n", info.Days)
	fmt.Fprintf(&b, "- min_intent: %.2f\n\n", info.MinIntent)

	for i, l := range leads {
		fmt.Fprintf(&b, "## %d. [%s] r/%s intent=%.2f\n", i+1, l.Kind, l.Subreddit, l.IntentScore)
		fmt.Fprintf(&b, "- url: %s\n", l.URL)
		fmt.Fprintf(&b, "- author: %s\n", l.Author)
		fmt.Fprintf(&b, "- created_at: %s\n", l.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "- signals: %s\n", strings.Join(l.IntentSignals, ", "))
		fmt.Fprintf(&b, "- queries: %s\n", strings.Join(l.QueryMatched, ", "))
		if l.Title != "" {
			fmt.Fprintf(&b, "- title: %s\n", l.Title)
		}
		fmt.Fprintf(&b, "\n> %s\n\n", strings.ReplaceAll(l.Body, "\n", "\n> "))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// WriteJSONL renders every retained lead, one JSON object per line, with all
// fields. This is the lossless form for debugging and replay, written before
// limit truncation.
func WriteJSONL(w io.Writer, leads []models.Lead) error {
	enc := json.NewEncoder(w)
	for _, l := range leads {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("write jsonl record %s: %w", l.ID, err)
		}
	}
	return nil
}

func formatSubs(subs []string) string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = "r/" + s
	}
	return strings.Join(out, ", ")
}
