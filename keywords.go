package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var queryTemplates = []string{
	"{category} alternative",
	"alternative to {product}",
	"{product} alternative",
	"{product} vs",
	"recommend {category}",
	"best {category}",
	"looking for {category}",
	"need a {category}",
	"{category} for small business",
	"cheap {category}",
	"open source {category}",
}

// runKeywordsCmd expands high-intent search query templates for a product
// and category, de-duplicated in order, for feeding back into scan --query.
func runKeywordsCmd(args []string) error {
	fs := flag.NewFlagSet("keywords", flag.ExitOnError)
	product := fs.String("product", "", "competitor/product name, e.g. 'HubSpot'")
	category := fs.String("category", "", "category, e.g. 'crm', 'invoice software'")
	out := fs.String("out", "", "optional output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	queries := expandQueries(strings.TrimSpace(*product), strings.TrimSpace(*category))
	text := strings.Join(queries, "\n") + "\n"
	fmt.Print(text)

	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
		if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", *out)
		}
		fmt.Fprintf(os.Stderr, "Wrote: %s\n", *out)
	}

	return nil
}

func expandQueries(product, category string) []string {
	if category == "" {
		category = "your tool"
	}

	seen := make(map[string]bool)
	var out []string
	for _, t := range queryTemplates {
		if strings.Contains(t, "{product}") && product == "" {
			continue
		}
		q := strings.ReplaceAll(t, "{product}", product)
		q = strings.TrimSpace(strings.ReplaceAll(q, "{category}", category))
		if q == "" || seen[strings.ToLower(q)] {
			continue
		}
		seen[strings.ToLower(q)] = true
		out = append(out, q)
	}
	return out
}
