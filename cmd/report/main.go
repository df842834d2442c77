// Command report normalizes a saved events batch and prints the resulting
// report. It uses the same domain package as the service, so the output
// matches what the report API serves for that batch.
//
// Usage:
//
//	go run ./cmd/report \
//	  -input data/sample_tariff_events.json \
//	  -format yaml
//
// -format csv prints the tabular projection instead of the full report.
// -fixed-clock pins generated_at so repeated runs are byte-identical.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"
)

var fixedTime = time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "data/sample_tariff_events.json", "path to an events batch JSON file")
	format := fs.String("format", "json", "output format: json, yaml or csv")
	countryCodes := fs.String("country-codes", "", "country reference CSV (default: bundled table)")
	matchNames := fs.Bool("match-names", false, "resolve missing country codes from names")
	fixedClock := fs.Bool("fixed-clock", false, "pin generated_at for reproducible output")
	relevance := fs.String("relevance", "", "comma-separated relevance scores to keep")
	query := fs.String("q", "", "case-insensitive summary search")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *input, err)
	}
	batch, err := domain.DecodeBatch(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", *input, err)
	}

	ref, err := domain.LoadCountryReferenceFile(*countryCodes)
	if err != nil {
		if !errors.Is(err, domain.ErrReferenceFallback) {
			return err
		}
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	if *fixedClock {
		domain.SetClock(clockwork.NewFakeClockAt(fixedTime))
		defer domain.SetClock(nil)
	}

	var opts []domain.NormalizerOption
	if *matchNames {
		opts = append(opts, domain.WithNameMatching())
	}
	events := domain.NewNormalizer(ref, opts...).Normalize(batch.Events)

	f := domain.Filter{Query: *query}
	for _, r := range strings.Split(*relevance, ",") {
		if r = strings.TrimSpace(r); r != "" {
			f.RelevanceScores = append(f.RelevanceScores, r)
		}
	}
	if !f.IsZero() {
		events = f.Apply(events)
	}
	report := domain.BuildReport(batch, domain.SortByAnnouncement(events), ref)

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "csv":
		return report.Table().WriteCSV(stdout)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}
