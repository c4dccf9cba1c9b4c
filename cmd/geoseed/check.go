package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/adapter/opendata"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
	"github.com/couchcryptid/opencovid-fr/internal/pipeline"
)

type checkCmd struct {
	National            string        `help:"Key-figures feed URL." default:"${national_url}"`
	Tests               string        `help:"Departmental tests feed URL." default:"${department_tests_url}"`
	Incidence           string        `help:"National incidence feed URL." default:"${national_incidence_url}"`
	DepartmentIncidence string        `name:"dep-incidence" help:"Departmental incidence feed URL." default:"${department_incidence_url}"`
	Timeout             time.Duration `help:"Per-feed fetch timeout." default:"2m"`
}

// phase tracks pass/fail for one feed.
type phase struct {
	name   string
	keys   int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (c *checkCmd) Run(_ *globals, logger *slog.Logger) error {
	ctx := context.Background()
	fetcher := opendata.NewFetcher(c.Timeout, observability.NewMetricsForTesting(), logger)
	table := geo.Default()

	phases := []*phase{
		checkFeed(ctx, fetcher, pipeline.SourceNational, c.National, func(r io.Reader) ([]string, error) {
			return keys[domain.AreaRecord](domain.ParseAreaRecords(r))
		}, func(k string) error {
			_, err := table.CoordinatesForArea(k)
			return err
		}),
		checkFeed(ctx, fetcher, pipeline.SourceDepartmentTests, c.Tests, func(r io.Reader) ([]string, error) {
			return keys[domain.DepartmentTestRecord](domain.ParseDepartmentTests(r))
		}, departmentCheck(table)),
		checkFeed(ctx, fetcher, pipeline.SourceNationalIncidence, c.Incidence, func(r io.Reader) ([]string, error) {
			return keys[domain.IncidenceRecord](domain.ParseNationalIncidence(r))
		}, func(string) error { return nil }),
		checkFeed(ctx, fetcher, pipeline.SourceDepartmentIncidence, c.DepartmentIncidence, func(r io.Reader) ([]string, error) {
			return keys[domain.IncidenceRecord](domain.ParseDepartmentIncidence(r))
		}, departmentCheck(table)),
	}

	return report(os.Stdout, phases)
}

func departmentCheck(table *geo.Table) func(string) error {
	return func(code string) error {
		_, err := table.CoordinatesForDepartmentCode(code)
		return err
	}
}

// keys returns the distinct geo keys of rows, in natural order.
func keys[R domain.Keyed](rows []R, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		k := r.AreaKey()
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return domain.NaturalLess(out[i], out[j]) })
	return out, nil
}

func checkFeed(
	ctx context.Context,
	fetcher *opendata.Fetcher,
	source, url string,
	parse func(io.Reader) ([]string, error),
	resolve func(string) error,
) *phase {
	p := &phase{name: source}

	body, err := fetcher.Fetch(ctx, source, url)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	ks, err := parse(bytes.NewReader(body))
	if err != nil {
		p.errorf("parse: %v", err)
		return p
	}
	p.keys = len(ks)
	for _, k := range ks {
		if err := resolve(k); err != nil {
			p.errorf("unresolved key %q", k)
		}
	}
	return p
}

func report(w io.Writer, phases []*phase) error {
	failed := 0
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%-22s %s (%d keys)\n", p.name, status, p.keys)
		for _, e := range p.errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d feeds failed", failed, len(phases))
	}
	return nil
}
