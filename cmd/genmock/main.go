// Command genmock writes deterministic synthetic versions of the four
// published COVID-19 feeds, for local runs against file:// URLs. The output
// is parsed back and joined with the geo table before the command exits, so
// a fixture that the loader would reject is never left behind.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -days 120 -end 2020-11-30
//
// then start the service with, for example,
// SOURCE_NATIONAL_URL=file://$PWD/data/mock/chiffres-cles.csv.
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// File names match the published resources.
const (
	nationalFile            = "chiffres-cles.csv"
	departmentTestsFile     = "sp-pos-quot-dep.csv"
	nationalIncidenceFile   = "sp-pe-tb-quot-fra.csv"
	departmentIncidenceFile = "sp-pe-tb-quot-dep.csv"
)

var ageBrackets = []string{"09", "19", "29", "39", "49", "59", "69", "79", "89", "90"}

// ageShare is the fraction of positives in each bracket; it sums to 1.
var ageShare = []float64{0.05, 0.12, 0.17, 0.15, 0.14, 0.13, 0.10, 0.07, 0.05, 0.02}

type department struct {
	geo.Department
	pop  float64
	peak float64 // day offset of the epidemic peak
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for the four CSV files")
	days := flag.Int("days", 90, "number of days to generate")
	endDay := flag.String("end", "2020-11-30", "last generated day (YYYY-MM-DD)")
	seed := flag.Uint64("seed", 2020, "random seed")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days < 14 {
		return fmt.Errorf("-days must be at least 14, got %d", *days)
	}
	end, err := time.Parse(domain.DayLayout, *endDay)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	start := end.AddDate(0, 0, -(*days - 1))

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	table := geo.Default()
	deps := make([]department, 0, len(table.Departments()))
	for _, d := range table.Departments() {
		deps = append(deps, department{
			Department: d,
			pop:        math.Round(150_000 + rng.Float64()*2_400_000),
			peak:       float64(*days)*0.6 + rng.NormFloat64()*float64(*days)/10,
		})
	}

	g := &generator{rng: rng, deps: deps, start: start, days: *days}
	g.simulate()

	files := map[string][]byte{
		nationalFile:            g.nationalCSV(),
		departmentTestsFile:     g.testsCSV(),
		nationalIncidenceFile:   g.nationalIncidenceCSV(),
		departmentIncidenceFile: g.departmentIncidenceCSV(),
	}
	if err := verify(files, table); err != nil {
		return fmt.Errorf("generated data does not load: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	for name, data := range files {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s (%d bytes)", path, len(data))
	}
	log.Printf("%d departments, %d days from %s to %s",
		len(deps), *days, start.Format(domain.DayLayout), end.Format(domain.DayLayout))
	return nil
}

type generator struct {
	rng   *rand.Rand
	deps  []department
	start time.Time
	days  int

	// positives[d][i] is the all-ages positive count of department d on day i.
	positives [][]float64
	tested    [][]float64
	hosp      [][]float64
	icu       [][]float64
}

func (g *generator) day(i int) time.Time { return g.start.AddDate(0, 0, i) }

func (g *generator) simulate() {
	n := len(g.deps)
	g.positives = make([][]float64, n)
	g.tested = make([][]float64, n)
	g.hosp = make([][]float64, n)
	g.icu = make([][]float64, n)

	for d, dep := range g.deps {
		g.positives[d] = make([]float64, g.days)
		g.tested[d] = make([]float64, g.days)
		g.hosp[d] = make([]float64, g.days)
		g.icu[d] = make([]float64, g.days)
		width := float64(g.days) / 5
		for i := range g.days {
			// Gaussian wave per 100 000 inhabitants, with a weekend dip.
			wave := 5 + 80*math.Exp(-math.Pow(float64(i)-dep.peak, 2)/(2*width*width))
			if wd := g.day(i).Weekday(); wd == time.Saturday || wd == time.Sunday {
				wave *= 0.6
			}
			noise := 1 + 0.15*g.rng.NormFloat64()
			p := math.Max(0, math.Round(wave*noise*dep.pop/100_000))
			g.positives[d][i] = p
			g.tested[d][i] = math.Round(p*(8+4*g.rng.Float64()) + dep.pop/2000)
			g.hosp[d][i] = math.Round(p * 0.04 * (1 + 0.2*g.rng.NormFloat64()))
			g.icu[d][i] = math.Round(g.hosp[d][i] * 0.2)
		}
	}
}

func (g *generator) nationalCSV() []byte {
	rows := [][]string{{
		"date", "granularite", "maille_code", "maille_nom", "deces", "reanimation",
		"hospitalises", "nouvelles_hospitalisations", "nouvelles_reanimations", "source_nom",
	}}
	deaths := make([]float64, len(g.deps))
	for i := range g.days {
		day := g.day(i).Format(domain.DayLayout)
		var nHosp, nICU, nDeaths, nHospitalized, nInICU float64
		for d, dep := range g.deps {
			hosp, icu := max(0, g.hosp[d][i]), max(0, g.icu[d][i])
			deaths[d] += math.Round(hosp * 0.15)
			hospitalized := sumLast(g.hosp[d], i, 10)
			inICU := sumLast(g.icu[d], i, 14)
			rows = append(rows, []string{
				day, "departement", "DEP-" + dep.Code, dep.Name,
				num(deaths[d]), num(inICU), num(hospitalized), num(hosp), num(icu), "ARS",
			})
			nHosp += hosp
			nICU += icu
			nDeaths += deaths[d]
			nHospitalized += hospitalized
			nInICU += inICU
		}
		rows = append(rows, []string{
			day, "pays", "FRA", domain.NationalAreaName,
			num(nDeaths), num(nInICU), num(nHospitalized), num(nHosp), num(nICU), "Santé publique France",
		})
	}
	return encode(rows, domain.CommaSeparated)
}

func (g *generator) testsCSV() []byte {
	rows := [][]string{{"dep", "jour", "P", "T", "cl_age90", "pop"}}
	for d, dep := range g.deps {
		for i := range g.days {
			day := g.day(i).Format(domain.DayLayout)
			p, t := g.positives[d][i], g.tested[d][i]
			for b, bracket := range ageBrackets {
				rows = append(rows, []string{
					dep.Code, day, num(math.Round(p * ageShare[b])), num(math.Round(t * ageShare[b])),
					bracket, num(math.Round(dep.pop * ageShare[b])),
				})
			}
			rows = append(rows, []string{dep.Code, day, num(p), num(t), domain.AllAges, num(dep.pop)})
		}
	}
	return encode(rows, domain.SemicolonSeparated)
}

// weeks yields the day index closing each complete rolling week and its label.
func (g *generator) weeks(yield func(i int, label string) bool) {
	for i := 6; i < g.days; i++ {
		label := g.day(i-6).Format(domain.DayLayout) + "-" + g.day(i).Format(domain.DayLayout)
		if !yield(i, label) {
			return
		}
	}
}

func (g *generator) nationalIncidenceCSV() []byte {
	var pop float64
	for _, dep := range g.deps {
		pop += dep.pop
	}
	rows := [][]string{{"fra", "semaine_glissante", "cl_age90", "P", "pop"}}
	for i, label := range g.weeks {
		var p float64
		for d := range g.deps {
			p += sumLast(g.positives[d], i, 7)
		}
		rows = append(rows, []string{"FR", label, domain.AllAges, num(p), num(pop)})
	}
	return encode(rows, domain.SemicolonSeparated)
}

func (g *generator) departmentIncidenceCSV() []byte {
	rows := [][]string{{"dep", "semaine_glissante", "cl_age90", "P", "pop"}}
	for d, dep := range g.deps {
		for i, label := range g.weeks {
			rows = append(rows, []string{dep.Code, label, domain.AllAges, num(sumLast(g.positives[d], i, 7)), num(dep.pop)})
		}
	}
	return encode(rows, domain.SemicolonSeparated)
}

// verify runs the generated files through the same parsers and geo join the
// loader uses.
func verify(files map[string][]byte, table *geo.Table) error {
	areas, err := domain.ParseAreaRecords(bytes.NewReader(files[nationalFile]))
	if err != nil {
		return fmt.Errorf("%s: %w", nationalFile, err)
	}
	if _, err := domain.AttachAreaCoordinates(areas, table); err != nil {
		return err
	}

	tests, err := domain.ParseDepartmentTests(bytes.NewReader(files[departmentTestsFile]))
	if err != nil {
		return fmt.Errorf("%s: %w", departmentTestsFile, err)
	}
	if _, err := domain.AttachTestCoordinates(tests, table); err != nil {
		return err
	}

	if _, err := domain.ParseNationalIncidence(bytes.NewReader(files[nationalIncidenceFile])); err != nil {
		return fmt.Errorf("%s: %w", nationalIncidenceFile, err)
	}

	inc, err := domain.ParseDepartmentIncidence(bytes.NewReader(files[departmentIncidenceFile]))
	if err != nil {
		return fmt.Errorf("%s: %w", departmentIncidenceFile, err)
	}
	if _, err := domain.AttachIncidenceCoordinates(domain.TableDepartmentIncidence, inc, table); err != nil {
		return err
	}
	return nil
}

func sumLast(s []float64, i, n int) float64 {
	var total float64
	for j := max(0, i-n+1); j <= i; j++ {
		total += max(0, s[j])
	}
	return total
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func encode(rows [][]string, sep rune) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = sep
	_ = w.WriteAll(rows) // bytes.Buffer writes cannot fail
	return buf.Bytes()
}
