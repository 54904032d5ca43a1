// Command genmock writes a deterministic mock crop stage reference table for
// local demos and tests. Stages follow days since sowing and weather comes
// from seeded uniform draws, so the same flags always produce the same file.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out Processed_Crop_stage.csv \
//	  -start 2023-06-01 -days 120 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/crop-stage-advisory/internal/adapter/csvfile"
	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

type district struct {
	state       string
	name        string
	commodities []string
}

var districts = []district{
	{state: "Odisha", name: "Cuttack", commodities: []string{"Rice", "Groundnut"}},
	{state: "Odisha", name: "Puri", commodities: []string{"Rice"}},
	{state: "Punjab", name: "Ludhiana", commodities: []string{"Wheat", "Maize"}},
	{state: "Maharashtra", name: "Pune", commodities: []string{"Sugarcane", "Soybean"}},
	{state: "Karnataka", name: "Mysuru", commodities: []string{"Ragi", "Rice"}},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "Processed_Crop_stage.csv", "output path for the mock reference table")
	start := flag.String("start", "2023-06-01", "sowing date (YYYY-MM-DD) of every tuple")
	days := flag.Int("days", 120, "number of days per tuple")
	seed := flag.Uint64("seed", 7, "seed for weather draws")
	flag.Parse()

	sowing, err := domain.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	records := generate(sowing, *days, domain.NewSeededForecaster(*seed))

	if err := writeCSV(*out, records); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d records: %s", len(records), *out)

	printStats(records)
	return nil
}

// generate emits one row per district, commodity, and day, in that order.
func generate(sowing time.Time, days int, fc *domain.SyntheticForecaster) []domain.Record {
	var records []domain.Record //nolint:prealloc // size depends on the district table
	for _, d := range districts {
		for _, commodity := range d.commodities {
			for i, day := range fc.Series(sowing, days) {
				records = append(records, domain.Record{
					State:     d.state,
					District:  d.name,
					Commodity: commodity,
					Date:      day.Date,
					CropStage: stageFor(i),
					Weather:   day.Weather,
				})
			}
		}
	}
	return records
}

// stageFor maps days since sowing onto the four catalog stages.
func stageFor(daysSinceSowing int) string {
	switch {
	case daysSinceSowing <= 20:
		return domain.StageEstablishment
	case daysSinceSowing <= 55:
		return domain.StageVegetative
	case daysSinceSowing <= 90:
		return domain.StageShooting
	default:
		return domain.StageDevelopment
	}
}

func writeCSV(path string, records []domain.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(records []domain.Record) {
	stages := map[string]int{}
	states := map[string]int{}
	for i := range records {
		stages[records[i].CropStage]++
		states[records[i].State]++
	}

	fmt.Println("\n=== Mock reference table ===")
	fmt.Printf("Total: %d\n", len(records))

	names := make([]string, 0, len(states))
	for s := range states {
		names = append(names, s)
	}
	sort.Strings(names)
	fmt.Print("By state:")
	for _, s := range names {
		fmt.Printf(" %s=%d", s, states[s])
	}
	fmt.Println()

	fmt.Printf("By stage: establishment=%d, vegetative=%d, shooting=%d, development=%d\n",
		stages[domain.StageEstablishment], stages[domain.StageVegetative],
		stages[domain.StageShooting], stages[domain.StageDevelopment])
}
