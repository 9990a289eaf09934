package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"jira-stage-metrics/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", engine.ScenarioMild, "Scenario to generate: mild, churn")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	outDir := flag.String("out", "./cache", "Cache directory to write the records to")
	sourceID := flag.String("source", "MOCK_0", "Source id of the generated cache file")
	count := flag.Int("count", 200, "Number of issues to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Now:          time.Now().UTC(),
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *outDir)

	records := engine.Generate(cfg)

	if err := engine.Save(*outDir, *sourceID, records); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
