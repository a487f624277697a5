// Command generate_fixture writes a seeded synthetic tournament snapshot
// for demos and load tests.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ahrav/go-standings/infrastructure/storage/memory"
	"github.com/ahrav/go-standings/internal/testutils"
)

func main() {
	defaults := testutils.DefaultFixtureConfig()
	var (
		seed       = flag.Int64("seed", defaults.Seed, "random seed; 0 uses the current time")
		teams      = flag.Int("teams", defaults.Teams, "number of teams")
		judges     = flag.Int("judges", defaults.JudgesPerArea, "judges per area")
		rounds     = flag.Int("rounds", defaults.Rounds, "robot game rounds")
		coverage   = flag.Float64("coverage", defaults.Coverage, "share of (team, area, judge, round) slots that get an evaluation")
		outputPath = flag.String("output", "testdata/fixtures/snapshot.json", "output file path")
	)
	flag.Parse()

	cfg := defaults
	cfg.Seed = *seed
	cfg.Teams = *teams
	cfg.JudgesPerArea = *judges
	cfg.Rounds = *rounds
	cfg.Coverage = *coverage

	gen := testutils.NewFixtureGenerator(cfg)
	snap := gen.Snapshot()
	if err := memory.SaveSnapshotFile(*outputPath, snap); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	active := 0
	for _, ev := range snap.Evaluations {
		if ev.IsActive {
			active++
		}
	}

	fmt.Printf("Generated tournament snapshot:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Seed: %d\n", gen.Seed())
	fmt.Printf("- Tournament: %s (%s)\n", snap.Tournament.Name, snap.Tournament.ID)
	fmt.Printf("- Areas: %d\n", len(snap.Tournament.Areas))
	fmt.Printf("- Teams: %d\n", len(snap.Tournament.Teams))
	fmt.Printf("- Evaluations: %d (%d active)\n", len(snap.Evaluations), active)
}
