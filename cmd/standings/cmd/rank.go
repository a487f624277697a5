package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-standings/infrastructure/storage/memory"
	"github.com/ahrav/go-standings/internal/application"
	"github.com/ahrav/go-standings/internal/domain"
)

type rankOptions struct {
	tournament string
	snapshot   string
	shift      string
	grade      string
	json       bool
}

func newRankCommand(rt *cliState) *cobra.Command {
	var opts rankOptions

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a tournament from files",
		Long: `Ranks a tournament read from a YAML definition and/or a JSON snapshot.

The snapshot supplies evaluations; when --tournament is also given its
definition replaces the one stored in the snapshot.

Examples:
  standings rank --snapshot snapshot.json
  standings rank --tournament regional.yaml --snapshot snapshot.json --shift manha --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd, rt, opts)
		},
	}
	cmd.Flags().StringVar(&opts.tournament, "tournament", "", "tournament definition YAML")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "snapshot JSON with evaluations")
	cmd.Flags().StringVar(&opts.shift, "shift", "", "filter by shift (manha, tarde, noite, morning, ...)")
	cmd.Flags().StringVar(&opts.grade, "grade", "", "filter by grade (\"2º ano\", ...)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the ranking as JSON")
	return cmd
}

func runRank(cmd *cobra.Command, rt *cliState, opts rankOptions) error {
	if opts.tournament == "" && opts.snapshot == "" {
		return errors.New("at least one of --tournament or --snapshot is required")
	}

	var snap domain.Snapshot
	if opts.snapshot != "" {
		var err error
		if snap, err = memory.LoadSnapshotFile(opts.snapshot); err != nil {
			return err
		}
	}
	if opts.tournament != "" {
		loader, err := application.NewTournamentLoader(nil)
		if err != nil {
			return err
		}
		if snap.Tournament, err = loader.LoadFromFile(cmd.Context(), opts.tournament); err != nil {
			return err
		}
	}

	engine := application.NewEngine(application.DefaultOptions())
	res, err := application.RankSnapshot(engine, snap, application.FilterOptions{Shift: opts.shift, Grade: opts.grade})
	if err != nil {
		return err
	}
	rt.logger.Debug().
		Str("tournament_id", res.TournamentID).
		Int("teams", len(res.Rankings)).
		Int("skipped", res.Skipped).
		Msg("ranking computed")

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printRanking(cmd.OutOrStdout(), snap.Tournament, res)
}

// printRanking writes one row per team with the area percentages in area
// order; "-" marks an area the team was not evaluated in.
func printRanking(w io.Writer, t domain.Tournament, res application.RankingResult) error {
	areas := slices.Clone(t.Areas)
	slices.SortStableFunc(areas, func(a, b domain.TournamentArea) int { return a.Order - b.Order })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "POS\tTEAM\tGRADE\tSHIFT\tTOTAL\t%")
	for _, a := range areas {
		fmt.Fprintf(tw, "\t%s", a.Code)
	}
	fmt.Fprintln(tw)

	for _, r := range res.Rankings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.0f", r.Position, r.Team.Name, r.Team.Grade, r.Team.Shift, r.TotalScore, r.Percentage)
		for _, a := range areas {
			as, ok := r.AreaScores[a.Code]
			if !ok || !as.Evaluated {
				fmt.Fprint(tw, "\t-")
				continue
			}
			fmt.Fprintf(tw, "\t%.0f", as.Percentage)
		}
		fmt.Fprintln(tw)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(tw, "\n%d evaluation(s) skipped for non-finite scores\n", res.Skipped)
	}
	return tw.Flush()
}
