package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-standings/infrastructure/httpapi"
	"github.com/ahrav/go-standings/infrastructure/middleware"
	"github.com/ahrav/go-standings/infrastructure/storage/memory"
	"github.com/ahrav/go-standings/infrastructure/storage/postgres"
	"github.com/ahrav/go-standings/internal/application"
	"github.com/ahrav/go-standings/internal/ports"
)

type serveOptions struct {
	addr       string
	tournament string
	snapshot   string
}

type stores interface {
	ports.TournamentStore
	ports.EvaluationStore
}

func newServeCommand(rt *cliState) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves rankings and accepts judge submissions over HTTP.

With DATABASE_URL set the Postgres store is used; otherwise an in-memory
store, optionally seeded from --snapshot, holds the data until exit.
--tournament saves the given definition before serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default HTTP_ADDR)")
	cmd.Flags().StringVar(&opts.tournament, "tournament", "", "tournament definition YAML to save before serving")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "snapshot JSON to seed the in-memory store")
	return cmd
}

func runServe(ctx context.Context, rt *cliState, opts serveOptions) error {
	store, closeStore, err := openStores(ctx, rt, opts.snapshot)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.tournament != "" {
		loader, err := application.NewTournamentLoader(nil)
		if err != nil {
			return err
		}
		t, err := loader.LoadFromFile(ctx, opts.tournament)
		if err != nil {
			return err
		}
		if err := store.SaveTournament(ctx, t); err != nil {
			return err
		}
		rt.logger.Info().Str("tournament_id", t.ID).Msg("tournament saved")
	}

	observer := middleware.NewOTelObserver(middleware.NewPrometheusMetrics(prometheus.DefaultRegisterer))
	rankings := application.NewRankingService(store, store, nil,
		application.WithRankingLogger(rt.logger),
		application.WithRankingObserver(observer),
	)
	submissions := application.NewSubmissionService(store, store,
		application.WithSubmissionLogger(rt.logger),
		application.WithSubmissionObserver(observer),
		application.WithJudgeRateLimit(rt.settings.SubmitRate, rt.settings.SubmitBurst),
	)

	addr := opts.addr
	if addr == "" {
		addr = rt.settings.HTTPAddr
	}
	srv := httpapi.NewServer(rankings, submissions, httpapi.WithLogger(rt.logger))
	return srv.ListenAndServe(ctx, addr)
}

func openStores(ctx context.Context, rt *cliState, snapshot string) (stores, func(), error) {
	if rt.settings.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, rt.settings.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		rt.logger.Info().Msg("using postgres store")
		return pg, func() { _ = pg.Close() }, nil
	}

	mem := memory.New()
	if snapshot != "" {
		snap, err := memory.LoadSnapshotFile(snapshot)
		if err != nil {
			return nil, nil, err
		}
		mem = memory.NewFromSnapshot(snap)
	}
	rt.logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
	return mem, func() {}, nil
}
