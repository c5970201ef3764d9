package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"overwatch/internal/platform/config"
	"overwatch/internal/platform/logger"
	ohttp "overwatch/internal/platform/net/http"
	"overwatch/internal/platform/store/pg"
	"overwatch/internal/services/api"
	fdom "overwatch/internal/services/findings/domain"
	frepo "overwatch/internal/services/findings/repo"
)

const shutdownGrace = 10 * time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only triage API over recorded findings",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	rootCmd.AddCommand(cmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := conf()
	log := logger.Named("serve")

	reader, db, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	bank, err := openBank()
	if err != nil {
		return err
	}

	srv := ohttp.NewServer(config.New().Prefix("OVERWATCH_API_"), func(m *chi.Mux) {
		api.Mount(m, api.Deps{Findings: reader, Bank: bank})
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return <-errc
	}
}

// openReader returns the findings source for the API: postgres when
// configured, otherwise the jsonl file the scanner appends to
func openReader(ctx context.Context, cfg config.Conf) (fdom.ReaderPort, *pg.PG, error) {
	if url := cfg.MayString("PG_URL", ""); url != "" {
		db, err := pg.Open(ctx, pg.Config{
			URL:      url,
			AppName:  "overwatch-api",
			MaxConns: int32(cfg.MayInt("PG_MAX_CONNS", 4)),
			SlowMs:   cfg.MayInt("PG_SLOW_MS", 500),
		}, pg.Tracer(*logger.Get()), nil)
		if err != nil {
			return nil, nil, err
		}
		repo := frepo.NewPG(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	}
	r, err := frepo.NewJSONL(resolve(flagOut, cfg, "OUT", "findings.jsonl"))
	return r, nil, err
}
