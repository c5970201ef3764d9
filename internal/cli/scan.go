package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"overwatch/internal/adapters/github"
	"overwatch/internal/core/patterns"
	"overwatch/internal/platform/config"
	perr "overwatch/internal/platform/errors"
	"overwatch/internal/platform/logger"
	"overwatch/internal/platform/store/pg"
	fdom "overwatch/internal/services/findings/domain"
	frepo "overwatch/internal/services/findings/repo"
	sdom "overwatch/internal/services/scan/domain"
	srepo "overwatch/internal/services/scan/repo"
	"overwatch/internal/services/scan/service"
)

// scanEnv holds everything a scan run needs plus the handles to release
type scanEnv struct {
	svc    *service.Service
	seen   *srepo.SeenFile
	writer fdom.WriterPort
	pool   *pg.PG
}

func (e *scanEnv) Close() {
	log := logger.Get()
	if e.writer != nil {
		if err := e.writer.Close(); err != nil {
			log.Error().Err(err).Msg("close findings writer")
		}
	}
	if e.seen != nil {
		if err := e.seen.Close(); err != nil {
			log.Error().Err(err).Msg("close seen set")
		}
	}
	e.pool.Close()
}

// buildScanEnv assembles the client, engine, seen set and writer from
// flags and env
func buildScanEnv(ctx context.Context) (*scanEnv, error) {
	cfg := conf()
	gh := config.New().Prefix("GITHUB_")

	client := github.NewClient(github.Options{
		BaseURL: gh.MayString("API_URL", ""),
		Token:   gh.MayString("TOKEN", ""),
	})

	eng := patterns.New()
	if _, err := eng.LoadFile(resolve(flagPatterns, cfg, "PATTERNS", "config/patterns.yaml")); err != nil {
		return nil, err
	}

	seen, err := srepo.OpenSeenFile(resolve(flagSeen, cfg, "SEEN", "scanned_repos.txt"))
	if err != nil {
		return nil, err
	}

	env := &scanEnv{seen: seen}
	env.writer, env.pool, err = buildWriter(ctx, cfg)
	if err != nil {
		_ = seen.Close()
		return nil, err
	}

	env.svc = service.New(client, eng, seen, env.writer, service.Config{})
	return env, nil
}

// buildWriter picks the findings sink. A configured postgres URL wins,
// otherwise the format flag selects between jsonl and csv appenders
func buildWriter(ctx context.Context, cfg config.Conf) (fdom.WriterPort, *pg.PG, error) {
	if url := cfg.MayString("PG_URL", ""); url != "" {
		db, err := pg.Open(ctx, pg.Config{
			URL:      url,
			AppName:  "overwatch-scan",
			MaxConns: int32(cfg.MayInt("PG_MAX_CONNS", 4)),
			SlowMs:   cfg.MayInt("PG_SLOW_MS", 500),
		}, pg.Tracer(*logger.Get()), nil)
		if err != nil {
			return nil, nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "postgres connect failed")
		}
		repo := frepo.NewPG(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	}

	format := resolve(flagFormat, cfg, "FORMAT", "jsonl")
	switch format {
	case "csv":
		w, err := frepo.NewCSV(resolve(flagOut, cfg, "OUT", "findings.csv"))
		return w, nil, err
	case "jsonl":
		w, err := frepo.NewJSONL(resolve(flagOut, cfg, "OUT", "findings.jsonl"))
		return w, nil, err
	default:
		return nil, nil, perr.InvalidArgf("unknown findings format %q", format)
	}
}

// runQueries executes one scan per query against a shared environment
// and prints a summary line for each
func runQueries(queries []queryInput) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := buildScanEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	for _, q := range queries {
		runCtx := logger.WithRun(ctx, uuid.NewString(), q.Query)
		sum, err := env.svc.Run(runCtx, sdom.Input{Query: q.Query, MaxRepos: q.MaxRepos})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d repos scanned, %d skipped, %d files, %d findings\n",
			q.Label, sum.ReposScanned, sum.ReposSkipped, sum.FilesScanned, sum.FindingsWritten)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// queryInput is one scan to perform, with a label for the summary line
type queryInput struct {
	Label    string
	Query    string
	MaxRepos int
}
