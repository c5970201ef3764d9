// Package service implements the scan orchestrator
package service

import (
	"context"
	"time"

	"overwatch/internal/core/patterns"
	perr "overwatch/internal/platform/errors"
	"overwatch/internal/platform/logger"
	fdom "overwatch/internal/services/findings/domain"
	"overwatch/internal/services/scan/domain"
)

// defaultChecklist is the set of filenames probed in every repository.
// These are the usual suspects for committed credentials
var defaultChecklist = []string{
	".env",
	".env.local",
	".env.production",
	"config.json",
	"config.yaml",
	"config.yml",
	"secrets.json",
	"credentials.json",
	"google-services.json",
	"GoogleService-Info.plist",
	"firebase.json",
	".npmrc",
	".pypirc",
}

// Config for the scan service
type Config struct {
	// Checklist overrides the probed filenames; nil keeps the default
	Checklist []string
}

// Service implements domain.RunnerPort
type Service struct {
	Client    domain.ClientPort
	Engine    domain.EnginePort
	Seen      domain.SeenPort
	Writer    fdom.WriterPort
	Checklist []string

	log logger.Logger
	now func() time.Time
}

// New constructs a new scan service
func New(client domain.ClientPort, eng domain.EnginePort, seen domain.SeenPort, w fdom.WriterPort, cfg Config) *Service {
	cl := cfg.Checklist
	if len(cl) == 0 {
		cl = defaultChecklist
	}
	return &Service{
		Client:    client,
		Engine:    eng,
		Seen:      seen,
		Writer:    w,
		Checklist: cl,
		log:       *logger.Named("scan"),
		now:       time.Now,
	}
}

// Run executes one scan: a single search, then a checklist probe of every
// repository not yet in the seen set. Per-repository and per-file failures
// are logged and skipped; only a failed search or an empty pattern catalog
// surface as errors
func (s *Service) Run(ctx context.Context, in domain.Input) (domain.Summary, error) {
	var sum domain.Summary

	if s.Engine.Len() == 0 {
		return sum, perr.InvalidArgf("no patterns loaded, nothing to scan for")
	}

	repos, err := s.Client.SearchRepositories(ctx, in.Query, in.MaxRepos)
	if err != nil {
		return sum, err
	}
	if len(repos) == 0 {
		s.log.Info().Str("query", in.Query).Msg("search returned no repositories")
		return sum, nil
	}

	run := logger.C(ctx)
	run.Info().Str("query", in.Query).Int("repos", len(repos)).Msg("scan starting")

	for _, r := range repos {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		// seen lookup first: skipping must stay free of remote calls,
		// including the rate-limit probe
		if s.Seen.Seen(r.Owner, r.Name) {
			sum.ReposSkipped++
			run.Debug().Str("repo", r.Owner+"/"+r.Name).Msg("already scanned, skipping")
			continue
		}

		if s.Client.CheckAndHandleRateLimit(ctx) {
			run.Info().Msg("resumed after rate limit pause")
		}

		s.scanRepo(ctx, r.Owner, r.Name, r.HTMLURL, &sum)

		// marked regardless of how many files were reachable, so a noisy
		// repo is not re-probed on the next run
		if err := s.Seen.Add(r.Owner, r.Name); err != nil {
			run.Error().Err(err).Str("repo", r.Owner+"/"+r.Name).Msg("seen set append failed")
		}
		sum.ReposScanned++
	}

	run.Info().
		Int("repos_scanned", sum.ReposScanned).
		Int("repos_skipped", sum.ReposSkipped).
		Int("files_scanned", sum.FilesScanned).
		Int("findings", sum.FindingsWritten).
		Msg("scan finished")
	return sum, nil
}

func (s *Service) scanRepo(ctx context.Context, owner, name, repoURL string, sum *domain.Summary) {
	for _, path := range s.Checklist {
		content, fileURL, err := s.Client.GetFileContent(ctx, owner, name, path)
		if err != nil {
			// absent files are the common case; anything else is logged
			// and treated the same way
			if !perr.IsCode(err, perr.ErrorCodeNotFound) {
				s.log.Warn().Err(err).Str("repo", owner+"/"+name).Str("file", path).Msg("file fetch failed")
			}
			continue
		}
		sum.FilesScanned++

		found := s.Engine.Scan(content, path, patterns.RepoContext{
			Owner:   owner,
			Repo:    name,
			RepoURL: repoURL,
			FileURL: fileURL,
		})
		for _, f := range found {
			if err := s.persist(ctx, f); err != nil {
				s.log.Error().Err(err).Str("repo", owner+"/"+name).Str("file", path).Msg("finding write failed")
				continue
			}
			sum.FindingsWritten++
		}
	}
}

func (s *Service) persist(ctx context.Context, f patterns.Finding) error {
	return s.Writer.Write(ctx, fdom.Finding{
		Owner:      f.Owner,
		Repo:       f.Repo,
		File:       f.File,
		Line:       f.Line,
		SecretType: f.SecretType,
		MaskedText: f.MaskedText,
		Timestamp:  s.now().UTC(),
		RepoURL:    f.RepoURL,
		FileURL:    f.FileURL,
	})
}
