package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/services/findings/domain"
)

// Queryer is the slice of pgxpool.Pool the findings repo needs
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PG persists findings in Postgres
type PG struct{ q Queryer }

// NewPG constructs the Postgres findings repo over a pool or transaction
func NewPG(q Queryer) *PG { return &PG{q: q} }

// EnsureSchema creates the findings table when it does not exist yet
func (s *PG) EnsureSchema(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS findings (
			owner       text        NOT NULL,
			repo        text        NOT NULL,
			file        text        NOT NULL,
			line        int         NOT NULL,
			secret_type text        NOT NULL,
			masked_text text        NOT NULL,
			ts          timestamptz NOT NULL,
			repo_url    text        NOT NULL DEFAULT '',
			file_url    text        NOT NULL DEFAULT '',
			PRIMARY KEY (owner, repo, file, line, secret_type)
		)`)
	return perr.WrapIf(err, perr.ErrorCodeDB, "ensure findings schema")
}

// Write implements domain.WriterPort
func (s *PG) Write(ctx context.Context, f domain.Finding) error {
	return s.WriteBatch(ctx, []domain.Finding{f})
}

// WriteBatch implements domain.WriterPort with a single multi-row insert
func (s *PG) WriteBatch(ctx context.Context, xs []domain.Finding) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO findings
		(owner, repo, file, line, secret_type, masked_text, ts, repo_url, file_url) VALUES `)

	args := make([]any, 0, len(xs)*9)
	for i, f := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*9 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			f.Owner, f.Repo, f.File, f.Line, f.SecretType,
			f.MaskedText, f.Timestamp, f.RepoURL, f.FileURL,
		)
	}
	// re-scans of a repo are idempotent
	sb.WriteString(` ON CONFLICT (owner, repo, file, line, secret_type) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.WrapIf(err, perr.ErrorCodeDB, "write findings batch")
}

// Close implements domain.WriterPort; the pool is owned by the caller
func (s *PG) Close() error { return nil }

// List implements domain.ReaderPort, newest first
func (s *PG) List(ctx context.Context, limit, offset int) ([]domain.Finding, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.q.Query(ctx, `
		SELECT owner, repo, file, line, secret_type, masked_text, ts, repo_url, file_url
		FROM findings
		ORDER BY ts DESC, owner, repo, file, line
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "list findings")
	}
	defer rows.Close()

	var out []domain.Finding
	for rows.Next() {
		var f domain.Finding
		if err := rows.Scan(
			&f.Owner, &f.Repo, &f.File, &f.Line, &f.SecretType,
			&f.MaskedText, &f.Timestamp, &f.RepoURL, &f.FileURL,
		); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "scan finding")
		}
		out = append(out, f)
	}
	return out, perr.WrapIf(rows.Err(), perr.ErrorCodeDB, "list findings rows")
}
