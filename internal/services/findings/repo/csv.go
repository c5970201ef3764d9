package repo

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/services/findings/domain"
)

var csvHeader = []string{
	"owner", "repo", "file", "line", "secret_type", "masked_text", "timestamp", "repo_url", "file_url",
}

// CSV appends findings to a spreadsheet-friendly file.
// The header row is written once, when the file is created empty
type CSV struct {
	f *os.File
	w *csv.Writer
}

// NewCSV opens (or creates) the findings file in append mode
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open findings csv %s", path)
	}
	c := &CSV{f: f, w: csv.NewWriter(f)}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "stat findings csv %s", path)
	}
	if st.Size() == 0 {
		if err := c.w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "write csv header")
		}
		c.w.Flush()
	}
	return c, nil
}

// Write implements domain.WriterPort
func (c *CSV) Write(_ context.Context, fd domain.Finding) error {
	rec := []string{
		fd.Owner,
		fd.Repo,
		fd.File,
		strconv.Itoa(fd.Line),
		fd.SecretType,
		fd.MaskedText,
		fd.Timestamp.UTC().Format(time.RFC3339),
		fd.RepoURL,
		fd.FileURL,
	}
	if err := c.w.Write(rec); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "append csv finding")
	}
	c.w.Flush()
	return perr.WrapIf(c.w.Error(), perr.ErrorCodeUnknown, "flush csv finding")
}

// WriteBatch implements domain.WriterPort
func (c *CSV) WriteBatch(ctx context.Context, xs []domain.Finding) error {
	for _, fd := range xs {
		if err := c.Write(ctx, fd); err != nil {
			return err
		}
	}
	return nil
}

// Close implements domain.WriterPort
func (c *CSV) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.f.Close()
		return err
	}
	return c.f.Close()
}
