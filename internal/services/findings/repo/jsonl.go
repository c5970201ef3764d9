// Package repo provides the findings sink implementations
package repo

import (
	"bufio"
	"context"
	json "encoding/json/v2"
	"os"
	"sort"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/services/findings/domain"
)

// JSONL appends findings to a file, one self-contained JSON record per line
type JSONL struct {
	path string
	f    *os.File
}

// NewJSONL opens (or creates) the findings file in append mode
func NewJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open findings file %s", path)
	}
	return &JSONL{path: path, f: f}, nil
}

// Write implements domain.WriterPort
func (j *JSONL) Write(_ context.Context, fd domain.Finding) error {
	b, err := json.Marshal(fd)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "marshal finding")
	}
	b = append(b, '\n')
	if _, err := j.f.Write(b); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "append finding")
	}
	return nil
}

// WriteBatch implements domain.WriterPort
func (j *JSONL) WriteBatch(ctx context.Context, xs []domain.Finding) error {
	for _, fd := range xs {
		if err := j.Write(ctx, fd); err != nil {
			return err
		}
	}
	return nil
}

// Close implements domain.WriterPort
func (j *JSONL) Close() error { return j.f.Close() }

// List implements domain.ReaderPort over the same file, newest first.
// Unparseable lines are skipped rather than failing the whole read
func (j *JSONL) List(_ context.Context, limit, offset int) ([]domain.Finding, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open findings file %s", j.path)
	}
	defer func() { _ = f.Close() }()

	var all []domain.Finding
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var fd domain.Finding
		if err := json.Unmarshal(line, &fd); err != nil {
			continue
		}
		all = append(all, fd)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read findings file %s", j.path)
	}

	sort.SliceStable(all, func(a, b int) bool { return all[a].Timestamp.After(all[b].Timestamp) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
