// Package repo provides the scan service's persistent repository set
package repo

import (
	"bufio"
	"io"
	"os"
	"strings"

	perr "overwatch/internal/platform/errors"
)

// SeenFile is a file-backed set of "owner/name" lines. The file is loaded
// once at open and appended to on every Add, so a crash loses at most the
// repository being scanned when it happened
type SeenFile struct {
	path string
	f    *os.File
	set  map[string]struct{}
}

// OpenSeenFile loads (or creates) the set at path
func OpenSeenFile(path string) (*SeenFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open seen set %s", path)
	}

	set := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read seen set %s", path)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "seek seen set %s", path)
	}
	return &SeenFile{path: path, f: f, set: set}, nil
}

func key(owner, name string) string { return owner + "/" + name }

// Seen reports whether the repository is already in the set
func (s *SeenFile) Seen(owner, name string) bool {
	_, ok := s.set[key(owner, name)]
	return ok
}

// Add records the repository, appending to the backing file immediately.
// Adding a repository twice is a no-op
func (s *SeenFile) Add(owner, name string) error {
	k := key(owner, name)
	if _, ok := s.set[k]; ok {
		return nil
	}
	if _, err := s.f.WriteString(k + "\n"); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "append seen set %s", s.path)
	}
	s.set[k] = struct{}{}
	return nil
}

// Len returns the number of repositories in the set
func (s *SeenFile) Len() int { return len(s.set) }

// Close releases the backing file
func (s *SeenFile) Close() error { return s.f.Close() }
