package querybank

import (
	"os"
	"path/filepath"
	"testing"

	perr "overwatch/internal/platform/errors"
	kit "overwatch/internal/platform/testkit"
)

func tempBank(t *testing.T) *Bank {
	t.Helper()
	b, err := Load(filepath.Join(t.TempDir(), "query_bank.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestLoadMissingFileIsEmptyBank(t *testing.T) {
	b := tempBank(t)
	if b.Len() != 0 {
		t.Fatalf("fresh bank has %d entries", b.Len())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query_bank.yaml")
	if err := os.WriteFile(path, []byte("queries: ["), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := Load(path); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected Validation error, got %v", err)
	}
}

func TestAddDeleteRoundTrip(t *testing.T) {
	b := tempBank(t)

	q1, err := b.Add("env files", "filename:.env", []string{"env", "config"}, 5)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if q1.ID != 1 {
		t.Fatalf("first id = %d, want 1", q1.ID)
	}
	q2, err := b.Add("firebase", "filename:google-services.json", []string{"mobile"}, 0)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if q2.ID != 2 {
		t.Fatalf("second id = %d, want 2", q2.ID)
	}

	// survives a reload
	b2, err := Load(b.path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if b2.Len() != 2 {
		t.Fatalf("reloaded %d entries, want 2", b2.Len())
	}
	got, ok := b2.Get(1)
	if !ok || got.Query != "filename:.env" || len(got.Tags) != 2 {
		t.Fatalf("entry mismatch after reload: %+v", got)
	}

	if err := b2.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := b2.Delete(1); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("double delete should be NotFound, got %v", err)
	}

	// deleting id 1 does not recycle id 2, next is 3
	if b2.NextID() != 3 {
		t.Fatalf("NextID = %d, want 3", b2.NextID())
	}
}

func TestAddValidation(t *testing.T) {
	b := tempBank(t)
	if _, err := b.Add("", "filename:.env", nil, 0); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing name should fail validation, got %v", err)
	}
	if _, err := b.Add("x", "", nil, 0); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing query should fail validation, got %v", err)
	}
	if _, err := b.Add("x", "q", nil, -1); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("negative max_repos should fail validation, got %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("invalid entries were stored")
	}
}

func TestFilterByTag(t *testing.T) {
	b := tempBank(t)
	mustAdd(t, b, "a", "qa", []string{"env"})
	mustAdd(t, b, "b", "qb", []string{"mobile", "ENV"})
	mustAdd(t, b, "c", "qc", nil)

	got := b.FilterByTag("env")
	if len(got) != 2 {
		t.Fatalf("filter matched %d, want 2", len(got))
	}
	if len(b.FilterByTag("nope")) != 0 {
		t.Fatalf("unknown tag should match nothing")
	}
}

func TestRandom(t *testing.T) {
	b := tempBank(t)
	if _, err := b.Random(); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty bank Random should be NotFound, got %v", err)
	}

	mustAdd(t, b, "a", "qa", nil)
	mustAdd(t, b, "b", "qb", nil)

	kit.Serial(t)
	kit.Swap(t, &randIntN, func(n int) int { return n - 1 })
	q, err := b.Random()
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if q.Name != "b" {
		t.Fatalf("Random picked %q, want the seam-selected last entry", q.Name)
	}
}

func mustAdd(t *testing.T, b *Bank, name, query string, tags []string) {
	t.Helper()
	if _, err := b.Add(name, query, tags, 0); err != nil {
		t.Fatalf("Add %s: %v", name, err)
	}
}
