// Package testkit holds small helpers shared by tests: seam swapping for
// package-level function variables and a couple of assertions
package testkit

import (
	"strings"
	"sync"
	"testing"
)

// serialMu guards tests that mutate package-level seams
var serialMu sync.Mutex

// Serial takes a process-wide lock for the duration of the test. Call it
// before Swap when the swapped seam is shared across parallel tests
func Serial(t *testing.T) {
	t.Helper()
	serialMu.Lock()
	t.Cleanup(serialMu.Unlock)
}

// Swap replaces *target with replacement until the test ends
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	saved := *target
	*target = replacement
	t.Cleanup(func() { *target = saved })
}

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails the test unless haystack contains needle, echoing a
// bounded tail of the haystack so log-assertion failures are readable
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	tail := haystack
	if len(tail) > 2048 {
		tail = "..." + tail[len(tail)-2048:]
	}
	t.Fatalf("expected output to contain %q\noutput tail:\n%s", needle, tail)
}
