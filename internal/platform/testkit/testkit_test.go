package testkit

import (
	"testing"
	"time"
)

var testSeam = func() string { return "real" }

func TestSwapRestoresOnCleanup(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Swap(t, &testSeam, func() string { return "fake" })
		if got := testSeam(); got != "fake" {
			t.Fatalf("swapped seam returned %q", got)
		}
	})
	if got := testSeam(); got != "real" {
		t.Fatalf("seam not restored after subtest, got %q", got)
	}
}

func TestSerialExcludes(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	t.Run("holder", func(t *testing.T) {
		Serial(t)
		go func() {
			serialMu.Lock()
			close(entered)
			serialMu.Unlock()
		}()
		select {
		case <-entered:
			t.Fatal("lock acquired while Serial held it")
		case <-time.After(50 * time.Millisecond):
		}
		close(release)
	})

	<-release
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("lock never released after test cleanup")
	}
}

func TestMustPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
}

func TestMustContain(t *testing.T) {
	MustContain(t, "abc def ghi", "def")
}
