package scan_test

import (
	"testing"

	"github.com/docstore/jqldb/internal/testkv"
	"github.com/docstore/jqldb/pkg/scan"
)

func TestExecuteForwardDeliversAllIDsInOrder(t *testing.T) {
	store := testkv.NewStore(10, 20, 30, 40)
	var got []uint64
	terminalCalls := 0
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, scanErr error) error {
		if cur == nil {
			terminalCalls++
			if scanErr != nil {
				t.Fatalf("terminal error: %v", scanErr)
			}
			return nil
		}
		got = append(got, id)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	want := []uint64{10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if terminalCalls != 1 {
		t.Fatalf("terminal call count = %d, want 1", terminalCalls)
	}
}

func TestExecuteTerminalCallIsAlwaysLast(t *testing.T) {
	store := testkv.NewStore(1, 2, 3)
	var calls []uint64
	var sawTerminal bool
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, scanErr error) error {
		if cur == nil {
			sawTerminal = true
			return nil
		}
		if sawTerminal {
			t.Fatal("delivered an id after the terminal call")
		}
		calls = append(calls, id)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !sawTerminal {
		t.Fatal("terminal call never happened")
	}
	if len(calls) != 3 {
		t.Fatalf("got %d ids, want 3", len(calls))
	}
}

func TestExecuteSkipForwardStep(t *testing.T) {
	store := testkv.NewStore(1, 2, 3, 4, 5)
	var got []uint64
	first := true
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, scanErr error) error {
		if cur == nil {
			return nil
		}
		got = append(got, id)
		if first {
			// Skip one extra position: deliver 1, then 3 (skipping 2).
			*step = 2
			first = false
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	want := []uint64{1, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExecutePropagatesConsumerError(t *testing.T) {
	store := testkv.NewStore(1, 2, 3)
	boom := &stopError{}
	terminalErr := error(nil)
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, scanErr error) error {
		if cur == nil {
			terminalErr = scanErr
			return nil
		}
		return boom
	})
	if err != boom {
		t.Fatalf("Execute error = %v, want %v", err, boom)
	}
	if terminalErr != boom {
		t.Fatalf("terminal scanErr = %v, want %v", terminalErr, boom)
	}
}

type stopError struct{}

func (*stopError) Error() string { return "stop" }
