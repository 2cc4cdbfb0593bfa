package arena_test

import (
	"testing"

	"github.com/docstore/jqldb/pkg/arena"
	"github.com/docstore/jqldb/pkg/ast"
)

func TestAllocGrowsAcrossBlocks(t *testing.T) {
	a := arena.New()
	var bufs [][]byte
	for i := 0; i < 200; i++ {
		b := a.Alloc(64)
		if len(b) != 64 {
			t.Fatalf("Alloc(64) returned len %d", len(b))
		}
		bufs = append(bufs, b)
	}
	// Every allocation must remain independently addressable: writing
	// through one slice must never bleed into another.
	for i, b := range bufs {
		for j := range b {
			b[j] = byte(i)
		}
	}
	for i, b := range bufs {
		for j := range b {
			if b[j] != byte(i) {
				t.Fatalf("allocation %d corrupted at offset %d", i, j)
			}
		}
	}
}

func TestAllocZero(t *testing.T) {
	a := arena.New()
	if got := a.Alloc(0); got != nil {
		t.Fatalf("Alloc(0) = %v, want nil", got)
	}
}

func TestStrdupIndependentFromSource(t *testing.T) {
	a := arena.New()
	src := []byte("hello")
	got := a.Strdup(string(src))
	src[0] = 'X'
	if got != "hello" {
		t.Fatalf("Strdup result mutated via source buffer: %q", got)
	}
}

func TestLenTracksAllocations(t *testing.T) {
	a := arena.New()
	a.Alloc(10)
	a.Alloc(20)
	if a.Len() != 30 {
		t.Fatalf("Len() = %d, want 30", a.Len())
	}
}

func TestAllocUnitGrowsAcrossChunksAndStaysDistinct(t *testing.T) {
	a := arena.New()
	var units []*ast.Unit
	for i := 0; i < 200; i++ {
		units = append(units, a.AllocUnit())
	}
	for i, u := range units {
		u.SetNext(nil)
		_ = i
	}
	seen := make(map[*ast.Unit]bool, len(units))
	for _, u := range units {
		if seen[u] {
			t.Fatalf("AllocUnit returned the same pointer twice")
		}
		seen[u] = true
	}
}

func TestAllocJSONNodeGrowsAcrossChunksAndStaysDistinct(t *testing.T) {
	a := arena.New()
	var nodes []*ast.JSONNode
	for i := 0; i < 200; i++ {
		nodes = append(nodes, a.AllocJSONNode())
	}
	seen := make(map[*ast.JSONNode]bool, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			t.Fatalf("AllocJSONNode returned the same pointer twice")
		}
		seen[n] = true
	}
}

func TestStrdupStringAliasesArenaMemory(t *testing.T) {
	a := arena.New()
	got := a.Strdup("hello")
	if got != "hello" {
		t.Fatalf("Strdup = %q, want %q", got, "hello")
	}
	// A second, unrelated Strdup must not disturb the first result: each
	// call gets its own arena bytes, never overlapping another's.
	other := a.Strdup("world")
	if got != "hello" || other != "world" {
		t.Fatalf("Strdup results = %q, %q, want %q, %q", got, other, "hello", "world")
	}
}

func TestStrdupEmpty(t *testing.T) {
	a := arena.New()
	if got := a.Strdup(""); got != "" {
		t.Fatalf("Strdup(\"\") = %q, want empty", got)
	}
}
