// Package arena implements the bump/region allocator backing a parse
// session's AST (component A). All values allocated from an Arena share
// the session's lifetime; there is no per-node free — the whole arena is
// dropped at once when the session ends.
//
// Allocation is byte-granular for raw text (component B's unescaped
// strings) and chunk-granular for the typed node pools backing the several
// Unit and JSONNode variants (component D), mirroring gosonata's NodeArena:
// instead of one GC-tracked object per node, nodes come from pre-allocated
// fixed-size chunks and the arena itself is the only thing the GC needs to
// track.
package arena

import (
	"unsafe"

	"github.com/docstore/jqldb/pkg/ast"
)

// DefaultBlockSize is the size of each growable text block, grown as needed.
const DefaultBlockSize = 4096

// unitChunkSize and jsonChunkSize are the number of Unit/JSONNode values
// pre-allocated per arena chunk, mirroring gosonata's arenaChunkSize: most
// queries fit comfortably inside one or two chunks.
const (
	unitChunkSize = 64
	jsonChunkSize = 64
)

// Arena is a bump allocator over a list of growable byte blocks, plus two
// typed node pools.
//
// Not safe for concurrent use — a session (and therefore its Arena) is
// owned by a single goroutine for its entire lifetime.
type Arena struct {
	blockSize int
	blocks    [][]byte
	total     int // cumulative text bytes allocated, for diagnostics

	units   [][]ast.Unit
	unitPos int
	jsons   [][]ast.JSONNode
	jsonPos int
}

// New creates an Arena using DefaultBlockSize for its text blocks.
func New() *Arena {
	return NewWithBlockSize(DefaultBlockSize)
}

// NewWithBlockSize creates an Arena whose text blocks grow in increments of
// blockSize (at least DefaultBlockSize, to keep pathologically small values
// from causing excessive block churn).
func NewWithBlockSize(blockSize int) *Arena {
	if blockSize < DefaultBlockSize {
		blockSize = DefaultBlockSize
	}
	return &Arena{
		blockSize: blockSize,
		blocks:    [][]byte{make([]byte, 0, blockSize)},
	}
}

// Alloc returns n uninitialized bytes from the arena. The returned slice is
// valid for the lifetime of the Arena. A request larger than the current
// block's remaining capacity grows a new block sized to fit it (rounded up
// to the arena's block size), mirroring iwpool's block-growth behavior.
func (a *Arena) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	last := a.blocks[len(a.blocks)-1]
	if cap(last)-len(last) < n {
		size := a.blockSize
		if n > size {
			size = n
		}
		last = make([]byte, 0, size)
		a.blocks = append(a.blocks, last)
	}
	idx := len(a.blocks) - 1
	start := len(a.blocks[idx])
	a.blocks[idx] = a.blocks[idx][:start+n]
	a.total += n
	return a.blocks[idx][start : start+n : start+n]
}

// Strdup copies text into an arena-owned byte slice and returns a string
// aliasing that same memory directly — not a further GC-heap copy — since
// the arena never frees or reuses the bytes behind a returned string. All
// parsed text is pool-allocated and immutable once attached to the AST this
// way.
func (a *Arena) Strdup(text string) string {
	if text == "" {
		return ""
	}
	buf := a.Alloc(len(text))
	copy(buf, text)
	return unsafe.String(&buf[0], len(buf))
}

// Len returns the total number of text bytes allocated from this arena so
// far. Node-pool storage is tracked separately and not included.
func (a *Arena) Len() int {
	return a.total
}

// AllocUnit returns a zero-valued *ast.Unit from the arena's Unit pool,
// implementing ast.Allocator. Exhausting the current chunk allocates a new
// one; nodes are never recycled, so a freshly grown chunk's zero values are
// always correct.
func (a *Arena) AllocUnit() *ast.Unit {
	if len(a.units) == 0 || a.unitPos >= unitChunkSize {
		a.units = append(a.units, make([]ast.Unit, unitChunkSize))
		a.unitPos = 0
	}
	u := &a.units[len(a.units)-1][a.unitPos]
	a.unitPos++
	return u
}

// AllocJSONNode returns a zero-valued *ast.JSONNode from the arena's
// JSONNode pool, implementing ast.Allocator.
func (a *Arena) AllocJSONNode() *ast.JSONNode {
	if len(a.jsons) == 0 || a.jsonPos >= jsonChunkSize {
		a.jsons = append(a.jsons, make([]ast.JSONNode, jsonChunkSize))
		a.jsonPos = 0
	}
	n := &a.jsons[len(a.jsons)-1][a.jsonPos]
	a.jsonPos++
	return n
}
