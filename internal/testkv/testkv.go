// Package testkv is an in-memory ordered key-value fake implementing
// pkg/scan's Cursor/Store contract, for exercising the scan executor
// without a real KV engine.
package testkv

import (
	"sort"

	"github.com/docstore/jqldb/pkg/jqlerr"
	"github.com/docstore/jqldb/pkg/scan"
)

// Store is a fixed, sorted set of uint64 ids.
type Store struct {
	ids []uint64
}

// NewStore builds a Store from ids, sorted ascending.
func NewStore(ids ...uint64) *Store {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &Store{ids: sorted}
}

// OpenCursor implements scan.Store, starting positioned before the first id.
func (s *Store) OpenCursor() (scan.Cursor, error) {
	return &cursor{ids: s.ids, pos: -1}, nil
}

type cursor struct {
	ids    []uint64
	pos    int
	closed bool
}

func (c *cursor) To(dir scan.Direction) error {
	if dir == scan.Next {
		c.pos++
	} else {
		c.pos--
	}
	if c.pos < 0 || c.pos >= len(c.ids) {
		return jqlerr.New(jqlerr.KindKVNotFound, "cursor exhausted")
	}
	return nil
}

func (c *cursor) CopyKey() (uint64, error) {
	if c.pos < 0 || c.pos >= len(c.ids) {
		return 0, jqlerr.New(jqlerr.KindKVCorrupted, "cursor not positioned on a key")
	}
	return c.ids[c.pos], nil
}

func (c *cursor) Close() error {
	c.closed = true
	return nil
}
