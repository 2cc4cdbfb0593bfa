package jqldb

import (
	"github.com/docstore/jqldb/pkg/arena"
)

// Option configures a Compile call, grounded on gosonata's
// Compile(query string, opts ...parser.CompileOption) / EvalOption alias
// pattern (gosonata.go). No config files, no env vars — options are passed
// as Go values only.
type Option func(*options)

type options struct {
	arenaBlockSize int
	stackInline    int
	keepSource     bool
}

func defaultOptions() options {
	return options{
		arenaBlockSize: arena.DefaultBlockSize,
		keepSource:     true,
	}
}

// WithMaxArenaBlockGrowth sets the block size the session's arena grows its
// text blocks by. Larger values trade memory headroom for fewer block
// allocations on large queries.
func WithMaxArenaBlockGrowth(bytes int) Option {
	return func(o *options) { o.arenaBlockSize = bytes }
}

// WithMaxStackInlineDepth sets the number of parser-stack frames held in
// the fixed inline pool before spilling to the heap.
func WithMaxStackInlineDepth(depth int) Option {
	return func(o *options) { o.stackInline = depth }
}

// WithKeepSource controls whether the Session retains a copy of the
// original query text for Source(). Disabling it lets the input buffer be
// released once compilation finishes, at the cost of Source() returning
// the empty string.
func WithKeepSource(keep bool) Option {
	return func(o *options) { o.keepSource = keep }
}
