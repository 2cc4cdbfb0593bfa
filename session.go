package jqldb

import (
	"github.com/docstore/jqldb/pkg/arena"
	"github.com/docstore/jqldb/pkg/ast"
	"github.com/docstore/jqldb/pkg/jqlerr"
	"github.com/docstore/jqldb/pkg/parser"
	"github.com/docstore/jqldb/pkg/printer"
	"github.com/docstore/jqldb/pkg/scan"
)

// Session is a single compiled query (component I): the parse arena, the
// resulting AST, and the bookkeeping a caller needs to bind placeholders
// and drive a scan. A Session is not safe for concurrent use — like its
// Arena, it is owned by one goroutine for its entire lifetime.
type Session struct {
	arena            *arena.Arena
	source           string
	query            *ast.Unit
	placeholderCount int
}

// Compile parses query into a Session. The returned error, if any, is a
// *jqlerr.Error carrying near-token diagnostic context (component H). opts
// configures the session's arena and parser stack (see Option); the zero
// value of every option matches gosonata's Compile defaults.
func Compile(query string, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := arena.NewWithBlockSize(o.arenaBlockSize)
	res, err := parser.Parse(a, query, parser.WithMaxStackInline(o.stackInline))
	if err != nil {
		return nil, err
	}
	source := query
	if !o.keepSource {
		source = ""
	}
	return &Session{arena: a, source: source, query: res.Query, placeholderCount: res.PlaceholderCount}, nil
}

// Query returns the compiled QUERY unit at the root of the AST.
func (s *Session) Query() *ast.Unit { return s.query }

// PlaceholderCount returns the number of `:name` placeholders in the query
// text. Every occurrence counts, so a name used twice counts twice.
func (s *Session) PlaceholderCount() int { return s.placeholderCount }

// Source returns the original query text the Session was compiled from.
func (s *Session) Source() string { return s.source }

// String renders the compiled query back to its canonical text form
// (component F). For a query parsed from valid input, String is expected
// to re-parse to an AST equal to the original.
func (s *Session) String() (string, error) {
	return printer.Sprint(s.query)
}

// Scan drives the scan executor (component G) over store using dir as the
// primary direction, invoking consumer once per delivered id and once more
// at the end with a terminal call. It's a thin convenience wrapper; callers
// needing finer control can call scan.Execute directly.
func (s *Session) Scan(store scan.Store, dir scan.Direction, consumer scan.Consumer) error {
	if s.query == nil {
		return jqlerr.New(jqlerr.KindInvalidArgs, "session has no compiled query")
	}
	return scan.Execute(store, dir, consumer)
}

// ArenaLen reports the number of text bytes the session's arena has
// allocated (node-pool storage is not included),
// exposed for diagnostics and a zero-leak-on-destroy check: once a Session
// is dropped, nothing outside its Arena refers to arena-owned memory.
func (s *Session) ArenaLen() int { return s.arena.Len() }
