// Package jqldb implements the core of an embedded, document-oriented JSON
// query language: a grammar, AST, printer, and a bidirectional scan
// executor for matching stored documents against a compiled query.
//
// jqldb compiles and prints queries; it does not store documents itself.
// The key-value ordering (pkg/scan.Store/Cursor) and the binary JBL
// document format (pkg/ast.JSONNode's (de)serialization) are external
// collaborators a caller wires in.
//
// # Quick Start
//
//	sess, err := jqldb.Compile(`/users/[age > 21] and /users/[active = true]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, _ := sess.String() // canonical re-print of the compiled query
//
//	err = sess.Scan(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, scanErr error) error {
//	    if cur == nil {
//	        return scanErr // terminal call
//	    }
//	    // evaluate sess.Query() against the document at id, set *step to
//	    // control the next cursor movement.
//	    return nil
//	})
//
// # Package Layout
//
//   - pkg/arena:   the bump allocator backing all parsed text and AST nodes (component A)
//   - pkg/jstring: JSON string unescaping, including surrogate pairs (component B)
//   - pkg/ast:     the Unit AST and embedded JSON literal tree (component D)
//   - pkg/parser:  the lexer, parser stack, and grammar driver (components C, E)
//   - pkg/printer: canonical AST-to-text rendering (component F)
//   - pkg/scan:    the bidirectional scan executor (component G)
//   - pkg/jqlerr:  the shared error taxonomy (component H)
package jqldb

import "fmt"

// Version identifies this module's query-language revision, independent of
// the module's own semantic version.
func Version() string {
	return "v0.1.0-dev"
}

// MustCompile is like Compile but panics if query fails to parse. It
// simplifies safe initialization of package-level query variables.
func MustCompile(query string, opts ...Option) *Session {
	sess, err := Compile(query, opts...)
	if err != nil {
		panic(fmt.Sprintf("jqldb: Compile(%q): %v", query, err))
	}
	return sess
}
