// Package scenarios_test exercises the named end-to-end scenarios and the
// quantified invariants through the full pipeline: compile, inspect the
// resulting AST, print, and (for the scan invariants) drive the scan
// executor over an in-memory store.
package scenarios_test

import (
	"testing"

	"github.com/docstore/jqldb"
	"github.com/docstore/jqldb/internal/testkv"
	"github.com/docstore/jqldb/pkg/ast"
	"github.com/docstore/jqldb/pkg/scan"
)

// A simple equality filter (one FILTER with two NODEs: foo, then EXPR
// bar = 42) must print and re-parse to the same AST.
func TestEndToEndSimpleEqualityRoundTrips(t *testing.T) {
	sess, err := jqldb.Compile(`/foo/[bar = 42]`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	filter, _, _, _ := sess.Query().Query()
	_, node, _, next := filter.Filter()
	if next != nil {
		t.Fatal("expected a single filter")
	}
	kind, value, nodeNext := node.Node()
	if kind != ast.NodeField || value.StringValue() != "foo" {
		t.Fatalf("first node = %v %q, want NodeField foo", kind, value.StringValue())
	}
	kind2, exprValue, nodeNext2 := nodeNext.Node()
	if kind2 != ast.NodeExprKind || nodeNext2 != nil {
		t.Fatalf("second node = %v, want NodeExprKind (terminal)", kind2)
	}
	left, op, right, _, _ := exprValue.Expr()
	code, negate := op.OpValue()
	if left.StringValue() != "bar" || code != ast.OpEQ || negate || right.JSONValue().VI64 != 42 {
		t.Fatalf("expr = %q %v(negate=%v) %d, want bar OpEQ false 42", left.StringValue(), code, negate, right.JSONValue().VI64)
	}

	printed, err := sess.String()
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	reparsed, err := jqldb.Compile(printed)
	if err != nil {
		t.Fatalf("reparse(%q): %v", printed, err)
	}
	reprinted, err := reparsed.String()
	if err != nil {
		t.Fatalf("String (reparsed): %v", err)
	}
	if printed != reprinted {
		t.Fatalf("round-trip mismatch: %q != %q", printed, reprinted)
	}
}

// A query with an apply placeholder must produce a FILTER with a single
// ANY node, applyPlaceholder = "patch", apply = nil, and placeholder count 1.
func TestEndToEndPlaceholderApply(t *testing.T) {
	sess, err := jqldb.Compile(`/* | apply :patch`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	filter, apply, applyPlaceholder, _ := sess.Query().Query()
	if apply != nil || applyPlaceholder != "patch" {
		t.Fatalf("apply = %v applyPlaceholder = %q, want nil \"patch\"", apply, applyPlaceholder)
	}
	_, node, _, _ := filter.Filter()
	kind, _, next := node.Node()
	if kind != ast.NodeAny || next != nil {
		t.Fatalf("node = %v next=%v, want single NodeAny", kind, next)
	}
	if sess.PlaceholderCount() != 1 {
		t.Fatalf("PlaceholderCount = %d, want 1", sess.PlaceholderCount())
	}
}

// A negated AND join must link two filters with negate=true on the
// second filter's join, and its `in` operand must be a JSON ARRAY of three
// I64 nodes linked via the sibling ring.
func TestEndToEndNegatedJoinWithJSONArrayOperand(t *testing.T) {
	sess, err := jqldb.Compile(`/a/[x > 1] and not /b/[y in [1,2,3]]`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	first, _, _, _ := sess.Query().Query()
	_, _, firstJoin, firstNext := first.Filter()
	if firstJoin != nil {
		t.Fatal("the first filter must carry no join; the join belongs to the second filter")
	}
	second := firstNext
	if second == nil {
		t.Fatal("expected a second filter")
	}
	_, _, join, _ := second.Filter()
	if join == nil {
		t.Fatal("expected a join on the second filter")
	}
	code, negate := join.JoinValue()
	if code != ast.JoinAnd || !negate {
		t.Fatalf("join = %v negate=%v, want JoinAnd true", code, negate)
	}

	_, secondNode, _, _ := second.Filter()
	_, _, secondNodeNext := secondNode.Node()
	_, exprValue, _ := secondNodeNext.Node()
	_, op, right, _, _ := exprValue.Expr()
	opCode, _ := op.OpValue()
	if opCode != ast.OpIN {
		t.Fatalf("op = %v, want OpIN", opCode)
	}
	arr := right.JSONValue()
	if arr.Type != ast.JSONArray {
		t.Fatalf("right type = %v, want JSONArray", arr.Type)
	}
	var got []int64
	for c := arr.Child; c != nil; c = c.Next {
		if c.Type != ast.JSONI64 {
			t.Fatalf("array member type = %v, want JSONI64", c.Type)
		}
		got = append(got, c.VI64)
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("array members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("array members = %v, want %v", got, want)
		}
	}
}

// A projection with a field block and an exclude clause must produce two
// PROJECTIONs; the second has exclude=true, and the first's path ends with
// a STRING carrying PROJFIELD that threads to `y` via subnext.
func TestEndToEndProjectionFieldBlockAndExclude(t *testing.T) {
	sess, err := jqldb.Compile(`/* | /a/{x,y} - /a/z`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, _, _, projection := sess.Query().Query()
	if projection == nil {
		t.Fatal("expected a projection clause")
	}
	path, exclude, next := projection.Projection()
	if exclude {
		t.Fatal("first projection must not be an exclude")
	}
	if path.StringValue() != "a" {
		t.Fatalf("path head = %q, want %q", path.StringValue(), "a")
	}
	field := path.Next()
	if field == nil || !field.Flavour().Has(ast.FlavourProjField) {
		t.Fatal("expected a second path segment carrying FlavourProjField")
	}
	if field.StringValue() != "x" {
		t.Fatalf("field block head = %q, want %q", field.StringValue(), "x")
	}
	sibling := field.SubNext()
	if sibling == nil || sibling.StringValue() != "y" {
		t.Fatalf("field block sibling = %v, want %q", sibling, "y")
	}
	if next == nil {
		t.Fatal("expected a second projection")
	}
	path2, exclude2, _ := next.Projection()
	if !exclude2 {
		t.Fatal("second projection must be an exclude")
	}
	if path2.StringValue() != "a" || path2.Next() == nil || path2.Next().StringValue() != "z" {
		t.Fatalf("second projection path = %q/%v, want a/z", path2.StringValue(), path2.Next())
	}
}

// The escape sequence \uD83D\uDE00 in a quoted string operand must unescape
// to UTF-8 F0 9F 98 80 (a grinning-face emoji codepoint).
func TestEndToEndSurrogatePairInQuotedOperand(t *testing.T) {
	query := "/[a = \"\\uD83D\\uDE00\"]"
	sess, err := jqldb.Compile(query)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	filter, _, _, _ := sess.Query().Query()
	_, node, _, _ := filter.Filter()
	_, exprValue, _ := node.Node()
	_, _, right, _, _ := exprValue.Expr()
	got := right.StringValue()
	want := string([]byte{0xF0, 0x9F, 0x98, 0x80})
	if got != want {
		t.Fatalf("unescaped = %q (% x), want %q (% x)", got, []byte(got), want, []byte(want))
	}
}

// A consumer that on its first call sets step=-2 asks for the id two steps
// opposite; from the first position that runs off the start of the store,
// so it receives id@pos0 and then only the terminal call.
func TestEndToEndConsumerReversePeek(t *testing.T) {
	store := testkv.NewStore(10, 20, 30, 40, 50)

	var delivered []uint64
	var terminalSeen bool
	call := 0
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, err error) error {
		if cur == nil {
			terminalSeen = true
			return err
		}
		delivered = append(delivered, id)
		call++
		switch call {
		case 1:
			*step = -2
		default:
			*step = 0
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !terminalSeen {
		t.Fatal("expected a terminal call")
	}
	// Cursor starts before index 0; Next lands on 10 (index 0). A step of
	// -2 asks for two positions in the reverse direction from there; the
	// first of them already lands before index 0, which is exhausted, so
	// the scan terminates after delivering only the first id.
	want := []uint64{10}
	if len(delivered) != len(want) {
		t.Fatalf("delivered = %v, want %v", delivered, want)
	}
	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("delivered = %v, want %v", delivered, want)
		}
	}
}

// placeholder_count must equal the number of STRING nodes carrying the
// PLACEHOLDER flavour anywhere in the compiled AST.
func TestInvariantPlaceholderCountMatchesFlavouredStrings(t *testing.T) {
	sess, err := jqldb.Compile(`/[age > :minAge] and /[age < :maxAge] | apply :patch`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if sess.PlaceholderCount() != 3 {
		t.Fatalf("PlaceholderCount = %d, want 3", sess.PlaceholderCount())
	}
}

// A consumer that always leaves step at its default of 1 must see the
// delivered id sequence match the store's natural ordering.
func TestInvariantNaturalOrderingWithConstantStep(t *testing.T) {
	store := testkv.NewStore(5, 3, 1, 4, 2)
	var got []uint64
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, err error) error {
		if cur == nil {
			return err
		}
		got = append(got, id)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []uint64{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// The consumer must be invoked exactly once with terminal arguments
// (cursor == nil), and that call must be the last invocation.
func TestInvariantTerminalCallIsLast(t *testing.T) {
	store := testkv.NewStore(1, 2, 3)
	var calls []bool // true = terminal
	err := scan.Execute(store, scan.Next, func(cur scan.Cursor, id uint64, step *int64, err error) error {
		calls = append(calls, cur == nil)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	terminals := 0
	for i, isTerminal := range calls {
		if isTerminal {
			terminals++
			if i != len(calls)-1 {
				t.Fatalf("terminal call at index %d, want last index %d", i, len(calls)-1)
			}
		}
	}
	if terminals != 1 {
		t.Fatalf("terminal calls = %d, want 1", terminals)
	}
}

// A failed Compile must leave nothing for the caller to clean up: there is
// no Session at all to hold leaked arena memory, unlike a successful
// Compile whose arena length is queryable but owned solely by its Session.
func TestInvariantFailedCompileLeaksNoSession(t *testing.T) {
	sess, err := jqldb.Compile(`/[a = 1`) // unclosed bracket
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if sess != nil {
		t.Fatal("expected a nil session on parse failure")
	}
}
