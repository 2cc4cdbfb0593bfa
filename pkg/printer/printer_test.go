package printer_test

import (
	"strings"
	"testing"

	"github.com/docstore/jqldb/pkg/arena"
	"github.com/docstore/jqldb/pkg/parser"
	"github.com/docstore/jqldb/pkg/printer"
)

// roundTrip parses query, prints the result, and reparses the printed text,
// returning both ASTs' printed forms so the caller can compare them.
func roundTrip(t *testing.T, query string) (first, second string) {
	t.Helper()
	res1, err := parser.Parse(arena.New(), query)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", query, err)
	}
	first, err = printer.Sprint(res1.Query)
	if err != nil {
		t.Fatalf("Sprint error: %v", err)
	}
	res2, err := parser.Parse(arena.New(), first)
	if err != nil {
		t.Fatalf("re-Parse(%q) error: %v", first, err)
	}
	second, err = printer.Sprint(res2.Query)
	if err != nil {
		t.Fatalf("re-Sprint error: %v", err)
	}
	return first, second
}

func TestRoundTripSimpleEquality(t *testing.T) {
	first, second := roundTrip(t, `/foo/[bar = 42]`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
}

func TestRoundTripNegatedOp(t *testing.T) {
	first, second := roundTrip(t, `/[tags not in ["a","b"]]`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
}

func TestRoundTripNegatedJoin(t *testing.T) {
	first, second := roundTrip(t, `/[a = 1] and not /[b = 2]`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
}

func TestRoundTripEqNegationPrintsNotEquals(t *testing.T) {
	first, _ := roundTrip(t, `/[status not = "done"]`)
	if !containsAll(first, "!=", "done") {
		t.Fatalf("printed form %q missing != rendering", first)
	}
}

func TestRoundTripProjectionWithFieldBlockAndExclude(t *testing.T) {
	first, second := roundTrip(t, `/users/[age > 18] | /{name,age} - /secret`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
	if !containsAll(first, "{name,age}", "- /secret") {
		t.Fatalf("printed form %q missing expected projection syntax", first)
	}
}

func TestRoundTripApplyPlaceholder(t *testing.T) {
	first, second := roundTrip(t, `/[active = true] | apply :patch`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
	if !containsAll(first, "apply :patch") {
		t.Fatalf("printed form %q missing apply placeholder", first)
	}
}

func TestRoundTripApplyJSONLiteral(t *testing.T) {
	first, second := roundTrip(t, `/[a = 1] | apply {"status": "done", "count": 3}`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
	if !containsAll(first, `"status":"done"`, `"count":3`) {
		t.Fatalf("printed form %q missing expected JSON apply rendering", first)
	}
}

func TestRoundTripWildcards(t *testing.T) {
	first, second := roundTrip(t, `/users/*/profile/**`)
	if first != second {
		t.Fatalf("round-trip mismatch: %q != %q", first, second)
	}
	if !containsAll(first, "/users/*/profile/**") {
		t.Fatalf("printed form %q lost wildcard segments", first)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
