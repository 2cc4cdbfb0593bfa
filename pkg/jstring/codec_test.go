package jstring_test

import (
	"testing"

	"github.com/docstore/jqldb/pkg/jqlerr"
	"github.com/docstore/jqldb/pkg/jstring"
)

func TestDecodeSimpleEscapes(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"backslash", `\\`, `\`},
		{"slash", `\/`, `/`},
		{"quote", `\"`, `"`},
		{"backspace", `\b`, "\b"},
		{"formfeed", `\f`, "\f"},
		{"newline", `\n`, "\n"},
		{"carriage return", `\r`, "\r"}, // decodes to CR, not LF
		{"tab", `\t`, "\t"},
		{"plain", "hello", "hello"},
		{"unknown escape passes through", `\z`, "z"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := jstring.Unescape(c.in)
			if err != nil {
				t.Fatalf("Unescape(%q) error: %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("Unescape(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

// TestDecodedLenMatchesWrittenBytes checks the two-pass contract: the byte
// count a nil-destination call promises matches what a real write produces.
func TestDecodedLenMatchesWrittenBytes(t *testing.T) {
	inputs := []string{`hello`, `\n\t\\`, `é`, `😀`, ``}
	for _, in := range inputs {
		n, err := jstring.DecodedLen(in)
		if err != nil {
			t.Fatalf("DecodedLen(%q) error: %v", in, err)
		}
		buf := make([]byte, n)
		written, err := jstring.Decode(in, buf)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", in, err)
		}
		if written != n {
			t.Fatalf("Decode(%q) wrote %d bytes, pass-1 promised %d", in, written, n)
		}
	}
}

// TestSurrogatePair checks that a UTF-16 surrogate pair escape decodes to
// the single astral codepoint it encodes.
func TestSurrogatePair(t *testing.T) {
	got, err := jstring.Unescape("\\uD83D\\uDE00")
	if err != nil {
		t.Fatalf("Unescape error: %v", err)
	}
	want := "\U0001F600" // 0x10000 + (0xD83D-0xD800)*0x400 + (0xDE00-0xDC00)
	if got != want {
		t.Fatalf("Unescape(surrogate pair) = %q (% x), want %q (% x)", got, []byte(got), want, []byte(want))
	}
}

func TestUnpairedHighSurrogateFails(t *testing.T) {
	_, err := jstring.Unescape(`\uD800`)
	assertInvalidCodepoint(t, err)
}

func TestHighSurrogateNotFollowedByLowFails(t *testing.T) {
	_, err := jstring.Unescape(`\uD800A`)
	assertInvalidCodepoint(t, err)
}

func TestLoneLowSurrogateFails(t *testing.T) {
	_, err := jstring.Unescape(`\uDC00`)
	assertInvalidCodepoint(t, err)
}

func TestTruncatedEscapeFails(t *testing.T) {
	_, err := jstring.Unescape(`\u12`)
	assertInvalidCodepoint(t, err)
}

func assertInvalidCodepoint(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	je, ok := err.(*jqlerr.Error)
	if !ok {
		t.Fatalf("expected *jqlerr.Error, got %T", err)
	}
	if je.Kind != jqlerr.KindInvalidCodepoint {
		t.Fatalf("Kind = %v, want %v", je.Kind, jqlerr.KindInvalidCodepoint)
	}
}
