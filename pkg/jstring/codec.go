// Package jstring implements the JSON string unescaper (component B):
// standard escapes, \uXXXX, and surrogate-pair handling with Unicode
// codepoint validation.
//
// Decode supports a two-pass contract (a nil destination measures, a
// caller-provided buffer writes) so an arena allocation can be sized with a
// dry run before writing. It fails closed on invalid surrogate pairs and
// codepoints rather than falling back to a lone replacement rune.
package jstring

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/docstore/jqldb/pkg/jqlerr"
)

// DecodedLen returns the number of bytes Decode would write for src, without
// writing anything. This is pass one of the two-pass contract.
func DecodedLen(src string) (int, error) {
	return Decode(src, nil)
}

// Decode unescapes src (the content between the quotes of a JSON string
// literal, not including the quotes) into dst and returns the number of
// bytes written.
//
// If dst is nil, Decode only measures: it returns the length that a
// subsequent call with a correctly sized buffer would write, performing no
// writes. Passing a dst shorter than that length truncates silently (the
// caller is expected to size dst from a prior nil-dst call); passing a
// longer one is fine, only the prefix is used.
//
// Recognized escapes: \\ \/ \" \b \f \n \r \t \uXXXX. \r decodes to CR
// (0x0D), not LF. A leading UTF-16
// high surrogate (0xD800-0xDBFF) must be immediately followed by \u plus a
// low surrogate (0xDC00-0xDFFF); any other escape or codepoint that fails
// Unicode validation returns PARSE_INVALID_CODEPOINT and writes nothing
// further. Unknown single-character escapes (e.g. \z) pass the escaped
// character through literally.
func Decode(src string, dst []byte) (int, error) {
	var out int
	write := func(b byte) {
		if dst != nil && out < len(dst) {
			dst[out] = b
		}
		out++
	}
	writeRune := func(r rune) {
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		for i := 0; i < n; i++ {
			write(buf[i])
		}
	}

	i, n := 0, len(src)
	for i < n {
		c := src[i]
		if c != '\\' {
			write(c)
			i++
			continue
		}
		i++
		if i >= n {
			return 0, jqlerr.New(jqlerr.KindQueryParse, "unterminated escape sequence").WithPos(i)
		}
		switch src[i] {
		case '\\', '/', '"':
			write(src[i])
			i++
		case 'b':
			write('\b')
			i++
		case 'f':
			write('\f')
			i++
		case 'n':
			write('\n')
			i++
		case 'r':
			write('\r') // CR, not LF
			i++
		case 't':
			write('\t')
			i++
		case 'u':
			r, consumed, err := decodeUnicodeEscape(src, i)
			if err != nil {
				return 0, err
			}
			i += consumed
			writeRune(r)
		default:
			// Unknown single-character escape: pass through literally.
			write(src[i])
			i++
		}
	}
	return out, nil
}

// decodeUnicodeEscape reads a \uXXXX escape (and, if it is a high
// surrogate, the following \uXXXX low surrogate) starting at src[pos],
// where src[pos] == 'u'. It returns the decoded rune and the number of
// bytes consumed from pos (inclusive of the leading 'u').
func decodeUnicodeEscape(src string, pos int) (rune, int, error) {
	hi, err := readHex4(src, pos+1)
	if err != nil {
		return 0, 0, err
	}
	if hi < 0xD800 || hi > 0xDBFF {
		// Not a surrogate at all: validate directly. This also rejects a
		// lone low surrogate (0xDC00-0xDFFF) appearing without a preceding
		// high surrogate, since utf8.ValidRune rejects the whole surrogate
		// range.
		r := rune(hi)
		if !utf8.ValidRune(r) {
			return 0, 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "invalid codepoint").WithPos(pos)
		}
		return r, 5, nil
	}
	// High surrogate: require an immediately following \uXXXX low surrogate.
	if pos+7 > len(src) || src[pos+5] != '\\' || src[pos+6] != 'u' {
		return 0, 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "high surrogate not followed by low surrogate").WithPos(pos)
	}
	lo, err := readHex4(src, pos+7)
	if err != nil {
		return 0, 0, err
	}
	if lo < 0xDC00 || lo > 0xDFFF {
		return 0, 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "invalid low surrogate").WithPos(pos)
	}
	r := utf16.DecodeRune(rune(hi), rune(lo))
	if r == utf8.RuneError {
		return 0, 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "invalid surrogate pair").WithPos(pos)
	}
	return r, 11, nil
}

func readHex4(src string, pos int) (uint32, error) {
	if pos+4 > len(src) {
		return 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "truncated \\u escape").WithPos(pos)
	}
	var v uint32
	for i := 0; i < 4; i++ {
		c := src[pos+i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		default:
			return 0, jqlerr.New(jqlerr.KindInvalidCodepoint, "invalid hex digit in \\u escape").WithPos(pos + i)
		}
		v = v<<4 | d
	}
	return v, nil
}

// Unescape is a convenience wrapper that runs both passes and returns the
// decoded string directly.
func Unescape(src string) (string, error) {
	n, err := DecodedLen(src)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := Decode(src, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
