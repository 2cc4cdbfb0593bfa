// Package printer implements the AST printer (component F): deterministic
// text rendering of a parsed query, satisfying the round-trip property
// parse(print(parse(s))) == parse(s).
//
// Emission order and literal punctuation are rendered into a Go io.Writer,
// one rule per AST unit kind.
package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docstore/jqldb/pkg/ast"
	"github.com/docstore/jqldb/pkg/jqlerr"
)

// Sprint renders q (a QUERY unit) to its canonical text form.
func Sprint(q *ast.Unit) (string, error) {
	var b strings.Builder
	if err := Fprint(&b, q); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fprint writes q (a QUERY unit) to w in canonical text form.
func Fprint(w io.Writer, q *ast.Unit) error {
	if q == nil || q.Tag != ast.TagQuery {
		return jqlerr.New(jqlerr.KindInvalidArgs, "Fprint requires a QUERY unit")
	}
	p := &printer{w: w}
	filter, apply, applyPlaceholder, projection := q.Query()
	for f := filter; f != nil; {
		if err := p.filter(f); err != nil {
			return err
		}
		p.raw("\n")
		_, _, _, next := f.Filter()
		f = next
	}
	if applyPlaceholder != "" || apply != nil {
		if err := p.apply(apply, applyPlaceholder); err != nil {
			return err
		}
		p.raw("\n")
	}
	if projection != nil {
		if err := p.projection(projection); err != nil {
			return err
		}
		p.raw("\n")
	}
	return p.err
}

// printer accumulates writes and latches the first error, so callers don't
// need an error check after every single write call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) filter(f *ast.Unit) error {
	anchor, node, join, _ := f.Filter()
	if join != nil {
		code, negate := join.JoinValue()
		p.join(asJoinCode(code), negate)
	}
	if anchor != "" {
		p.raw("@")
		p.raw(anchor)
	}
	for n := node; n != nil; {
		if err := p.filterNode(n); err != nil {
			return err
		}
		_, _, next := n.Node()
		n = next
	}
	return p.err
}

func (p *printer) filterNode(n *ast.Unit) error {
	kind, value, _ := n.Node()
	p.raw("/")
	switch kind {
	case ast.NodeField, ast.NodeAny, ast.NodeAnys:
		if err := p.operand(value); err != nil {
			return err
		}
	case ast.NodeExprKind:
		p.raw("[")
		for e := value; e != nil; {
			_, _, _, join, next := e.Expr()
			if join != nil {
				code, negate := join.JoinValue()
				p.join(asJoinCode(code), negate)
			}
			if err := p.filterNodeExpr(e); err != nil {
				return err
			}
			e = next
		}
		p.raw("]")
	default:
		return jqlerr.Newf(jqlerr.KindAssertion, "unknown node kind %v", kind)
	}
	return p.err
}

func (p *printer) filterNodeExpr(e *ast.Unit) error {
	left, op, right, _, _ := e.Expr()
	if err := p.operand(left); err != nil {
		return err
	}
	code, negate := op.OpValue()
	p.join(asOpCode(code), negate)
	switch right.Tag {
	case ast.TagString:
		if err := p.operand(right); err != nil {
			return err
		}
	case ast.TagJSON:
		if err := writeJSON(p, right.JSONValue()); err != nil {
			return err
		}
	default:
		return jqlerr.Newf(jqlerr.KindAssertion, "invalid expr right operand: %s", right.Tag)
	}
	return p.err
}

// operand prints an EXPR operand or a path segment's STRING: a nested EXPR
// (JQL allows chained comparisons sharing a left value in the original
// grammar) or a STRING, prefixed with ':' if it carries FlavourPlaceholder
// and quoted if it carries FlavourQuoted.
func (p *printer) operand(u *ast.Unit) error {
	switch u.Tag {
	case ast.TagExpr:
		return p.filterNodeExpr(u)
	case ast.TagString:
		if u.Flavour().Has(ast.FlavourPlaceholder) {
			p.raw(":")
		}
		quoted := u.Flavour().Has(ast.FlavourQuoted)
		if quoted {
			p.raw(`"`)
		}
		p.raw(u.StringValue())
		if quoted {
			p.raw(`"`)
		}
		return p.err
	default:
		return jqlerr.Newf(jqlerr.KindAssertion, "invalid expr left operand: %s", u.Tag)
	}
}

// opOrJoin is either an ast.OpCode or an ast.JoinCode, unified here because
// comparison operators and boolean combinators share one print routine.
// A negated operator prints a leading "not " (EQ instead prints "!="); a
// negated join prints "not " after its keyword ("and not").
type opOrJoin struct {
	isJoin bool
	op     ast.OpCode
	jc     ast.JoinCode
}

func asOpCode(c ast.OpCode) opOrJoin     { return opOrJoin{op: c} }
func asJoinCode(c ast.JoinCode) opOrJoin { return opOrJoin{isJoin: true, jc: c} }

func (p *printer) join(c opOrJoin, negate bool) {
	p.raw(" ")
	if !c.isJoin && c.op == ast.OpEQ {
		if negate {
			p.raw("!")
		}
		p.raw("= ")
		return
	}
	if c.isJoin {
		switch c.jc {
		case ast.JoinAnd:
			p.raw("and ")
		case ast.JoinOr:
			p.raw("or ")
		}
		if negate {
			p.raw("not ")
		}
		return
	}
	if negate {
		p.raw("not ")
	}
	switch c.op {
	case ast.OpGT:
		p.raw(">")
	case ast.OpLT:
		p.raw("<")
	case ast.OpGTE:
		p.raw(">=")
	case ast.OpLTE:
		p.raw("<=")
	case ast.OpIN:
		p.raw("in")
	case ast.OpRE:
		p.raw("re")
	case ast.OpLIKE:
		p.raw("like")
	}
	p.raw(" ")
}

func (p *printer) apply(apply *ast.Unit, placeholder string) error {
	p.raw("| apply ")
	if placeholder != "" {
		p.raw(":")
		p.raw(placeholder)
		return p.err
	}
	if apply != nil {
		return writeJSON(p, apply.JSONValue())
	}
	return p.err
}

func (p *printer) projection(proj *ast.Unit) error {
	p.raw("|")
	i := 0
	for pr := proj; pr != nil; {
		value, exclude, next := pr.Projection()
		p.raw(" ")
		if i > 0 {
			if exclude {
				p.raw("- ")
			} else {
				p.raw("+ ")
			}
		}
		if err := p.projectionNodes(value); err != nil {
			return err
		}
		pr = next
		i++
	}
	return p.err
}

func (p *printer) projectionNodes(head *ast.Unit) error {
	for s := head; s != nil; {
		if !s.Flavour().Has(ast.FlavourProjAlias) {
			p.raw("/")
		}
		if s.Flavour().Has(ast.FlavourProjField) {
			p.raw("{")
			for pf := s; pf != nil; pf = pf.SubNext() {
				p.raw(pf.StringValue())
				if pf.SubNext() != nil {
					p.raw(",")
				}
			}
			p.raw("}")
		} else {
			p.raw(s.StringValue())
		}
		s = s.Next()
	}
	return p.err
}

// writeJSON renders an embedded JBL literal (array/object/scalar) as JSON
// text. This is a minimal text emitter for the query-printing use case
// only; binary JBL (de)serialization remains an external collaborator's
// responsibility.
func writeJSON(p *printer, n *ast.JSONNode) error {
	if n == nil {
		p.raw("null")
		return p.err
	}
	switch n.Type {
	case ast.JSONNull:
		p.raw("null")
	case ast.JSONBool:
		if n.VBool {
			p.raw("true")
		} else {
			p.raw("false")
		}
	case ast.JSONI64:
		p.raw(strconv.FormatInt(n.VI64, 10))
	case ast.JSONF64:
		s := strconv.FormatFloat(n.VF64, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0" // keep 1.0 a float on re-parse instead of an integer
		}
		p.raw(s)
	case ast.JSONStr:
		p.raw(quoteJSONString(n.VStr))
	case ast.JSONArray:
		p.raw("[")
		for c, i := n.Child, 0; c != nil; c, i = c.Next, i+1 {
			if i > 0 {
				p.raw(",")
			}
			if err := writeJSON(p, c); err != nil {
				return err
			}
		}
		p.raw("]")
	case ast.JSONObject:
		p.raw("{")
		for c, i := n.Child, 0; c != nil; c, i = c.Next, i+1 {
			if i > 0 {
				p.raw(",")
			}
			p.raw(quoteJSONString(c.Key))
			p.raw(":")
			if err := writeJSON(p, c); err != nil {
				return err
			}
		}
		p.raw("}")
	default:
		return jqlerr.Newf(jqlerr.KindAssertion, "unknown JSON node type %v", n.Type)
	}
	return p.err
}

func quoteJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
