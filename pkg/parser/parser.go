// Package parser implements the JQL grammar driver (component E) and its
// supporting parser stack (component C) over the Lexer above.
//
// It is a hand-written, single-pass recognizer: each grammar production has
// a matching parse* method, and semantic actions push ast.Unit values onto a
// LIFO (pkg/parser/stack.go) as they're built, reducing contiguous runs of
// stack frames into a single aggregate unit at each production boundary,
// using a remembered stack depth as the reduction boundary instead of a
// pointer-identity sentinel (a depth mark and a sentinel pointer stop the
// same pop loop at the same frame, so the behavior is identical — only the
// bookkeeping differs).
//
// A fatal parse error unwinds to Parse's entry point via panic/recover, the
// same mechanism Go's own go/parser uses for the "bail out from deep in a
// recursive descent" problem.
package parser

import (
	"strconv"

	"github.com/docstore/jqldb/pkg/arena"
	"github.com/docstore/jqldb/pkg/ast"
	"github.com/docstore/jqldb/pkg/jqlerr"
	"github.com/docstore/jqldb/pkg/jstring"
)

// Result is the outcome of a successful parse.
type Result struct {
	Query            *ast.Unit // tag QUERY
	PlaceholderCount int
}

// CompileOption configures a Parse call, grounded on gosonata's
// CompileOption/CompileOptions (pkg/parser/parser.go).
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxStackInline sizes the parser stack's fixed inline pool before it
	// spills to a heap slice. Zero uses defaultStackInline.
	MaxStackInline int
}

// WithMaxStackInline sets the number of parser-stack frames held inline
// before spilling.
func WithMaxStackInline(n int) CompileOption {
	return func(o *CompileOptions) { o.MaxStackInline = n }
}

// Parse parses a complete JQL query and returns its AST, or a
// *jqlerr.Error on failure. a backs all arena-owned text and nodes the
// parser produces (component A); the caller owns a's lifetime.
func Parse(a *arena.Arena, input string, opts ...CompileOption) (res Result, err error) {
	var o CompileOptions
	for _, opt := range opts {
		opt(&o)
	}
	p := &Parser{arena: a, lexer: NewLexer(input), input: input, stk: newStack(o.MaxStackInline)}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*jqlerr.Error)
			if !ok {
				panic(r) // not ours: a real bug, don't swallow it
			}
			err = pe
		}
	}()
	p.advance()
	q := p.parseQuery()
	if p.cur.Type != TokenEOF {
		p.fatalf(jqlerr.KindQueryParse, "unexpected trailing input")
	}
	if p.negate {
		// The one-shot negate flag must never be left set at end-of-parse;
		// a dangling `not` with nothing to attach to is a parse error, not
		// silently dropped.
		p.fatalf(jqlerr.KindQueryParse, "dangling 'not' with no operator or join to negate")
	}
	return Result{Query: q, PlaceholderCount: p.placeholders}, nil
}

// Parser holds all parse-time state (component C's stack plus the
// grammar driver's own bookkeeping). A Parser is single-use: construct one
// per Parse call.
type Parser struct {
	arena *arena.Arena
	lexer *Lexer
	input string

	cur          Token
	stk          stack
	negate       bool // one-shot flag, consumed by the next OP/JOIN constructor
	placeholders int
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
	if p.cur.Type == TokenError {
		p.fatalf(jqlerr.KindQueryParse, "%s", p.cur.Value)
	}
}

// consumeNegate returns and clears the one-shot negate flag.
func (p *Parser) consumeNegate() bool {
	n := p.negate
	p.negate = false
	return n
}

// fatalf raises a fatal parse error carrying near-token context, unwinding
// to Parse's recover via panic.
func (p *Parser) fatalf(kind jqlerr.Kind, format string, args ...interface{}) {
	e := jqlerr.Newf(kind, format, args...).WithPos(p.cur.Pos)
	near := p.cur.Value
	if near == "" {
		near = p.cur.Type.String()
	}
	tail := p.input[p.cur.Pos:]
	if len(tail) > 40 {
		tail = tail[:40] + "..."
	}
	panic(e.WithNearToken(near + "\n" + tail + " <---"))
}

func (p *Parser) strdup(s string) string { return p.arena.Strdup(s) }

// expect requires the current token to have type tt, returning its value
// and advancing past it; otherwise it raises a fatal QUERY_PARSE error.
func (p *Parser) expect(tt TokenType) Token {
	if p.cur.Type != tt {
		p.fatalf(jqlerr.KindQueryParse, "expected %s, got %s", tt, p.cur.Type)
	}
	t := p.cur
	p.advance()
	return t
}

func (p *Parser) curIsIdent(word string) bool {
	return p.cur.Type == TokenIdent && p.cur.Value == word
}

// ---- QUERY := FILTER (JOIN FILTER)* (APPLY)? (PROJ)? ----

func (p *Parser) parseQuery() *ast.Unit {
	mark := p.stk.size()
	p.parseFilter()
	for p.curIsIdent("and") || p.curIsIdent("or") {
		p.parseJoin()
		p.parseFilter()
	}
	query, err := p.popFiltersIntoQuery(mark)
	if err != nil {
		panic(err)
	}

	sawApply, sawProj := false, false
	for p.cur.Type == TokenPipe {
		p.advance()
		if p.curIsIdent("apply") {
			if sawApply {
				p.fatalf(jqlerr.KindQueryParse, "duplicate apply clause")
			}
			sawApply = true
			p.advance()
			operand := p.parseOperand()
			if err := query.SetApply(operand); err != nil {
				panic(err)
			}
			continue
		}
		if sawProj {
			p.fatalf(jqlerr.KindQueryParse, "duplicate projection clause")
		}
		sawProj = true
		proj := p.parseProj()
		if err := query.SetProjection(proj); err != nil {
			panic(err)
		}
	}
	return query
}

// popFiltersIntoQuery collects FILTER and JOIN units down to `mark`,
// threading join-to-previous-filter onto the later filter, and wraps the
// result in a QUERY unit.
func (p *Parser) popFiltersIntoQuery(mark int) (*ast.Unit, error) {
	var head *ast.Unit
	for p.stk.size() > mark {
		u, ok := p.stk.popUnit()
		if !ok {
			return nil, jqlerr.New(jqlerr.KindQueryParse, "unbalanced parser stack in filter chain")
		}
		switch u.Tag {
		case ast.TagJoin:
			if head == nil {
				return nil, jqlerr.New(jqlerr.KindQueryParse, "join with no following filter")
			}
			head.SetFilterJoin(u)
		case ast.TagFilter:
			if head != nil {
				u.SetNext(head)
			}
			head = u
		default:
			return nil, jqlerr.Newf(jqlerr.KindQueryParse, "unexpected unit in filter chain: %s", u.Tag)
		}
	}
	if head == nil {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "query requires at least one filter")
	}
	return ast.NewQuery(p.arena, head)
}

// ---- FILTER := ('@' IDENT)? NODE ('/' NODE)* ----

func (p *Parser) parseFilter() {
	anchor := ""
	if p.cur.Type == TokenAt {
		p.advance()
		t := p.expect(TokenIdent)
		anchor = p.strdup(t.Value)
	}
	mark := p.stk.size()
	p.parseNode()
	for p.cur.Type == TokenSlash {
		p.parseNode()
	}
	head, err := p.stk.popChain(mark, func(prev, cur *ast.Unit) { prev.SetNext(cur) })
	if err != nil {
		panic(err)
	}
	if head == nil {
		p.fatalf(jqlerr.KindQueryParse, "filter requires at least one path segment")
	}
	filter, err := ast.NewFilter(p.arena, anchor, head)
	if err != nil {
		panic(err)
	}
	p.stk.pushUnit(filter)
}

// ---- NODE := '/' (IDENT | '*' | '**' | '[' EXPR_CHAIN ']') ----
//
// parseNode consumes the segment's leading '/' itself; the FILTER loop above
// only checks that one is next.

func (p *Parser) parseNode() {
	p.expect(TokenSlash)
	var value *ast.Unit
	switch p.cur.Type {
	case TokenIdent:
		t := p.cur
		p.advance()
		value = ast.NewString(p.arena, p.strdup(t.Value), 0)
	case TokenQuoted:
		t := p.cur
		p.advance()
		text, err := jstring.Unescape(t.Value)
		if err != nil {
			panic(err)
		}
		value = ast.NewString(p.arena, p.strdup(text), ast.FlavourQuoted)
	case TokenLBracket:
		p.advance()
		value = p.parseExprChain()
		p.expect(TokenRBracket)
	default:
		p.fatalf(jqlerr.KindQueryParse, "expected a path segment, got %s", p.cur.Type)
	}
	node, err := ast.NewNode(p.arena, value)
	if err != nil {
		panic(err)
	}
	p.stk.pushUnit(node)
}

// ---- EXPR_CHAIN := EXPR ( JOIN EXPR )* ----

func (p *Parser) parseExprChain() *ast.Unit {
	mark := p.stk.size()
	p.parseExpr()
	for p.curIsIdent("and") || p.curIsIdent("or") {
		p.parseJoin()
		p.parseExpr()
	}
	head, err := p.popExprChain(mark)
	if err != nil {
		panic(err)
	}
	return head
}

// popExprChain reduces the stack down to `mark` into a linked EXPR chain.
func (p *Parser) popExprChain(mark int) (*ast.Unit, error) {
	var head *ast.Unit
	for p.stk.size() > mark {
		u, ok := p.stk.popUnit()
		if !ok {
			return nil, jqlerr.New(jqlerr.KindQueryParse, "unbalanced parser stack in expr chain")
		}
		switch u.Tag {
		case ast.TagJoin:
			if head == nil {
				return nil, jqlerr.New(jqlerr.KindQueryParse, "join with no following expr")
			}
			head.SetExprJoin(u)
		case ast.TagExpr:
			if head != nil {
				u.SetNext(head)
			}
			head = u
		default:
			return nil, jqlerr.Newf(jqlerr.KindQueryParse, "unexpected unit in expr chain: %s", u.Tag)
		}
	}
	if head == nil {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "expr chain requires at least one expression")
	}
	return head, nil
}

// ---- EXPR := OPERAND OP OPERAND ----

func (p *Parser) parseExpr() {
	left := p.parseOperand()
	op := p.parseOp()
	right := p.parseOperand()
	e, err := ast.NewExpr(p.arena, left, op, right)
	if err != nil {
		panic(err)
	}
	p.stk.pushUnit(e)
}

// ---- OPERAND := IDENT | QUOTED | ':' IDENT | JSON_LITERAL ----

func (p *Parser) parseOperand() *ast.Unit {
	switch p.cur.Type {
	case TokenColon:
		p.advance()
		t := p.expect(TokenIdent)
		p.placeholders++
		return ast.NewString(p.arena, p.strdup(t.Value), ast.FlavourPlaceholder)
	case TokenQuoted:
		t := p.cur
		p.advance()
		text, err := jstring.Unescape(t.Value)
		if err != nil {
			panic(err)
		}
		return ast.NewString(p.arena, p.strdup(text), ast.FlavourQuoted)
	case TokenIdent:
		switch p.cur.Value {
		case "true":
			p.advance()
			n := ast.NewJSONScalar(p.arena, ast.JSONBool)
			n.VBool = true
			return ast.NewJSON(p.arena, n)
		case "false":
			p.advance()
			n := ast.NewJSONScalar(p.arena, ast.JSONBool)
			n.VBool = false
			return ast.NewJSON(p.arena, n)
		case "null":
			p.advance()
			return ast.NewJSON(p.arena, ast.NewJSONScalar(p.arena, ast.JSONNull))
		default:
			t := p.cur
			p.advance()
			return ast.NewString(p.arena, p.strdup(t.Value), 0)
		}
	case TokenInt:
		t := p.cur
		p.advance()
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			p.fatalf(jqlerr.KindQueryParse, "invalid integer literal %q", t.Value)
		}
		n := ast.NewJSONScalar(p.arena, ast.JSONI64)
		n.VI64 = v
		return ast.NewJSON(p.arena, n)
	case TokenFloat:
		t := p.cur
		p.advance()
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			p.fatalf(jqlerr.KindQueryParse, "invalid number literal %q", t.Value)
		}
		n := ast.NewJSONScalar(p.arena, ast.JSONF64)
		n.VF64 = v
		return ast.NewJSON(p.arena, n)
	case TokenLBracket:
		return ast.NewJSON(p.arena, p.parseJSONArray())
	case TokenLBrace:
		return ast.NewJSON(p.arena, p.parseJSONObject())
	default:
		p.fatalf(jqlerr.KindQueryParse, "expected an operand, got %s", p.cur.Type)
		return nil // unreachable
	}
}

// ---- OP := '='|'>'|'>='|'<'|'<='|'eq'|'gt'|'gte'|'lt'|'lte'|'in'|'re'|'like' ----
// (optionally preceded by 'not')

func (p *Parser) parseOp() *ast.Unit {
	if p.curIsIdent("not") {
		p.advance()
		p.negate = true
	}
	var code ast.OpCode
	switch p.cur.Type {
	case TokenEq:
		code = ast.OpEQ
	case TokenGt:
		code = ast.OpGT
	case TokenGte:
		code = ast.OpGTE
	case TokenLt:
		code = ast.OpLT
	case TokenLte:
		code = ast.OpLTE
	case TokenIdent:
		switch p.cur.Value {
		case "eq":
			code = ast.OpEQ
		case "gt":
			code = ast.OpGT
		case "gte":
			code = ast.OpGTE
		case "lt":
			code = ast.OpLT
		case "lte":
			code = ast.OpLTE
		case "in":
			code = ast.OpIN
		case "re":
			code = ast.OpRE
		case "like":
			code = ast.OpLIKE
		default:
			p.fatalf(jqlerr.KindQueryParse, "invalid operator %q", p.cur.Value)
		}
	default:
		p.fatalf(jqlerr.KindQueryParse, "expected an operator, got %s", p.cur.Type)
	}
	p.advance()
	return ast.NewOp(p.arena, code, p.consumeNegate())
}

// ---- JOIN := ('and'|'or') (followed by optional 'not') ----
//
// Unlike OP, where 'not' precedes the operator ("not in"), JOIN negation
// follows the keyword ("and not"): AND/OR emit their keyword first and
// only then, conditionally, "not ".

func (p *Parser) parseJoin() {
	var code ast.JoinCode
	switch {
	case p.curIsIdent("and"):
		code = ast.JoinAnd
	case p.curIsIdent("or"):
		code = ast.JoinOr
	default:
		p.fatalf(jqlerr.KindQueryParse, "expected 'and' or 'or', got %s %q", p.cur.Type, p.cur.Value)
	}
	p.advance()
	if p.curIsIdent("not") {
		p.advance()
		p.negate = true
	}
	p.stk.pushUnit(ast.NewJoin(p.arena, code, p.consumeNegate()))
}

// ---- PROJ := '|' PROJPATH ( ('+'|'-') PROJPATH )* ----
// (the leading '|' is consumed by parseQuery)

func (p *Parser) parseProj() *ast.Unit {
	mark := p.stk.size()
	p.pushJoinedProjection(p.parseProjPath(), false)
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		exclude := p.cur.Type == TokenMinus
		p.advance()
		p.pushJoinedProjection(p.parseProjPath(), exclude)
	}
	head, err := p.stk.popChain(mark, func(prev, cur *ast.Unit) { prev.SetNext(cur) })
	if err != nil {
		panic(err)
	}
	return head
}

func (p *Parser) pushJoinedProjection(pathHead *ast.Unit, exclude bool) {
	proj, err := ast.NewProjection(p.arena, pathHead, exclude)
	if err != nil {
		panic(err)
	}
	p.stk.pushUnit(proj)
}

// ---- PROJPATH := '/' (IDENT | '{' IDENT (',' IDENT)* '}' )+ ----

func (p *Parser) parseProjPath() *ast.Unit {
	mark := p.stk.size()
	for p.cur.Type == TokenSlash {
		p.advance()
		p.parseProjSegment()
	}
	head, err := p.stk.popChain(mark, func(prev, cur *ast.Unit) { prev.SetNext(cur) })
	if err != nil {
		panic(err)
	}
	if head == nil {
		p.fatalf(jqlerr.KindQueryParse, "projection path requires at least one segment")
	}
	return head
}

func (p *Parser) parseProjSegment() {
	if p.cur.Type == TokenLBrace {
		p.advance()
		mark := p.stk.size()
		p.parseProjField()
		for p.cur.Type == TokenComma {
			p.advance()
			p.parseProjField()
		}
		p.expect(TokenRBrace)
		head := p.popProjFieldsChain(mark)
		p.stk.pushUnit(head)
		return
	}
	t := p.expect(TokenIdent)
	p.stk.pushUnit(ast.NewString(p.arena, p.strdup(t.Value), 0))
}

func (p *Parser) parseProjField() {
	t := p.expect(TokenIdent)
	p.stk.pushUnit(ast.NewString(p.arena, p.strdup(t.Value), 0))
}

// popProjFieldsChain threads the STRING children of a `{a,b,c}` block via
// SubNext, stamping each with PROJFIELD, and returns the head (the unit the
// printer and the rest of the projection path chain treat as a single
// segment).
func (p *Parser) popProjFieldsChain(mark int) *ast.Unit {
	var head *ast.Unit
	for p.stk.size() > mark {
		u, ok := p.stk.popUnit()
		if !ok {
			panic(jqlerr.New(jqlerr.KindQueryParse, "unbalanced parser stack in projection field block"))
		}
		u.SetFlavour(u.Flavour() | ast.FlavourProjField)
		if head != nil {
			u.SetSubNext(head)
		}
		head = u
	}
	return head
}

// ---- JSON literal sub-grammar (for OPERAND and APPLY) ----

func (p *Parser) parseJSONArray() *ast.JSONNode {
	p.expect(TokenLBracket)
	var children []*ast.JSONNode
	if p.cur.Type != TokenRBracket {
		children = append(children, p.parseJSONValue())
		for p.cur.Type == TokenComma {
			p.advance()
			children = append(children, p.parseJSONValue())
		}
	}
	p.expect(TokenRBracket)
	return ast.JSONCollect(p.arena, ast.JSONArray, children)
}

func (p *Parser) parseJSONObject() *ast.JSONNode {
	p.expect(TokenLBrace)
	var children []*ast.JSONNode
	if p.cur.Type != TokenRBrace {
		children = append(children, p.parseJSONMember())
		for p.cur.Type == TokenComma {
			p.advance()
			children = append(children, p.parseJSONMember())
		}
	}
	p.expect(TokenRBrace)
	return ast.JSONCollect(p.arena, ast.JSONObject, children)
}

func (p *Parser) parseJSONMember() *ast.JSONNode {
	var key string
	switch p.cur.Type {
	case TokenQuoted:
		t := p.cur
		p.advance()
		text, err := jstring.Unescape(t.Value)
		if err != nil {
			panic(err)
		}
		key = text
	case TokenIdent:
		key = p.cur.Value
		p.advance()
	default:
		p.fatalf(jqlerr.KindQueryParse, "expected an object key, got %s", p.cur.Type)
	}
	p.expect(TokenColon)
	val := p.parseJSONValue()
	val, err := val.WithKey(p.strdup(key))
	if err != nil {
		panic(err)
	}
	return val
}

func (p *Parser) parseJSONValue() *ast.JSONNode {
	switch p.cur.Type {
	case TokenLBracket:
		return p.parseJSONArray()
	case TokenLBrace:
		return p.parseJSONObject()
	case TokenQuoted:
		t := p.cur
		p.advance()
		text, err := jstring.Unescape(t.Value)
		if err != nil {
			panic(err)
		}
		n := ast.NewJSONScalar(p.arena, ast.JSONStr)
		n.VStr = p.strdup(text)
		return n
	case TokenInt:
		t := p.cur
		p.advance()
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			p.fatalf(jqlerr.KindQueryParse, "invalid integer literal %q", t.Value)
		}
		n := ast.NewJSONScalar(p.arena, ast.JSONI64)
		n.VI64 = v
		return n
	case TokenFloat:
		t := p.cur
		p.advance()
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			p.fatalf(jqlerr.KindQueryParse, "invalid number literal %q", t.Value)
		}
		n := ast.NewJSONScalar(p.arena, ast.JSONF64)
		n.VF64 = v
		return n
	case TokenIdent:
		switch p.cur.Value {
		case "true":
			p.advance()
			n := ast.NewJSONScalar(p.arena, ast.JSONBool)
			n.VBool = true
			return n
		case "false":
			p.advance()
			n := ast.NewJSONScalar(p.arena, ast.JSONBool)
			n.VBool = false
			return n
		case "null":
			p.advance()
			return ast.NewJSONScalar(p.arena, ast.JSONNull)
		}
		p.fatalf(jqlerr.KindQueryParse, "expected a JSON value, got identifier %q", p.cur.Value)
	}
	p.fatalf(jqlerr.KindQueryParse, "expected a JSON value, got %s", p.cur.Type)
	return nil // unreachable
}
