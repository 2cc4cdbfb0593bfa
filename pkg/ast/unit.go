// Package ast implements the JQL AST model (component D): the tagged Unit
// node union and its typed views (string, number, JSON literal, operator,
// join, expression, node, filter, projection, query).
//
// Go has no tagged unions, so Unit is one flat struct carrying a Tag
// discriminant plus every variant's fields, unexported and reached only
// through per-tag typed-view accessor methods so a caller working with a
// FILTER never sees INTEGER fields. Construction goes through the
// constructors below, which enforce each variant's invariants and return
// *jqlerr.Error (kind QUERY_PARSE) on a type mismatch.
package ast

import (
	"github.com/docstore/jqldb/pkg/jqlerr"
)

// Tag discriminates the Unit variants.
type Tag uint8

const (
	TagString Tag = iota
	TagInteger
	TagDouble
	TagJSON
	TagOp
	TagJoin
	TagExpr
	TagNode
	TagFilter
	TagProjection
	TagQuery
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "STRING"
	case TagInteger:
		return "INTEGER"
	case TagDouble:
		return "DOUBLE"
	case TagJSON:
		return "JSON"
	case TagOp:
		return "OP"
	case TagJoin:
		return "JOIN"
	case TagExpr:
		return "EXPR"
	case TagNode:
		return "NODE"
	case TagFilter:
		return "FILTER"
	case TagProjection:
		return "PROJECTION"
	case TagQuery:
		return "QUERY"
	default:
		return "UNKNOWN"
	}
}

// StringFlavour is a bitset of flags carried by a STRING unit.
type StringFlavour uint8

const (
	FlavourQuoted StringFlavour = 1 << iota
	FlavourPlaceholder
	FlavourAnchor
	FlavourProjField
	FlavourProjAlias
)

// Has reports whether f is set.
func (s StringFlavour) Has(f StringFlavour) bool { return s&f != 0 }

// OpCode enumerates the expression operators.
type OpCode uint8

const (
	OpEQ OpCode = iota
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpIN
	OpRE
	OpLIKE
)

// JoinCode enumerates the boolean combinators.
type JoinCode uint8

const (
	JoinAnd JoinCode = iota
	JoinOr
)

// NodeKind enumerates the path-segment kinds of the NODE variant.
type NodeKind uint8

const (
	NodeField NodeKind = iota
	NodeAny            // *
	NodeAnys           // **
	NodeExprKind       // [ ... ]
)

// Allocator supplies the zero-valued Unit and JSONNode storage the
// constructors below fill in. A session arena implements Allocator to back
// every node with arena-owned memory instead of a one-off GC allocation per
// node; Heap is a trivial fallback for callers (tests, ad-hoc tree building)
// that have no arena at hand.
type Allocator interface {
	AllocUnit() *Unit
	AllocJSONNode() *JSONNode
}

type heapAllocator struct{}

func (heapAllocator) AllocUnit() *Unit         { return &Unit{} }
func (heapAllocator) AllocJSONNode() *JSONNode { return &JSONNode{} }

// Heap is the Allocator that allocates each node individually on the GC
// heap, with no backing arena.
var Heap Allocator = heapAllocator{}

// Unit is a single AST node. Exactly one of the typed-view accessor method
// groups below is meaningful for a given Unit, selected by Tag.
type Unit struct {
	Tag Tag

	// STRING
	text    string
	flavour StringFlavour

	// INTEGER
	ival int64

	// DOUBLE
	dval float64

	// JSON
	json *JSONNode

	// OP / JOIN share `negate` (invariant: never both meaningful on the same Unit)
	opCode   OpCode
	joinCode JoinCode
	negate   bool

	// EXPR
	left   *Unit // operand
	opUnit *Unit // tag OP
	right  *Unit // operand

	// NODE
	nkind NodeKind

	// FILTER
	anchor    string
	filterHdr *Unit // head NODE

	// PROJECTION
	exclude bool

	// QUERY
	queryFilter      *Unit // head FILTER
	apply            *Unit // tag JSON, xor applyPlaceholder
	applyPlaceholder string
	projection       *Unit // head PROJECTION

	// Shared sibling-chain fields, reused across tags because only one tag
	// is active per Unit: STRING.next, NODE.next, FILTER.next,
	// PROJECTION.next, EXPR.next all use `next`.
	next *Unit
	// STRING.subnext: projection field-block thread ({a,b,c}).
	subnext *Unit
	// EXPR.join (to previous expr) / FILTER.join (to previous filter).
	joinLink *Unit
	// NODE.value (path segment operand: STRING or EXPR) / PROJECTION.value
	// (head of the projection's path-string chain).
	value *Unit
}

// ---- STRING ----

// NewString builds a STRING unit from a, which should be the same session
// arena that produced text (the caller calls arena.Strdup before
// constructing).
func NewString(a Allocator, text string, flavour StringFlavour) *Unit {
	u := a.AllocUnit()
	u.Tag = TagString
	u.text = text
	u.flavour = flavour
	return u
}

// StringValue returns the raw text of a STRING unit.
func (u *Unit) StringValue() string { return u.text }

// Flavour returns the flavour bitset of a STRING unit.
func (u *Unit) Flavour() StringFlavour { return u.flavour }

// SetFlavour replaces the flavour bitset of a STRING unit (used by the
// projection-field reducer to stamp FlavourProjField after construction).
func (u *Unit) SetFlavour(f StringFlavour) { u.flavour = f }

// SetNext links the next STRING/NODE/FILTER/PROJECTION/EXPR sibling.
func (u *Unit) SetNext(n *Unit) { u.next = n }

// Next returns the next sibling in whichever chain this unit belongs to.
func (u *Unit) Next() *Unit { return u.next }

// SetSubNext links the next projection-field STRING child ({a,b,c}).
func (u *Unit) SetSubNext(n *Unit) { u.subnext = n }

// SubNext returns the projection-field sibling thread.
func (u *Unit) SubNext() *Unit { return u.subnext }

// ---- INTEGER / DOUBLE ----

// NewInteger builds an INTEGER unit.
func NewInteger(a Allocator, v int64) *Unit {
	u := a.AllocUnit()
	u.Tag = TagInteger
	u.ival = v
	return u
}

// IntValue returns the value of an INTEGER unit.
func (u *Unit) IntValue() int64 { return u.ival }

// NewDouble builds a DOUBLE unit.
func NewDouble(a Allocator, v float64) *Unit {
	u := a.AllocUnit()
	u.Tag = TagDouble
	u.dval = v
	return u
}

// DoubleValue returns the value of a DOUBLE unit.
func (u *Unit) DoubleValue() float64 { return u.dval }

// ---- JSON ----

// NewJSON wraps a JSONNode as a JSON unit.
func NewJSON(a Allocator, n *JSONNode) *Unit {
	u := a.AllocUnit()
	u.Tag = TagJSON
	u.json = n
	return u
}

// JSONValue returns the embedded JBL node tree of a JSON unit.
func (u *Unit) JSONValue() *JSONNode { return u.json }

// ---- OP ----

// NewOp builds an OP unit.
func NewOp(a Allocator, code OpCode, negate bool) *Unit {
	u := a.AllocUnit()
	u.Tag = TagOp
	u.opCode = code
	u.negate = negate
	return u
}

// OpValue returns the operator code and negation flag of an OP unit.
func (u *Unit) OpValue() (OpCode, bool) { return u.opCode, u.negate }

// ---- JOIN ----

// NewJoin builds a JOIN unit.
func NewJoin(a Allocator, code JoinCode, negate bool) *Unit {
	u := a.AllocUnit()
	u.Tag = TagJoin
	u.joinCode = code
	u.negate = negate
	return u
}

// JoinValue returns the join code and negation flag of a JOIN unit.
func (u *Unit) JoinValue() (JoinCode, bool) { return u.joinCode, u.negate }

// ---- EXPR ----

// NewExpr builds an EXPR unit from left OPERAND, op, and right OPERAND,
// requiring exactly one op and a right operand that is STRING or JSON.
func NewExpr(a Allocator, left, op, right *Unit) (*Unit, error) {
	if left == nil || op == nil || right == nil {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "expr requires left, op, and right operands")
	}
	if op.Tag != TagOp {
		return nil, jqlerr.Newf(jqlerr.KindQueryParse, "expr operator must be OP, got %s", op.Tag)
	}
	if right.Tag != TagString && right.Tag != TagJSON {
		return nil, jqlerr.Newf(jqlerr.KindQueryParse, "expr right operand must be STRING or JSON, got %s", right.Tag)
	}
	u := a.AllocUnit()
	u.Tag = TagExpr
	u.left = left
	u.opUnit = op
	u.right = right
	return u, nil
}

// Expr returns the components of an EXPR unit: left operand, the OP unit,
// right operand, the join-to-previous-sibling unit (nil if none), and the
// next EXPR in the chain (nil if none).
func (u *Unit) Expr() (left, op, right, join, next *Unit) {
	return u.left, u.opUnit, u.right, u.joinLink, u.next
}

// SetExprJoin sets the join-to-previous-sibling link on an EXPR unit.
func (u *Unit) SetExprJoin(j *Unit) { u.joinLink = j }

// ---- NODE ----

// NewNode builds a NODE path-segment unit from its operand value,
// classifying ntype by exact string equality against "*"/"**", never a
// length-bounded prefix comparison (which would let "*" match "**").
func NewNode(a Allocator, value *Unit) (*Unit, error) {
	if value == nil {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "node requires a value")
	}
	n := a.AllocUnit()
	n.Tag = TagNode
	n.value = value
	switch value.Tag {
	case TagExpr:
		n.nkind = NodeExprKind
	case TagString:
		switch value.text {
		case "*":
			n.nkind = NodeAny
		case "**":
			n.nkind = NodeAnys
		default:
			n.nkind = NodeField
		}
	default:
		return nil, jqlerr.Newf(jqlerr.KindQueryParse, "invalid node value type: %s", value.Tag)
	}
	return n, nil
}

// Node returns the segment kind, operand value, and the next NODE in the
// path chain (nil if this is the last segment).
func (u *Unit) Node() (kind NodeKind, value, next *Unit) {
	return u.nkind, u.value, u.next
}

// ---- FILTER ----

// NewFilter builds a FILTER unit from the head of its NODE path chain.
func NewFilter(a Allocator, anchor string, node *Unit) (*Unit, error) {
	if node == nil || node.Tag != TagNode {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "filter requires a node chain")
	}
	u := a.AllocUnit()
	u.Tag = TagFilter
	u.anchor = anchor
	u.filterHdr = node
	return u, nil
}

// Filter returns the anchor (empty if none), the head NODE of the path, the
// join-to-previous-filter unit (nil if none), and the next FILTER in the
// chain (nil if none).
func (u *Unit) Filter() (anchor string, node, join, next *Unit) {
	return u.anchor, u.filterHdr, u.joinLink, u.next
}

// SetFilterJoin sets the join-to-previous-filter link.
func (u *Unit) SetFilterJoin(j *Unit) { u.joinLink = j }

// ---- PROJECTION ----

// NewProjection builds a PROJECTION unit from the head of its path-string
// chain (threaded via Next/SubNext).
func NewProjection(a Allocator, value *Unit, exclude bool) (*Unit, error) {
	if value == nil || value.Tag != TagString {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "projection requires a string path head")
	}
	u := a.AllocUnit()
	u.Tag = TagProjection
	u.value = value
	u.exclude = exclude
	return u, nil
}

// Projection returns the head STRING of the path, the exclude flag, and
// the next PROJECTION in the chain (nil if none).
func (u *Unit) Projection() (value *Unit, exclude bool, next *Unit) {
	return u.value, u.exclude, u.next
}

// ---- QUERY ----

// NewQuery builds a QUERY unit from the head of its FILTER chain.
func NewQuery(a Allocator, filter *Unit) (*Unit, error) {
	if filter == nil || filter.Tag != TagFilter {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "query requires at least one filter")
	}
	u := a.AllocUnit()
	u.Tag = TagQuery
	u.queryFilter = filter
	return u, nil
}

// Query returns the head FILTER, the apply clause (JSON unit, or nil),
// the apply placeholder name (empty if apply is a JSON unit instead), and
// the head PROJECTION (nil if none).
func (u *Unit) Query() (filter, apply *Unit, applyPlaceholder string, projection *Unit) {
	return u.queryFilter, u.apply, u.applyPlaceholder, u.projection
}

// SetApply attaches the apply clause, enforcing that apply and
// apply_placeholder are mutually exclusive.
func (u *Unit) SetApply(unit *Unit) error {
	if unit == nil {
		return jqlerr.New(jqlerr.KindQueryParse, "apply requires a value")
	}
	switch {
	case unit.Tag == TagJSON:
		u.apply = unit
		u.applyPlaceholder = ""
	case unit.Tag == TagString && unit.flavour.Has(FlavourPlaceholder):
		u.apply = nil
		u.applyPlaceholder = unit.text
	default:
		return jqlerr.Newf(jqlerr.KindQueryParse, "invalid apply operand type: %s", unit.Tag)
	}
	return nil
}

// SetProjection attaches the query's projection clause.
func (u *Unit) SetProjection(p *Unit) error {
	if p == nil || p.Tag != TagProjection {
		return jqlerr.New(jqlerr.KindQueryParse, "projection clause must be a PROJECTION unit")
	}
	u.projection = p
	return nil
}
