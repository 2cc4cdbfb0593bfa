package ast

import "github.com/docstore/jqldb/pkg/jqlerr"

// JSONType is the JBL node type embedded in a JSON unit.
// Binary (de)serialization of this tree is delegated to the external JBL
// collaborator; this package only builds and walks the
// in-memory shape the parser produces.
type JSONType uint8

const (
	JSONNull JSONType = iota
	JSONBool
	JSONI64
	JSONF64
	JSONStr
	JSONArray
	JSONObject
)

// JSONNode is one node of the embedded JBL tree. Children of an ARRAY or
// OBJECT node form a doubly linked sibling ring: Next nil-terminates at the
// tail, and the head's Prev points at the tail.
type JSONNode struct {
	Type JSONType

	VBool bool
	VI64  int64
	VF64  float64
	VStr  string

	// Key and KLIdx are set only when this node is a member of an OBJECT
	// parent, which requires Key to be non-empty.
	Key   string
	KLIdx int

	Child *JSONNode // first child, for ARRAY/OBJECT
	Next  *JSONNode // next sibling, nil at the tail
	Prev  *JSONNode // previous sibling; head's Prev is the tail (circular)
}

// NewJSONScalar builds a leaf JBL node of the given scalar type, backed by
// a's storage.
func NewJSONScalar(a Allocator, t JSONType) *JSONNode {
	n := a.AllocJSONNode()
	n.Type = t
	return n
}

// WithKey sets the member key of a node that is about to be attached as an
// OBJECT child, enforcing a non-empty key.
func (n *JSONNode) WithKey(key string) (*JSONNode, error) {
	if key == "" {
		return nil, jqlerr.New(jqlerr.KindQueryParse, "object member key must not be empty")
	}
	n.Key = key
	n.KLIdx = len(key)
	return n, nil
}

// JSONCollect builds a parent ARRAY or OBJECT node from a slice of already
// parsed children (in source order) and wires them into the doubly linked
// sibling ring: Next nil-terminates at the tail, and the head's Prev points
// at the tail.
func JSONCollect(a Allocator, kind JSONType, children []*JSONNode) *JSONNode {
	parent := a.AllocJSONNode()
	parent.Type = kind
	if len(children) == 0 {
		return parent
	}
	head := children[0]
	parent.Child = head
	prev := head
	for _, c := range children[1:] {
		prev.Next = c
		c.Prev = prev
		prev = c
	}
	prev.Next = nil
	head.Prev = prev // circular: head's Prev is the tail
	return parent
}
