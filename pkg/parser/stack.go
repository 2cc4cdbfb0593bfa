package parser

import (
	"github.com/docstore/jqldb/pkg/ast"
	"github.com/docstore/jqldb/pkg/jqlerr"
)

var errUnbalancedStack = jqlerr.New(jqlerr.KindQueryParse, "unbalanced parser stack")

// defaultStackInline is the number of stack frames held in the fixed inline
// pool before spilling: most queries never spill.
const defaultStackInline = 32

// stack is the LIFO the grammar driver's semantic actions push to and pop
// from while reducing (component C). Frames begin in a fixed inline slice
// sized at construction; once that's exhausted, additional frames spill to
// an ordinary Go slice (the original C spills to malloc'd nodes it frees on
// pop — Go has no manual free, so spilled frames are simply collected by
// the GC once popped off and dropped).
type stack struct {
	inline  []*ast.Unit
	inlinen int
	spill   []*ast.Unit
}

// newStack builds a stack whose inline pool holds inlineCap frames before
// spilling. inlineCap <= 0 falls back to defaultStackInline.
func newStack(inlineCap int) stack {
	if inlineCap <= 0 {
		inlineCap = defaultStackInline
	}
	return stack{inline: make([]*ast.Unit, inlineCap)}
}

func (s *stack) pushUnit(u *ast.Unit) {
	if s.inlinen < len(s.inline) {
		s.inline[s.inlinen] = u
		s.inlinen++
		return
	}
	s.spill = append(s.spill, u)
}

// popUnit removes and returns the top frame. ok is false if the stack is
// empty.
func (s *stack) popUnit() (*ast.Unit, bool) {
	if n := len(s.spill); n > 0 {
		u := s.spill[n-1]
		s.spill = s.spill[:n-1]
		return u, true
	}
	if s.inlinen > 0 {
		s.inlinen--
		return s.inline[s.inlinen], true
	}
	return nil, false
}

// size reports the number of frames currently on the stack. The grammar
// driver records size() at the start of a production and pops back down to
// that mark at the end, the same "pop a contiguous run up to a sentinel"
// shape as the original's pointer-identity `until` — a remembered depth and
// a remembered pointer stop the same loop at the same frame.
func (s *stack) size() int { return s.inlinen + len(s.spill) }

// popChain pops Unit frames until the stack's size reaches until, linking
// each newly popped unit to the previously popped one via link(popped,
// previouslyPopped) so the returned head is the earliest-pushed unit and
// the chain runs in source (left-to-right) order. It returns nil if no
// frames were popped.
func (s *stack) popChain(until int, link func(prev, cur *ast.Unit)) (*ast.Unit, error) {
	var head *ast.Unit
	for s.size() > until {
		u, ok := s.popUnit()
		if !ok {
			return nil, errUnbalancedStack
		}
		if head != nil {
			link(u, head)
		}
		head = u
	}
	return head, nil
}
