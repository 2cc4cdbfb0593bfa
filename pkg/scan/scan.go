// Package scan implements the scan executor (component G): a
// bidirectional, consumer-controlled document scan over an ordered key-value
// cursor.
//
// The executor itself is storage-agnostic — Cursor and Store are an
// external KV collaborator's contract; this package only drives them. The
// control-flow loop, driven by a signed step counter, lets a consumer
// request arbitrary forward skips or backward re-walks without the executor
// itself understanding direction beyond "forward" and "reverse of forward".
package scan

import (
	"github.com/docstore/jqldb/pkg/jqlerr"
)

// Direction is a cursor movement direction.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) reverse() Direction {
	if d == Next {
		return Prev
	}
	return Next
}

// Cursor is the external KV collaborator's ordered-iteration contract.
// To advances the cursor one position in dir; it returns jqlerr with Kind
// KindKVNotFound when iteration is exhausted (the executor treats that as
// normal termination, matching the original's IWKV_ERROR_NOTFOUND ->
// rc=0 translation).
type Cursor interface {
	To(dir Direction) error
	CopyKey() (id uint64, err error)
	Close() error
}

// Store opens a Cursor positioned per the scan's configured initial
// placement.
type Store interface {
	OpenCursor() (Cursor, error)
}

// Consumer is called once per delivered id, and exactly once more at the
// end of the scan with cur == nil (the terminal call), mirroring the
// original's final `consumer(ctx, 0, 0, 0, rc)`.
//
// step is both an input (always 1 on entry, the "advance by one" default)
// and an output: the consumer may overwrite it to request a different
// movement before the next id is delivered. A positive N skips forward N-1
// additional cursor positions using the scan's primary direction; a
// negative N walks backward |N| positions using the reverse direction
// instead. err carries the scan's terminal error, if any, on the terminal
// call only.
type Consumer func(cur Cursor, id uint64, step *int64, err error) error

// Execute runs the scan: it opens a cursor from store, walks it in dir,
// and invokes consumer once per id plus once for the terminal call.
//
// A non-nil error from consumer (other than on the terminal call) stops
// the scan immediately and is returned after the cursor is closed; the
// terminal call is still made with that error.
func Execute(store Store, dir Direction, consumer Consumer) error {
	cur, err := store.OpenCursor()
	if err != nil {
		_ = consumer(nil, 0, nil, err) // terminal call, as for any other failure
		return err
	}
	reverseDir := dir.reverse()

	var step int64 = 1
	var rc error
	for step != 0 {
		moveDir := dir
		if step < 0 {
			moveDir = reverseDir
		}
		if err := cur.To(moveDir); err != nil {
			if isNotFound(err) {
				rc = nil
			} else {
				rc = err
			}
			break
		}
		if step > 0 {
			step--
		} else if step < 0 {
			step++
		}
		if step == 0 {
			id, err := cur.CopyKey()
			if err != nil {
				rc = err
				break
			}
			// Whatever the consumer leaves in step is handed to the outer
			// loop unchanged: N > 0 moves N positions in dir, N < 0 moves |N|
			// positions in reverseDir, and 0 ends the scan. No consumer call
			// is made on the intermediate hops, only on arrival.
			step = 1
			if err := consumer(cur, id, &step, nil); err != nil {
				rc = err
				break
			}
		}
	}
	closeErr := cur.Close()
	if rc == nil {
		rc = closeErr
	}
	if err := consumer(nil, 0, nil, rc); err != nil && rc == nil {
		rc = err
	}
	return rc
}

func isNotFound(err error) bool {
	return jqlerr.New(jqlerr.KindKVNotFound, "").Is(err)
}
