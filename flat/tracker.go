package flat

import (
	"strconv"
	"strings"

	"github.com/jacoelho/esq/internal/stack"
)

// DefaultSeparator joins path segments.
const DefaultSeparator = "."

type arrayFrame struct {
	startDepth int
	nextIndex  int
}

// Tracker maintains the path of the token currently being decoded.
//
// Depths follow the reader convention: a container's open and close tokens
// share the container's depth and its children sit one level deeper.
// Every segment is popped when the value or container that pushed it
// completes, so the segment count always equals the nesting below the
// decode start.
type Tracker struct {
	separator string
	segments  stack.Stack[string]
	arrays    stack.Stack[arrayFrame]
}

func NewTracker(separator string) *Tracker {
	return &Tracker{separator: separator}
}

// EnterField starts a value under an object key.
func (t *Tracker) EnterField(name string) {
	t.segments.Push(name)
}

// EnterArray starts an array whose open token was read at depth.
// The first element's index is pushed immediately.
func (t *Tracker) EnterArray(depth int) {
	t.arrays.Push(arrayFrame{startDepth: depth})
	t.segments.Push("0")
}

// ExitArray closes the innermost array. The index pushed for the element
// that never arrived is dropped and the array itself completes as a value
// of its parent, so the segment that produced the array (its field name or
// outer index) is popped here. Callers do not call ValueDone after it.
func (t *Tracker) ExitArray(depth int) {
	t.arrays.Pop()
	t.segments.Pop()
	t.ValueDone(depth)
}

// ValueDone completes the value read at depth. When that value was a direct
// element of the innermost array the next index becomes current.
func (t *Tracker) ValueDone(depth int) {
	t.segments.Pop()

	frame := t.arrays.PeekRef()
	if frame == nil || frame.startDepth != depth-1 {
		return
	}
	frame.nextIndex++
	t.segments.Push(strconv.Itoa(frame.nextIndex))
}

// Path joins the current segments from outermost to innermost.
func (t *Tracker) Path() string {
	var b strings.Builder
	first := true
	for segment := range t.segments.All() {
		if !first {
			b.WriteString(t.separator)
		}
		first = false
		b.WriteString(segment)
	}
	return b.String()
}

// Depth reports the number of segments on the path.
func (t *Tracker) Depth() int {
	return t.segments.Size()
}

func (t *Tracker) Reset() {
	t.segments.Reset()
	t.arrays.Reset()
}
