package numbering

// MaxLevel is the deepest list level WML defines.
const MaxLevel = 8

// Transition tells renderer how open lists change for the next item.
type Transition struct {
	Closed  int // frames popped, deepest first
	Opened  int // frames pushed
	Counter int
}

type frame struct {
	numID   int
	level   int
	counter int
}

// Stack tracks open list levels of one block container. State of a level
// is discarded when it closes, so a reopened list starts from its start
// value again.
type Stack struct {
	frames []frame
}

// NewStack creates empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Depth returns number of open levels.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Enter registers list item of numID at ilvl. Deeper frames are closed
// first, frame at the same depth is replaced when list id differs,
// counter of the same list increments.
func (s *Stack) Enter(numID, ilvl, start int) Transition {
	var tr Transition
	for len(s.frames) > 0 && s.frames[len(s.frames)-1].level > ilvl {
		s.frames = s.frames[:len(s.frames)-1]
		tr.Closed++
	}

	if n := len(s.frames); n > 0 && s.frames[n-1].level == ilvl {
		top := &s.frames[n-1]
		if top.numID == numID {
			top.counter++
			tr.Counter = top.counter
			return tr
		}
		s.frames = s.frames[:n-1]
		tr.Closed++
	}

	s.frames = append(s.frames, frame{numID: numID, level: ilvl, counter: start})
	tr.Opened++
	tr.Counter = start
	return tr
}

// Reset closes all open levels and returns how many were closed.
func (s *Stack) Reset() int {
	n := len(s.frames)
	s.frames = s.frames[:0]
	return n
}

// Counters returns current counter of levels 0..ilvl for numID, levels
// not open for that list get def(level). ilvl is clamped to MaxLevel.
func (s *Stack) Counters(numID, ilvl int, def func(level int) int) []int {
	res := make([]int, min(max(ilvl, 0), MaxLevel)+1)
	for lvl := range res {
		found := false
		for _, f := range s.frames {
			if f.numID == numID && f.level == lvl {
				res[lvl], found = f.counter, true
				break
			}
		}
		if !found && def != nil {
			res[lvl] = def(lvl)
		}
	}
	return res
}
