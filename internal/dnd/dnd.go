// Package dnd implements drag-and-drop reordering as data.
//
// A Controller tracks one gesture (idle -> dragging -> idle). While dragging,
// Over resolves the pointer against the hit boxes of the current render into
// a Target. Drop hands the Target to a reducer (ApplyColleagueDrop or
// MoveCategory) which performs the single state transition. Hit boxes are
// recomputed on every render, so new cards are draggable without setup.
package dnd

type Phase int

const (
	Idle Phase = iota
	Dragging
)

type Position int

const (
	Before Position = iota
	After
)

func (p Position) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// Span is a horizontal run of cells on one row, e.g. a button.
type Span struct {
	Row    int
	X0, X1 int // [X0, X1)
}

// Box is the screen area occupied by one draggable element.
//
// Key identifies the element (colleague name or category id). Group is the
// section the element is rendered in; it is empty for category boxes. A box
// with an empty Key is a group anchor (a section header or empty list) and
// drops on it append to the group.
type Box struct {
	Key    string
	Group  string
	Top    int
	Height int

	// Actions are controls inside the box that must not start a drag.
	Actions []Span
}

func (b Box) Bottom() int { return b.Top + b.Height }

func (b Box) Contains(y int) bool { return y >= b.Top && y < b.Bottom() }

// Target is a proposed insertion point.
type Target struct {
	Key      string
	Group    string
	Position Position
}

// HitAction reports whether (x, y) lands on one of the box's action controls.
func HitAction(b Box, x, y int) bool {
	for _, a := range b.Actions {
		if a.Row == y && x >= a.X0 && x < a.X1 {
			return true
		}
	}
	return false
}

// BoxAt returns the box containing row y.
func BoxAt(boxes []Box, y int) (Box, bool) {
	for _, b := range boxes {
		if b.Key != "" && b.Contains(y) {
			return b, true
		}
	}
	return Box{}, false
}

// Resolve picks the drop target for a pointer at row y. A box under the
// pointer wins, with the side chosen by its vertical midpoint. Otherwise the
// nearest box by vertical distance is used: before it when the pointer is
// above, after it when below. Boxes with Key == skip are ignored.
func Resolve(y int, boxes []Box, skip string) (Target, bool) {
	best := -1
	bestDist := 0
	var pos Position
	for i, b := range boxes {
		if b.Height <= 0 || (skip != "" && b.Key == skip) {
			continue
		}
		if b.Contains(y) {
			p := Before
			if 2*(y-b.Top) >= b.Height {
				p = After
			}
			return Target{Key: b.Key, Group: b.Group, Position: p}, true
		}
		var d int
		var p Position
		if y < b.Top {
			d, p = b.Top-y, Before
		} else {
			d, p = y-b.Bottom()+1, After
		}
		if best < 0 || d < bestDist {
			best, bestDist, pos = i, d, p
		}
	}
	if best < 0 {
		return Target{}, false
	}
	b := boxes[best]
	return Target{Key: b.Key, Group: b.Group, Position: pos}, true
}

// Controller is the gesture state machine shared by the colleague and
// category domains.
type Controller struct {
	phase  Phase
	key    string
	origin string
	target Target
	hasTgt bool
}

// Start begins a drag of b. It refuses presses on an action control and
// presses while another drag is active.
func (c *Controller) Start(b Box, x, y int) bool {
	if c.phase == Dragging || b.Key == "" || HitAction(b, x, y) {
		return false
	}
	c.phase = Dragging
	c.key = b.Key
	c.origin = b.Group
	c.hasTgt = false
	c.target = Target{}
	return true
}

// Grab starts a keyboard drag of key in group.
func (c *Controller) Grab(key, group string) bool {
	return c.Start(Box{Key: key, Group: group, Height: 1}, -1, -1)
}

// Over updates the current target from the pointer row. The previous target
// is replaced, so at most one insertion indicator exists.
func (c *Controller) Over(y int, boxes []Box) (Target, bool) {
	if c.phase != Dragging {
		return Target{}, false
	}
	t, ok := Resolve(y, boxes, c.key)
	c.target, c.hasTgt = t, ok
	return t, ok
}

// SetTarget sets the target directly (keyboard moves).
func (c *Controller) SetTarget(t Target) {
	if c.phase != Dragging {
		return
	}
	c.target, c.hasTgt = t, true
}

// Drop ends the gesture and returns the dragged key, its origin group and
// the last target. ok is false when there was nothing to drop.
func (c *Controller) Drop() (key, origin string, t Target, ok bool) {
	if c.phase != Dragging {
		return "", "", Target{}, false
	}
	key, origin, t, ok = c.key, c.origin, c.target, c.hasTgt
	c.Cancel()
	return key, origin, t, ok
}

// Cancel resets all transient state.
func (c *Controller) Cancel() {
	*c = Controller{}
}

func (c *Controller) Dragging() bool { return c.phase == Dragging }
func (c *Controller) Key() string { return c.key }
func (c *Controller) Origin() string { return c.origin }

// Target returns the current insertion point, if any.
func (c *Controller) Target() (Target, bool) {
	return c.target, c.hasTgt
}

// IsPlaceholder reports whether the element (key, group) is the origin slot
// of the active drag.
func (c *Controller) IsPlaceholder(key, group string) bool {
	return c.phase == Dragging && c.key == key && c.origin == group
}
