package graphics

// Command is a single resolved drawing operation.
//
// The command set is closed: one variant per primitive shape plus text.
type Command interface {
	// Replay applies the command to a backend.
	Replay(backend Backend)
}

// DisplayList is an ordered list of resolved draw commands for one frame
// (or one layout instance). It is immutable once built and can be replayed
// onto any Backend implementation.
type DisplayList struct {
	cmds []Command
}

// Append adds a command to the end of the list.
func (d *DisplayList) Append(cmd Command) {
	d.cmds = append(d.cmds, cmd)
}

// Extend appends all commands of other, preserving their order.
func (d *DisplayList) Extend(other *DisplayList) {
	if other == nil {
		return
	}
	d.cmds = append(d.cmds, other.cmds...)
}

// Len returns the number of recorded commands.
func (d *DisplayList) Len() int {
	return len(d.cmds)
}

// Commands returns the recorded commands in paint order.
// The returned slice must not be modified.
func (d *DisplayList) Commands() []Command {
	return d.cmds
}

// Replay applies the recorded commands to the backend in paint order.
func (d *DisplayList) Replay(backend Backend) {
	for _, cmd := range d.cmds {
		cmd.Replay(backend)
	}
}

// RectCommand draws a rectangle.
type RectCommand struct {
	Rect  Rect
	Paint Paint
}

func (c RectCommand) Replay(backend Backend) {
	backend.DrawRect(c.Rect, c.Paint)
}

// CircleCommand draws a circle.
type CircleCommand struct {
	Center Offset
	Radius float64
	Paint  Paint
}

func (c CircleCommand) Replay(backend Backend) {
	backend.DrawCircle(c.Center, c.Radius, c.Paint)
}

// LineCommand draws a line segment.
type LineCommand struct {
	From  Offset
	To    Offset
	Paint Paint
}

func (c LineCommand) Replay(backend Backend) {
	backend.DrawLine(c.From, c.To, c.Paint)
}

// PolygonCommand draws a closed polygon.
type PolygonCommand struct {
	Points []Offset
	Paint  Paint
}

func (c PolygonCommand) Replay(backend Backend) {
	backend.DrawPolygon(c.Points, c.Paint)
}

// TextCommand draws a string centered on Position.
type TextCommand struct {
	Text     string
	Position Offset
	Style    TextStyle
}

func (c TextCommand) Replay(backend Backend) {
	backend.DrawText(c.Text, c.Position, c.Style)
}
