package graphics

// Recorder is a Backend that records every command it receives, in order.
// It is primarily used by tests to assert on the exact command sequence a
// frame produced.
type Recorder struct {
	Commands []Command
}

func (r *Recorder) DrawRect(rect Rect, paint Paint) {
	r.Commands = append(r.Commands, RectCommand{Rect: rect, Paint: paint})
}

func (r *Recorder) DrawCircle(center Offset, radius float64, paint Paint) {
	r.Commands = append(r.Commands, CircleCommand{Center: center, Radius: radius, Paint: paint})
}

func (r *Recorder) DrawLine(from, to Offset, paint Paint) {
	r.Commands = append(r.Commands, LineCommand{From: from, To: to, Paint: paint})
}

func (r *Recorder) DrawPolygon(points []Offset, paint Paint) {
	pts := make([]Offset, len(points))
	copy(pts, points)
	r.Commands = append(r.Commands, PolygonCommand{Points: pts, Paint: paint})
}

func (r *Recorder) DrawText(text string, position Offset, style TextStyle) {
	r.Commands = append(r.Commands, TextCommand{Text: text, Position: position, Style: style})
}

// Reset discards all recorded commands.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}
