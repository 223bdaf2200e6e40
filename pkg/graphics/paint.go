package graphics

// Paint describes how a shape is filled and outlined.
//
// A zero-value Paint draws nothing. The fill is skipped when FillColor is
// fully transparent; the outline is skipped when StrokeWidth is zero or
// StrokeColor is fully transparent.
type Paint struct {
	FillColor   Color
	StrokeColor Color
	StrokeWidth float64
}

// HasFill returns true if the paint produces a visible fill.
func (p Paint) HasFill() bool {
	return p.FillColor.Alpha() != 0
}

// HasStroke returns true if the paint produces a visible outline.
func (p Paint) HasStroke() bool {
	return p.StrokeWidth > 0 && p.StrokeColor.Alpha() != 0
}

// TextStyle describes how overlay text is rendered.
//
// Position semantics are defined by the backend contract: the draw position
// of a text command is the center of the rendered string.
type TextStyle struct {
	Color Color
	Size  float64
}
