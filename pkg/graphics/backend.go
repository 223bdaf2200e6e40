// Package graphics defines the draw-command vocabulary of the overlay and
// the backend boundary it is submitted across.
//
// The render tree builder produces a DisplayList: a flat, ordered sequence
// of fully resolved draw commands. A DisplayList can be replayed onto any
// Backend; replay order is paint order and backends must preserve it
// (later commands draw on top of earlier ones).
package graphics

// Backend consumes resolved draw commands and performs the actual
// rasterization. All coordinates are absolute pixel positions; styles are
// fully resolved before a command reaches the backend.
type Backend interface {
	DrawRect(rect Rect, paint Paint)
	DrawCircle(center Offset, radius float64, paint Paint)
	DrawLine(from, to Offset, paint Paint)
	DrawPolygon(points []Offset, paint Paint)

	// DrawText renders text centered on position.
	DrawText(text string, position Offset, style TextStyle)
}
