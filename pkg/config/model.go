// Package config implements loading, validation and serialization of
// overlay configurations.
//
// A configuration is parsed from a TOML document and compiled into an
// immutable Config: widgets live in a flat arena addressed by integer
// indices, conditions are bound against the state schema, colors and enum
// symbols are resolved. All structural validation happens here, eagerly,
// so per-frame evaluation can never fail for structural reasons.
package config

import (
	"github.com/M1cha/periscope-viewer/pkg/condition"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
)

// WidgetKind is the closed shape vocabulary.
type WidgetKind int

const (
	WidgetRectangle WidgetKind = iota
	WidgetCircle
	WidgetLine
	WidgetPolygon
	WidgetText
)

func (k WidgetKind) String() string {
	switch k {
	case WidgetRectangle:
		return "rectangle"
	case WidgetCircle:
		return "circle"
	case WidgetLine:
		return "line"
	case WidgetPolygon:
		return "polygon"
	case WidgetText:
		return "text"
	default:
		return "invalid"
	}
}

// StickSource selects the analog stick driving a position modifier.
type StickSource int

const (
	StickLeft StickSource = iota
	StickRight
)

// Modifier displaces a widget proportionally to a stick's deflection.
type Modifier struct {
	Stick StickSource
	Range float64
}

// Style is a partial set of visual attributes. Nil attributes are "not
// specified" and fall through to the value below them in the layering
// order (defaults, then base style, then the first matching rule).
type Style struct {
	Fill        *graphics.Color
	StrokeColor *graphics.Color
	StrokeWidth *float64
	FontSize    *float64
	Offset      *graphics.Offset
}

// Apply overrides the attributes of r that s specifies.
func (s Style) Apply(r *ResolvedStyle) {
	if s.Fill != nil {
		r.Fill = *s.Fill
	}
	if s.StrokeColor != nil {
		r.StrokeColor = *s.StrokeColor
	}
	if s.StrokeWidth != nil {
		r.StrokeWidth = *s.StrokeWidth
	}
	if s.FontSize != nil {
		r.FontSize = *s.FontSize
	}
	if s.Offset != nil {
		r.Offset = *s.Offset
	}
}

// ResolvedStyle is a fully specified style.
type ResolvedStyle struct {
	Fill        graphics.Color
	StrokeColor graphics.Color
	StrokeWidth float64
	FontSize    float64
	Offset      graphics.Offset
}

// defaultFontSize matches the built-in face height of the software backend.
const defaultFontSize = 13

// DefaultResolvedStyle returns the bottom layer of style resolution.
func DefaultResolvedStyle() ResolvedStyle {
	return ResolvedStyle{
		Fill:     graphics.ColorWhite,
		FontSize: defaultFontSize,
	}
}

// StyleRule is a conditional style override.
type StyleRule struct {
	When  *condition.Bound
	Style Style
}

// Widget is one compiled element of a layout tree. Children are arena
// indices; the tree is acyclic by construction.
type Widget struct {
	Kind WidgetKind

	// Position is relative to the parent widget (or the layout origin).
	Position graphics.Offset
	Modifier *Modifier

	// Visible omits the widget and its entire subtree when false.
	// Nil means always visible.
	Visible *condition.Bound

	// Geometry, by kind.
	Size   graphics.Size     // WidgetRectangle
	Radius float64           // WidgetCircle
	To     graphics.Offset   // WidgetLine, relative to Position
	Points []graphics.Offset // WidgetPolygon, relative to Position
	Text   string            // WidgetText

	Base  Style
	Rules []StyleRule

	Children []int
}

// Layout is a named ordered sequence of root widgets.
type Layout struct {
	Name  string
	Roots []int
}

// Binding maps controller slots to a layout, first match wins.
type Binding struct {
	// Slot restricts the binding to one slot; -1 matches any slot.
	Slot int
	// When restricts the binding by a condition over the slot's view;
	// nil matches unconditionally.
	When *condition.Bound
	// Layout is an index into Config.Layouts.
	Layout int
}

// Controller places one slot's layout instance on the overlay.
type Controller struct {
	Slot     int
	Position graphics.Offset
}

// Config is a compiled, validated, immutable overlay configuration.
// It is shared read-only across frames; reloading installs a new value.
type Config struct {
	Version string
	Scale   float64
	Size    graphics.Size

	// Widgets is the arena all layout and screen trees index into.
	Widgets []Widget

	Layouts     []Layout
	Screen      []int
	Bindings    []Binding
	Controllers []Controller

	layoutByName map[string]int
	doc          *Document
}

// Layout returns a declared layout by name.
func (c *Config) Layout(name string) (*Layout, bool) {
	idx, ok := c.layoutByName[name]
	if !ok {
		return nil, false
	}
	return &c.Layouts[idx], true
}
