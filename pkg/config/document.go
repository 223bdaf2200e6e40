package config

// Document is the raw, decoded form of an overlay configuration file.
// It mirrors the TOML schema one-to-one and is kept alongside the compiled
// Config so a loaded configuration can be re-serialized.
type Document struct {
	// Version is the declared config schema version (semver, major v1).
	Version string `toml:"version,omitempty"`
	// Scale multiplies all positions and sizes at draw time.
	Scale float64 `toml:"scale,omitempty"`
	// Size is the unscaled overlay canvas size.
	Size *SizeDoc `toml:"size,omitempty"`

	Controllers []ControllerDoc `toml:"controller,omitempty"`
	Bindings    []BindingDoc    `toml:"binding,omitempty"`
	Templates   []TemplateDoc   `toml:"template,omitempty"`
	Layouts     []LayoutDoc     `toml:"layout,omitempty"`
	// Items are screen-level widgets rendered before any controller
	// layout, evaluated against the global view.
	Items []ItemDoc `toml:"item,omitempty"`
}

// SizeDoc is a width/height pair.
type SizeDoc struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// PointDoc is an x/y pair.
type PointDoc struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// ControllerDoc places one controller slot's layout instance on screen.
type ControllerDoc struct {
	Slot     int      `toml:"slot"`
	Position PointDoc `toml:"position"`
}

// BindingDoc maps controller slots to a layout. A binding without slot and
// when is the default catch-all.
type BindingDoc struct {
	Slot   *int   `toml:"slot,omitempty"`
	When   string `toml:"when,omitempty"`
	Layout string `toml:"layout"`
}

// LayoutDoc is a named widget tree.
type LayoutDoc struct {
	Name  string    `toml:"name"`
	Items []ItemDoc `toml:"item,omitempty"`
}

// TemplateDoc is a named, reusable widget definition instantiated with
// `use = "<name>"`.
type TemplateDoc struct {
	Name string `toml:"name"`
	ItemDoc
}

// StyleDoc is the partial style attribute set.
type StyleDoc struct {
	Fill     string     `toml:"fill,omitempty"`
	Stroke   *StrokeDoc `toml:"stroke,omitempty"`
	FontSize *float64   `toml:"font_size,omitempty"`
	Offset   *PointDoc  `toml:"offset,omitempty"`
}

// StrokeDoc describes an outline.
type StrokeDoc struct {
	Width float64 `toml:"width"`
	Color string  `toml:"color"`
}

// StyleRuleDoc is a conditional style override.
type StyleRuleDoc struct {
	When string `toml:"when"`
	StyleDoc
}

// ModifierDoc drives a widget's position from an analog stick.
type ModifierDoc struct {
	// Type is "stick_left" or "stick_right".
	Type string `toml:"type"`
	// Range is the maximum displacement (unscaled units) at full deflection.
	Range float64 `toml:"range"`
}

// ItemDoc is one widget: a shape or text element with optional conditions,
// style rules and children.
type ItemDoc struct {
	// Use instantiates a template instead of declaring a type inline.
	Use string `toml:"use,omitempty"`
	// Type is one of rectangle, circle, line, polygon, text.
	Type string `toml:"type,omitempty"`

	Position *PointDoc    `toml:"position,omitempty"`
	Modifier *ModifierDoc `toml:"position_modifier,omitempty"`
	// VisibleWhen omits the widget and its children when false.
	VisibleWhen string `toml:"visible_when,omitempty"`

	// Geometry, by type.
	Size   *SizeDoc   `toml:"size,omitempty"`   // rectangle
	Radius *float64   `toml:"radius,omitempty"` // circle
	To     *PointDoc  `toml:"to,omitempty"`     // line
	Points []PointDoc `toml:"points,omitempty"` // polygon
	Value  string     `toml:"value,omitempty"`  // text

	StyleDoc
	// Styles are conditional overrides, first match wins.
	Styles []StyleRuleDoc `toml:"style,omitempty"`

	// Items are child widgets, positioned relative to this widget.
	Items []ItemDoc `toml:"item,omitempty"`
}
