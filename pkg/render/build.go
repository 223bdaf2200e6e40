// Package render builds per-frame display lists from a compiled
// configuration and a state snapshot.
//
// Building is pure: the same layout and view always produce the same
// ordered command sequence. Widgets are walked depth-first in declaration
// order, which is the paint order.
package render

import (
	"github.com/M1cha/periscope-viewer/pkg/config"
	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// stickMax is the raw full-deflection axis value of the companion service.
const stickMax = 32767.0

var (
	stickLeftX  = mustFieldIndex("stick_left_x")
	stickLeftY  = mustFieldIndex("stick_left_y")
	stickRightX = mustFieldIndex("stick_right_x")
	stickRightY = mustFieldIndex("stick_right_y")
)

func mustFieldIndex(name string) int {
	f, ok := state.Lookup(name)
	if !ok {
		errors.Invariantf("render.init", "schema is missing field %q", name)
	}
	return f.Index()
}

// Build walks one layout against one view and returns the resolved draw
// commands in paint order. origin is the unscaled screen position of the
// layout instance (the controller placement).
func Build(cfg *config.Config, layout *config.Layout, view *state.View, origin graphics.Offset) *graphics.DisplayList {
	list := &graphics.DisplayList{}
	for _, root := range layout.Roots {
		buildWidget(cfg, root, view, origin, list)
	}
	return list
}

// BuildScreen builds the screen-level widgets against the global view.
func BuildScreen(cfg *config.Config, view *state.View) *graphics.DisplayList {
	list := &graphics.DisplayList{}
	for _, root := range cfg.Screen {
		buildWidget(cfg, root, view, graphics.Offset{}, list)
	}
	return list
}

func buildWidget(cfg *config.Config, idx int, view *state.View, parent graphics.Offset, list *graphics.DisplayList) {
	w := &cfg.Widgets[idx]
	if w.Visible != nil && !w.Visible.Eval(view) {
		// An invisible widget hides its whole subtree.
		return
	}

	style := resolveStyle(w, view)
	pos := parent.Add(w.Position).Add(style.Offset).Add(modifierOffset(w, view))
	scale := cfg.Scale

	switch w.Kind {
	case config.WidgetRectangle:
		list.Append(graphics.RectCommand{
			Rect: graphics.RectFromLTWH(
				pos.X*scale, pos.Y*scale,
				w.Size.Width*scale, w.Size.Height*scale),
			Paint: paintFor(style, scale),
		})
	case config.WidgetCircle:
		// Positioned by the top-left corner of the bounding box.
		list.Append(graphics.CircleCommand{
			Center: graphics.Offset{
				X: (pos.X + w.Radius) * scale,
				Y: (pos.Y + w.Radius) * scale,
			},
			Radius: w.Radius * scale,
			Paint:  paintFor(style, scale),
		})
	case config.WidgetLine:
		list.Append(graphics.LineCommand{
			From:  pos.Scale(scale),
			To:    pos.Add(w.To).Scale(scale),
			Paint: paintFor(style, scale),
		})
	case config.WidgetPolygon:
		points := make([]graphics.Offset, len(w.Points))
		for i, p := range w.Points {
			points[i] = pos.Add(p).Scale(scale)
		}
		list.Append(graphics.PolygonCommand{
			Points: points,
			Paint:  paintFor(style, scale),
		})
	case config.WidgetText:
		list.Append(graphics.TextCommand{
			Text:     w.Text,
			Position: pos.Scale(scale),
			Style: graphics.TextStyle{
				Color: style.Fill,
				Size:  style.FontSize * scale,
			},
		})
	default:
		errors.Invariantf("render.Build", "unhandled widget kind %d", int(w.Kind))
	}

	for _, child := range w.Children {
		buildWidget(cfg, child, view, pos, list)
	}
}

// resolveStyle layers the widget's base style over the defaults and then
// applies the first matching override rule. If no rule matches, the result
// is exactly the base style.
func resolveStyle(w *config.Widget, view *state.View) config.ResolvedStyle {
	resolved := config.DefaultResolvedStyle()
	w.Base.Apply(&resolved)
	for i := range w.Rules {
		rule := &w.Rules[i]
		if rule.When.Eval(view) {
			rule.Style.Apply(&resolved)
			break
		}
	}
	return resolved
}

func paintFor(style config.ResolvedStyle, scale float64) graphics.Paint {
	return graphics.Paint{
		FillColor:   style.Fill,
		StrokeColor: style.StrokeColor,
		StrokeWidth: style.StrokeWidth * scale,
	}
}

// modifierOffset displaces a widget by its stick modifier. The vertical
// axis is inverted: positive stick Y means up, positive screen Y means
// down. Unknown stick values leave the widget at rest.
func modifierOffset(w *config.Widget, view *state.View) graphics.Offset {
	if w.Modifier == nil {
		return graphics.Offset{}
	}
	xIdx, yIdx := stickLeftX, stickLeftY
	if w.Modifier.Stick == config.StickRight {
		xIdx, yIdx = stickRightX, stickRightY
	}
	x, okX := view.Field(xIdx)
	y, okY := view.Field(yIdx)
	if !okX || !okY {
		return graphics.Offset{}
	}
	factor := w.Modifier.Range / stickMax
	return graphics.Offset{
		X: factor * float64(x.Int()),
		Y: -factor * float64(y.Int()),
	}
}
