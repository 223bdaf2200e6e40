package config

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"

	"github.com/M1cha/periscope-viewer/pkg/condition"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// Load parses and validates a configuration document. It either returns a
// fully validated Config or the first problem found as a *ConfigError;
// there is no partially loaded state.
func Load(raw []byte) (*Config, error) {
	var doc Document
	md, err := toml.Decode(string(raw), &doc)
	if err != nil {
		return nil, &ConfigError{Kind: KindParse, Detail: "invalid TOML", Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, configErrorf(KindUnknownAttribute, undecoded[0].String(),
			"unknown attribute")
	}
	return compile(&doc)
}

type compiler struct {
	doc       *Document
	templates map[string]*TemplateDoc
	cfg       *Config
}

func compile(doc *Document) (*Config, error) {
	c := &compiler{
		doc:       doc,
		templates: make(map[string]*TemplateDoc),
		cfg: &Config{
			Version:      doc.Version,
			Scale:        doc.Scale,
			layoutByName: make(map[string]int),
			doc:          doc,
		},
	}

	if doc.Version != "" {
		if !semver.IsValid(doc.Version) {
			return nil, configErrorf(KindParse, "version",
				"%q is not a valid semantic version", doc.Version)
		}
		if semver.Major(doc.Version) != "v1" {
			return nil, configErrorf(KindParse, "version",
				"unsupported config version %q (want v1)", doc.Version)
		}
	}
	if c.cfg.Scale < 0 {
		return nil, configErrorf(KindParse, "scale", "scale must not be negative")
	}
	if c.cfg.Scale == 0 {
		c.cfg.Scale = 1
	}
	if doc.Size != nil {
		c.cfg.Size = graphics.Size{Width: doc.Size.Width, Height: doc.Size.Height}
	}

	for i := range doc.Templates {
		tmpl := &doc.Templates[i]
		if tmpl.Name == "" {
			return nil, configErrorf(KindParse, fmt.Sprintf("template %d", i),
				"template has no name")
		}
		if _, ok := c.templates[tmpl.Name]; ok {
			return nil, configErrorf(KindParse, fmt.Sprintf("template %q", tmpl.Name),
				"template declared twice")
		}
		c.templates[tmpl.Name] = tmpl
	}

	for i := range doc.Layouts {
		layout := &doc.Layouts[i]
		path := fmt.Sprintf("layout %q", layout.Name)
		if layout.Name == "" {
			return nil, configErrorf(KindParse, fmt.Sprintf("layout %d", i),
				"layout has no name")
		}
		if _, ok := c.cfg.layoutByName[layout.Name]; ok {
			return nil, configErrorf(KindDuplicateLayout, path,
				"layout declared twice")
		}
		roots, err := c.compileItems(layout.Items, path, nil)
		if err != nil {
			return nil, err
		}
		c.cfg.layoutByName[layout.Name] = len(c.cfg.Layouts)
		c.cfg.Layouts = append(c.cfg.Layouts, Layout{Name: layout.Name, Roots: roots})
	}

	screen, err := c.compileItems(doc.Items, "screen", nil)
	if err != nil {
		return nil, err
	}
	c.cfg.Screen = screen

	if err := c.compileBindings(); err != nil {
		return nil, err
	}
	if err := c.compileControllers(); err != nil {
		return nil, err
	}
	return c.cfg, nil
}

func (c *compiler) compileBindings() error {
	hasDefault := false
	for i := range c.doc.Bindings {
		b := &c.doc.Bindings[i]
		path := fmt.Sprintf("binding %d", i)

		layoutIdx, ok := c.cfg.layoutByName[b.Layout]
		if !ok {
			return configErrorf(KindUnknownLayout, path,
				"binding references undeclared layout %q", b.Layout)
		}

		compiled := Binding{Slot: -1, Layout: layoutIdx}
		if b.Slot != nil {
			if *b.Slot < 0 || *b.Slot >= state.MaxSlots {
				return configErrorf(KindParse, path,
					"slot %d out of range 0..%d", *b.Slot, state.MaxSlots-1)
			}
			compiled.Slot = *b.Slot
		}
		if b.When != "" {
			when, err := compileCondition(b.When, path)
			if err != nil {
				return err
			}
			compiled.When = when
		}
		if b.Slot == nil && b.When == "" {
			hasDefault = true
		}
		c.cfg.Bindings = append(c.cfg.Bindings, compiled)
	}
	// A config that never consults the binding table (no bindings, nothing
	// placed) needs no catch-all.
	if !hasDefault && (len(c.doc.Bindings) > 0 || len(c.doc.Controllers) > 0) {
		return configErrorf(KindMissingDefaultBinding, "binding",
			"no unconditional catch-all binding declared")
	}
	return nil
}

func (c *compiler) compileControllers() error {
	seen := make(map[int]bool)
	for i := range c.doc.Controllers {
		ctrl := &c.doc.Controllers[i]
		path := fmt.Sprintf("controller %d", i)
		if ctrl.Slot < 0 || ctrl.Slot >= state.MaxSlots {
			return configErrorf(KindParse, path,
				"slot %d out of range 0..%d", ctrl.Slot, state.MaxSlots-1)
		}
		if seen[ctrl.Slot] {
			return configErrorf(KindParse, path, "slot %d placed twice", ctrl.Slot)
		}
		seen[ctrl.Slot] = true
		c.cfg.Controllers = append(c.cfg.Controllers, Controller{
			Slot:     ctrl.Slot,
			Position: graphics.Offset{X: ctrl.Position.X, Y: ctrl.Position.Y},
		})
	}
	return nil
}

func (c *compiler) compileItems(items []ItemDoc, path string, stack []string) ([]int, error) {
	var indices []int
	for i := range items {
		idx, err := c.compileItem(items[i], fmt.Sprintf("%s: item %d", path, i), stack)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (c *compiler) compileItem(item ItemDoc, path string, stack []string) (int, error) {
	// Resolve template instantiation chains before anything else.
	for item.Use != "" {
		name := item.Use
		if slices.Contains(stack, name) {
			return 0, configErrorf(KindCyclicTemplate, path,
				"template %q instantiates itself", name)
		}
		tmpl, ok := c.templates[name]
		if !ok {
			return 0, configErrorf(KindParse, path, "unknown template %q", name)
		}
		stack = append(stack, name)
		item = overlayItem(tmpl.ItemDoc, item)
	}

	var w Widget
	switch item.Type {
	case "rectangle":
		w.Kind = WidgetRectangle
	case "circle":
		w.Kind = WidgetCircle
	case "line":
		w.Kind = WidgetLine
	case "polygon":
		w.Kind = WidgetPolygon
	case "text":
		w.Kind = WidgetText
	case "":
		return 0, configErrorf(KindParse, path, "item has no type")
	default:
		return 0, configErrorf(KindUnknownAttribute, path,
			"unknown shape type %q", item.Type)
	}

	if err := compileGeometry(&w, &item, path); err != nil {
		return 0, err
	}

	if item.Position != nil {
		w.Position = graphics.Offset{X: item.Position.X, Y: item.Position.Y}
	}
	if item.Modifier != nil {
		mod, err := compileModifier(item.Modifier, path)
		if err != nil {
			return 0, err
		}
		w.Modifier = mod
	}
	if item.VisibleWhen != "" {
		visible, err := compileCondition(item.VisibleWhen, path)
		if err != nil {
			return 0, err
		}
		w.Visible = visible
	}

	base, err := compileStyle(item.StyleDoc, path)
	if err != nil {
		return 0, err
	}
	w.Base = base

	for i := range item.Styles {
		rule := &item.Styles[i]
		rulePath := fmt.Sprintf("%s: style %d", path, i)
		if rule.When == "" {
			return 0, configErrorf(KindParse, rulePath, "style rule has no condition")
		}
		when, err := compileCondition(rule.When, rulePath)
		if err != nil {
			return 0, err
		}
		style, err := compileStyle(rule.StyleDoc, rulePath)
		if err != nil {
			return 0, err
		}
		w.Rules = append(w.Rules, StyleRule{When: when, Style: style})
	}

	children, err := c.compileItems(item.Items, path, stack)
	if err != nil {
		return 0, err
	}
	w.Children = children

	c.cfg.Widgets = append(c.cfg.Widgets, w)
	return len(c.cfg.Widgets) - 1, nil
}

// overlayItem merges a template instance: the template is the base, the
// instance overrides what it specifies. Instance style rules take
// precedence over template rules; instance children render after template
// children.
func overlayItem(base, over ItemDoc) ItemDoc {
	merged := base
	if over.Type != "" {
		merged.Type = over.Type
	}
	if over.Position != nil {
		merged.Position = over.Position
	}
	if over.Modifier != nil {
		merged.Modifier = over.Modifier
	}
	if over.VisibleWhen != "" {
		merged.VisibleWhen = over.VisibleWhen
	}
	if over.Size != nil {
		merged.Size = over.Size
	}
	if over.Radius != nil {
		merged.Radius = over.Radius
	}
	if over.To != nil {
		merged.To = over.To
	}
	if len(over.Points) > 0 {
		merged.Points = over.Points
	}
	if over.Value != "" {
		merged.Value = over.Value
	}
	if over.Fill != "" {
		merged.Fill = over.Fill
	}
	if over.Stroke != nil {
		merged.Stroke = over.Stroke
	}
	if over.FontSize != nil {
		merged.FontSize = over.FontSize
	}
	if over.Offset != nil {
		merged.Offset = over.Offset
	}
	if len(over.Styles) > 0 {
		merged.Styles = append(append([]StyleRuleDoc(nil), over.Styles...), base.Styles...)
	}
	if len(over.Items) > 0 {
		merged.Items = append(append([]ItemDoc(nil), base.Items...), over.Items...)
	}
	return merged
}

func compileGeometry(w *Widget, item *ItemDoc, path string) error {
	// Reject geometry attributes that belong to a different shape.
	if w.Kind != WidgetRectangle && item.Size != nil {
		return configErrorf(KindUnknownAttribute, path, "%s does not take size", w.Kind)
	}
	if w.Kind != WidgetCircle && item.Radius != nil {
		return configErrorf(KindUnknownAttribute, path, "%s does not take radius", w.Kind)
	}
	if w.Kind != WidgetLine && item.To != nil {
		return configErrorf(KindUnknownAttribute, path, "%s does not take to", w.Kind)
	}
	if w.Kind != WidgetPolygon && len(item.Points) > 0 {
		return configErrorf(KindUnknownAttribute, path, "%s does not take points", w.Kind)
	}
	if w.Kind != WidgetText && item.Value != "" {
		return configErrorf(KindUnknownAttribute, path, "%s does not take value", w.Kind)
	}

	switch w.Kind {
	case WidgetRectangle:
		if item.Size == nil || item.Size.Width <= 0 || item.Size.Height <= 0 {
			return configErrorf(KindParse, path, "rectangle needs a positive size")
		}
		w.Size = graphics.Size{Width: item.Size.Width, Height: item.Size.Height}
	case WidgetCircle:
		if item.Radius == nil || *item.Radius <= 0 {
			return configErrorf(KindParse, path, "circle needs a positive radius")
		}
		w.Radius = *item.Radius
	case WidgetLine:
		if item.To == nil {
			return configErrorf(KindParse, path, "line needs a to point")
		}
		w.To = graphics.Offset{X: item.To.X, Y: item.To.Y}
	case WidgetPolygon:
		if len(item.Points) < 3 {
			return configErrorf(KindParse, path, "polygon needs at least 3 points")
		}
		for _, p := range item.Points {
			w.Points = append(w.Points, graphics.Offset{X: p.X, Y: p.Y})
		}
	case WidgetText:
		if item.Value == "" {
			return configErrorf(KindParse, path, "text needs a value")
		}
		w.Text = item.Value
	}
	return nil
}

func compileModifier(doc *ModifierDoc, path string) (*Modifier, error) {
	mod := &Modifier{Range: doc.Range}
	switch doc.Type {
	case "stick_left":
		mod.Stick = StickLeft
	case "stick_right":
		mod.Stick = StickRight
	default:
		return nil, configErrorf(KindUnknownAttribute, path,
			"unknown position modifier %q", doc.Type)
	}
	if doc.Range <= 0 {
		return nil, configErrorf(KindParse, path,
			"position modifier needs a positive range")
	}
	return mod, nil
}

func compileStyle(doc StyleDoc, path string) (Style, error) {
	var style Style
	if doc.Fill != "" {
		fill, err := graphics.ParseColor(doc.Fill)
		if err != nil {
			return Style{}, &ConfigError{Kind: KindParse, Path: path, Err: err}
		}
		style.Fill = &fill
	}
	if doc.Stroke != nil {
		color, err := graphics.ParseColor(doc.Stroke.Color)
		if err != nil {
			return Style{}, &ConfigError{Kind: KindParse, Path: path, Err: err}
		}
		if doc.Stroke.Width <= 0 {
			return Style{}, configErrorf(KindParse, path,
				"stroke needs a positive width")
		}
		style.StrokeColor = &color
		width := doc.Stroke.Width
		style.StrokeWidth = &width
	}
	if doc.FontSize != nil {
		if *doc.FontSize <= 0 {
			return Style{}, configErrorf(KindParse, path,
				"font_size must be positive")
		}
		size := *doc.FontSize
		style.FontSize = &size
	}
	if doc.Offset != nil {
		offset := graphics.Offset{X: doc.Offset.X, Y: doc.Offset.Y}
		style.Offset = &offset
	}
	return style, nil
}

func compileCondition(src, path string) (*condition.Bound, error) {
	bound, err := condition.Compile(src)
	if err == nil {
		return bound, nil
	}

	kind := KindParse
	var bindErr *condition.BindError
	if stderrors.As(err, &bindErr) {
		switch bindErr.Kind {
		case condition.BindUnknownField:
			kind = KindUnknownStateField
		case condition.BindTypeMismatch:
			kind = KindTypeMismatch
		}
	}
	return nil, &ConfigError{
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf("condition %q", src),
		Err:    err,
	}
}
