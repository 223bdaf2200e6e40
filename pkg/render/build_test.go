package render

import (
	"reflect"
	"testing"

	"github.com/M1cha/periscope-viewer/pkg/config"
	"github.com/M1cha/periscope-viewer/pkg/graphics"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

func mustLoad(t *testing.T, src string) *config.Config {
	t.Helper()
	cfg, err := config.Load([]byte(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func slotView(t *testing.T, c state.Controller) *state.View {
	t.Helper()
	return state.NewSnapshot([]state.Controller{c}, false).Slot(c.ID)
}

func connectedView(t *testing.T) *state.View {
	return slotView(t, state.Controller{
		ID:      0,
		Status:  state.StatusConnected,
		Type:    state.TypeProController,
		Battery: state.BatteryUnknown,
	})
}

func TestBuild_VisibilityTogglesSubtree(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "rectangle"
visible_when = "connected"
size = { width = 10, height = 10 }

[[layout.item.item]]
type = "circle"
radius = 2
`)
	layout, ok := cfg.Layout("main")
	if !ok {
		t.Fatal("layout main missing")
	}

	on := Build(cfg, layout, connectedView(t), graphics.Offset{})
	if on.Len() != 2 {
		t.Fatalf("connected: got %d commands, want 2", on.Len())
	}

	off := Build(cfg, layout, slotView(t, state.Controller{ID: 0, Status: state.StatusDisconnected}), graphics.Offset{})
	if off.Len() != 0 {
		t.Fatalf("disconnected: got %d commands, want 0", off.Len())
	}
}

func TestBuild_StyleFirstMatchWins(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "rectangle"
size = { width = 4, height = 4 }
fill = "#0000ff"

[[layout.item.style]]
when = "connected"
fill = "#ff0000"

[[layout.item.style]]
when = "connected"
fill = "#00ff00"
`)
	layout, _ := cfg.Layout("main")

	list := Build(cfg, layout, connectedView(t), graphics.Offset{})
	rect := list.Commands()[0].(graphics.RectCommand)
	if rect.Paint.FillColor != graphics.ColorRed {
		t.Errorf("matched fill = %v, want red", rect.Paint.FillColor)
	}

	list = Build(cfg, layout, slotView(t, state.Controller{ID: 0, Status: state.StatusDisconnected}), graphics.Offset{})
	rect = list.Commands()[0].(graphics.RectCommand)
	if rect.Paint.FillColor != graphics.ColorBlue {
		t.Errorf("unmatched fill = %v, want base blue", rect.Paint.FillColor)
	}
}

func TestBuild_OffsetsCompose(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "rectangle"
position = { x = 10, y = 20 }
size = { width = 4, height = 4 }
offset = { x = 1, y = 2 }

[[layout.item.item]]
type = "circle"
position = { x = 5, y = 5 }
radius = 3
`)
	layout, _ := cfg.Layout("main")
	list := Build(cfg, layout, connectedView(t), graphics.Offset{X: 100, Y: 200})

	rect := list.Commands()[0].(graphics.RectCommand)
	wantRect := graphics.RectFromLTWH(111, 222, 4, 4)
	if rect.Rect != wantRect {
		t.Errorf("rect = %+v, want %+v", rect.Rect, wantRect)
	}

	// The child starts from the parent's effective position, style offset
	// included. The circle command is centered, radius in from the corner.
	circle := list.Commands()[1].(graphics.CircleCommand)
	wantCenter := graphics.Offset{X: 111 + 5 + 3, Y: 222 + 5 + 3}
	if circle.Center != wantCenter {
		t.Errorf("circle center = %+v, want %+v", circle.Center, wantCenter)
	}
	if circle.Radius != 3 {
		t.Errorf("circle radius = %v, want 3", circle.Radius)
	}
}

func TestBuild_ScaleAppliesAtEmit(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"
scale = 2

[[layout]]
name = "main"

[[layout.item]]
type = "rectangle"
position = { x = 10, y = 10 }
size = { width = 5, height = 6 }
stroke = { width = 1.5, color = "#000000" }

[[layout.item.item]]
type = "text"
position = { x = 2, y = 3 }
value = "P1"
font_size = 10
`)
	layout, _ := cfg.Layout("main")
	list := Build(cfg, layout, connectedView(t), graphics.Offset{X: 1, Y: 1})

	rect := list.Commands()[0].(graphics.RectCommand)
	wantRect := graphics.RectFromLTWH(22, 22, 10, 12)
	if rect.Rect != wantRect {
		t.Errorf("rect = %+v, want %+v", rect.Rect, wantRect)
	}
	if rect.Paint.StrokeWidth != 3 {
		t.Errorf("stroke width = %v, want 3", rect.Paint.StrokeWidth)
	}

	text := list.Commands()[1].(graphics.TextCommand)
	want := graphics.Offset{X: 26, Y: 28}
	if text.Position != want {
		t.Errorf("text position = %+v, want %+v", text.Position, want)
	}
	if text.Style.Size != 20 {
		t.Errorf("font size = %v, want 20", text.Style.Size)
	}
	if text.Text != "P1" {
		t.Errorf("text = %q, want P1", text.Text)
	}
}

func TestBuild_StickModifier(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "circle"
position = { x = 50, y = 50 }
radius = 5
position_modifier = { type = "stick_left", range = 10 }
`)
	layout, _ := cfg.Layout("main")

	// Full deflection right and up moves the widget right and up on screen.
	view := slotView(t, state.Controller{
		ID:     0,
		Status: state.StatusConnected,
		LeftX:  32767,
		LeftY:  32767,
	})
	circle := Build(cfg, layout, view, graphics.Offset{}).Commands()[0].(graphics.CircleCommand)
	want := graphics.Offset{X: 50 + 10 + 5, Y: 50 - 10 + 5}
	if circle.Center != want {
		t.Errorf("deflected center = %+v, want %+v", circle.Center, want)
	}

	// Unknown stick values leave the widget at rest. The global view has
	// no slot fields at all.
	global := state.Empty().Global()
	circle = Build(cfg, layout, global, graphics.Offset{}).Commands()[0].(graphics.CircleCommand)
	want = graphics.Offset{X: 55, Y: 55}
	if circle.Center != want {
		t.Errorf("unknown stick center = %+v, want %+v", circle.Center, want)
	}
}

func TestBuild_LineAndPolygon(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "line"
position = { x = 1, y = 1 }
to = { x = 4, y = 0 }

[[layout.item]]
type = "polygon"
position = { x = 10, y = 10 }
points = [{ x = 0, y = 0 }, { x = 2, y = 0 }, { x = 1, y = 2 }]
`)
	layout, _ := cfg.Layout("main")
	list := Build(cfg, layout, connectedView(t), graphics.Offset{})

	line := list.Commands()[0].(graphics.LineCommand)
	if line.From != (graphics.Offset{X: 1, Y: 1}) || line.To != (graphics.Offset{X: 5, Y: 1}) {
		t.Errorf("line = %+v -> %+v", line.From, line.To)
	}

	poly := list.Commands()[1].(graphics.PolygonCommand)
	wantPoints := []graphics.Offset{{X: 10, Y: 10}, {X: 12, Y: 10}, {X: 11, Y: 12}}
	if !reflect.DeepEqual(poly.Points, wantPoints) {
		t.Errorf("polygon points = %+v, want %+v", poly.Points, wantPoints)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[layout]]
name = "main"

[[layout.item]]
type = "rectangle"
size = { width = 1, height = 1 }

[[layout.item]]
type = "text"
value = "hi"

[[layout.item.style]]
when = "battery_level < 20"
fill = "#ff0000"
`)
	layout, _ := cfg.Layout("main")
	view := slotView(t, state.Controller{ID: 0, Status: state.StatusConnected, Battery: 15})

	first := Build(cfg, layout, view, graphics.Offset{}).Commands()
	for i := 0; i < 10; i++ {
		again := Build(cfg, layout, view, graphics.Offset{}).Commands()
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first build", i)
		}
	}
}

func TestBuildScreen(t *testing.T) {
	cfg := mustLoad(t, `
version = "v1.0.0"

[[item]]
type = "text"
value = "signal lost"
visible_when = "state_unknown"
position = { x = 160, y = 100 }
`)

	if got := BuildScreen(cfg, state.Empty().Global()); got.Len() != 0 {
		t.Fatalf("healthy: got %d commands, want 0", got.Len())
	}

	degraded := state.NewSnapshot(nil, true).Global()
	list := BuildScreen(cfg, degraded)
	if list.Len() != 1 {
		t.Fatalf("degraded: got %d commands, want 1", list.Len())
	}
	text := list.Commands()[0].(graphics.TextCommand)
	if text.Text != "signal lost" {
		t.Errorf("text = %q", text.Text)
	}
}
