package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/M1cha/periscope-viewer/pkg/state"
)

const sampleConfig = `
version = "v1.0.0"
scale = 2.0
size = { width = 640, height = 360 }

[[controller]]
slot = 0
position = { x = 10, y = 20 }

[[binding]]
slot = 0
when = "controller_type == pro_controller"
layout = "pro"

[[binding]]
layout = "minimal"

[[template]]
name = "button_dot"
type = "circle"
radius = 4
fill = "#303030ff"

[[template.style]]
when = "button_a"
fill = "#ff0000ff"

[[layout]]
name = "pro"

[[layout.item]]
type = "rectangle"
position = { x = 0, y = 0 }
size = { width = 64, height = 32 }
fill = "#202020ff"
visible_when = "connected"

[[layout.item.item]]
type = "text"
position = { x = 32, y = 16 }
value = "P1"
font_size = 12

[[layout.item]]
use = "button_dot"
position = { x = 4, y = 4 }

[[layout]]
name = "minimal"

[[item]]
type = "text"
position = { x = 320, y = 8 }
value = "signal lost"
visible_when = "state_unknown"
`

func load(t *testing.T, src string) *Config {
	t.Helper()
	cfg, err := Load([]byte(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func errorKind(t *testing.T, src string) ErrorKind {
	t.Helper()
	_, err := Load([]byte(src))
	if err == nil {
		t.Fatal("Load: expected error")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load: error type %T, want *ConfigError", err)
	}
	return cerr.Kind
}

// TestLoad_Sample verifies the compiled structure of a representative config.
func TestLoad_Sample(t *testing.T) {
	cfg := load(t, sampleConfig)

	if cfg.Scale != 2.0 {
		t.Errorf("Scale = %v, want 2", cfg.Scale)
	}
	if cfg.Size.Width != 640 || cfg.Size.Height != 360 {
		t.Errorf("Size = %+v, want 640x360", cfg.Size)
	}
	if len(cfg.Layouts) != 2 {
		t.Fatalf("len(Layouts) = %d, want 2", len(cfg.Layouts))
	}

	pro, ok := cfg.Layout("pro")
	if !ok {
		t.Fatal("layout pro not found")
	}
	if len(pro.Roots) != 2 {
		t.Fatalf("pro roots = %d, want 2", len(pro.Roots))
	}

	rect := &cfg.Widgets[pro.Roots[0]]
	if rect.Kind != WidgetRectangle {
		t.Errorf("root 0 kind = %s, want rectangle", rect.Kind)
	}
	if rect.Visible == nil {
		t.Error("root 0 should have a visibility condition")
	}
	if len(rect.Children) != 1 {
		t.Fatalf("root 0 children = %d, want 1", len(rect.Children))
	}
	if text := &cfg.Widgets[rect.Children[0]]; text.Kind != WidgetText || text.Text != "P1" {
		t.Errorf("child = %s %q, want text P1", text.Kind, text.Text)
	}

	// Template instance carries the template's geometry, style and rules.
	dot := &cfg.Widgets[pro.Roots[1]]
	if dot.Kind != WidgetCircle || dot.Radius != 4 {
		t.Errorf("template instance = %s radius %v, want circle radius 4", dot.Kind, dot.Radius)
	}
	if dot.Position.X != 4 || dot.Position.Y != 4 {
		t.Errorf("template instance position = %+v, want (4,4)", dot.Position)
	}
	if dot.Base.Fill == nil {
		t.Error("template instance should inherit the template fill")
	}
	if len(dot.Rules) != 1 {
		t.Errorf("template instance rules = %d, want 1", len(dot.Rules))
	}

	if len(cfg.Screen) != 1 {
		t.Errorf("screen items = %d, want 1", len(cfg.Screen))
	}
	if len(cfg.Bindings) != 2 {
		t.Errorf("bindings = %d, want 2", len(cfg.Bindings))
	}
	if len(cfg.Controllers) != 1 || cfg.Controllers[0].Slot != 0 {
		t.Errorf("controllers = %+v, want one entry for slot 0", cfg.Controllers)
	}
}

// TestLoad_ErrorKinds checks that each validation failure reports its
// distinct kind.
func TestLoad_ErrorKinds(t *testing.T) {
	base := `
[[binding]]
layout = "a"

[[layout]]
name = "a"
`
	tests := []struct {
		name string
		src  string
		want ErrorKind
	}{
		{"malformed toml", "[[[", KindParse},
		{"unknown top-level key", base + "\ncolour = \"red\"\n", KindUnknownAttribute},
		{
			"unknown item key",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nglow = true\n",
			KindUnknownAttribute,
		},
		{
			"unknown shape type",
			base + "\n[[layout.item]]\ntype = \"triangle\"\n",
			KindUnknownAttribute,
		},
		{
			"geometry of the wrong shape",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nsize = { width = 1, height = 1 }\n",
			KindUnknownAttribute,
		},
		{
			"unknown state field",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nvisible_when = \"warp_drive\"\n",
			KindUnknownStateField,
		},
		{
			"enum ordering comparison",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nvisible_when = \"connection_status < connected\"\n",
			KindTypeMismatch,
		},
		{
			"condition syntax error",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nvisible_when = \"connected &&\"\n",
			KindParse,
		},
		{
			"duplicate layout",
			base + "\n[[layout]]\nname = \"a\"\n",
			KindDuplicateLayout,
		},
		{
			"unknown layout in binding",
			"[[binding]]\nlayout = \"ghost\"\n\n[[layout]]\nname = \"a\"\n",
			KindUnknownLayout,
		},
		{
			"missing default binding",
			"[[binding]]\nslot = 0\nlayout = \"a\"\n\n[[layout]]\nname = \"a\"\n",
			KindMissingDefaultBinding,
		},
		{
			"controller placed without bindings",
			"[[controller]]\nslot = 0\n\n[[layout]]\nname = \"a\"\n",
			KindMissingDefaultBinding,
		},
		{
			"self-referencing template",
			`
[[template]]
name = "loop"
use = "loop"
` + base + `
[[layout.item]]
use = "loop"
`,
			KindCyclicTemplate,
		},
		{
			"mutually recursive templates",
			`
[[template]]
name = "ping"
use = "pong"

[[template]]
name = "pong"
use = "ping"
` + base + `
[[layout.item]]
use = "ping"
`,
			KindCyclicTemplate,
		},
		{
			"template cycle through children",
			`
[[template]]
name = "nest"
type = "circle"
radius = 2.0

[[template.item]]
use = "nest"
` + base + `
[[layout.item]]
use = "nest"
`,
			KindCyclicTemplate,
		},
		{
			"bad color",
			base + "\n[[layout.item]]\ntype = \"circle\"\nradius = 2.0\nfill = \"chartreuse\"\n",
			KindParse,
		},
		{
			"bad version",
			"version = \"two\"\n" + base,
			KindParse,
		},
		{
			"unsupported version",
			"version = \"v2.0.0\"\n" + base,
			KindParse,
		},
		{
			"polygon with too few points",
			base + "\n[[layout.item]]\ntype = \"polygon\"\npoints = [{ x = 0, y = 0 }, { x = 1, y = 0 }]\n",
			KindParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorKind(t, tt.src); got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestSelect covers binding order, conditions and the default fallback.
func TestSelect(t *testing.T) {
	cfg := load(t, sampleConfig)

	pro := state.NewSnapshot([]state.Controller{{
		ID:     0,
		Status: state.StatusConnected,
		Type:   state.TypeProController,
	}}, false)
	if got := cfg.Select(0, pro.Slot(0)); got.Name != "pro" {
		t.Errorf("Select(0) with pro controller = %q, want pro", got.Name)
	}
	// Same snapshot, different slot: slot-restricted binding is skipped.
	if got := cfg.Select(1, pro.Slot(1)); got.Name != "minimal" {
		t.Errorf("Select(1) = %q, want minimal", got.Name)
	}
	// Identity unknown: the conditional binding does not match.
	empty := state.Empty()
	if got := cfg.Select(0, empty.Slot(0)); got.Name != "minimal" {
		t.Errorf("Select(0) with empty snapshot = %q, want minimal", got.Name)
	}
}

// TestSelect_FirstMatchWins verifies declared order beats declaration
// specificity.
func TestSelect_FirstMatchWins(t *testing.T) {
	cfg := load(t, `
[[binding]]
when = "connected"
layout = "b"

[[binding]]
slot = 0
layout = "c"

[[binding]]
layout = "a"

[[layout]]
name = "a"

[[layout]]
name = "b"

[[layout]]
name = "c"
`)
	snap := state.NewSnapshot([]state.Controller{{ID: 0, Status: state.StatusConnected}}, false)
	if got := cfg.Select(0, snap.Slot(0)); got.Name != "b" {
		t.Errorf("Select = %q, want b (first matching binding)", got.Name)
	}
	if got := cfg.Select(0, state.Empty().Slot(0)); got.Name != "c" {
		t.Errorf("Select = %q, want c", got.Name)
	}
}

// TestEncode_RoundTrip verifies Load(Encode(cfg)) preserves semantics.
func TestEncode_RoundTrip(t *testing.T) {
	first := load(t, sampleConfig)

	encoded, err := first.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Load(encoded)
	if err != nil {
		t.Fatalf("Load(Encode()): %v\nencoded:\n%s", err, encoded)
	}

	if !reflect.DeepEqual(first.Widgets, second.Widgets) {
		t.Error("widget arenas differ after round trip")
	}
	if !reflect.DeepEqual(first.Layouts, second.Layouts) {
		t.Error("layouts differ after round trip")
	}
	if !reflect.DeepEqual(first.Bindings, second.Bindings) {
		t.Error("bindings differ after round trip")
	}
	if !reflect.DeepEqual(first.Controllers, second.Controllers) {
		t.Error("controllers differ after round trip")
	}
	if first.Scale != second.Scale || first.Size != second.Size {
		t.Error("scale or size differ after round trip")
	}
}

// TestLoad_Defaults verifies scale defaulting.
func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, "[[binding]]\nlayout = \"a\"\n\n[[layout]]\nname = \"a\"\n")
	if cfg.Scale != 1 {
		t.Errorf("Scale = %v, want 1", cfg.Scale)
	}
	if strings.TrimSpace(cfg.Version) != "" {
		t.Errorf("Version = %q, want empty", cfg.Version)
	}
}
