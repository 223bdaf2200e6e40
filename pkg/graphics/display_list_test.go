package graphics

import (
	"reflect"
	"testing"
)

// TestDisplayList_ReplayOrder verifies that replay preserves append order.
func TestDisplayList_ReplayOrder(t *testing.T) {
	var list DisplayList
	list.Append(RectCommand{Rect: RectFromLTWH(0, 0, 10, 10)})
	list.Append(CircleCommand{Center: Offset{X: 5, Y: 5}, Radius: 2})
	list.Append(TextCommand{Text: "P1", Position: Offset{X: 1, Y: 1}})

	var rec Recorder
	list.Replay(&rec)

	if len(rec.Commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(rec.Commands))
	}
	if _, ok := rec.Commands[0].(RectCommand); !ok {
		t.Errorf("command 0: expected RectCommand, got %T", rec.Commands[0])
	}
	if _, ok := rec.Commands[1].(CircleCommand); !ok {
		t.Errorf("command 1: expected CircleCommand, got %T", rec.Commands[1])
	}
	if _, ok := rec.Commands[2].(TextCommand); !ok {
		t.Errorf("command 2: expected TextCommand, got %T", rec.Commands[2])
	}
}

// TestDisplayList_Extend verifies that Extend keeps both lists' ordering.
func TestDisplayList_Extend(t *testing.T) {
	var a, b DisplayList
	a.Append(RectCommand{Rect: RectFromLTWH(0, 0, 1, 1)})
	b.Append(LineCommand{From: Offset{}, To: Offset{X: 1}})
	b.Append(PolygonCommand{Points: []Offset{{}, {X: 1}, {Y: 1}}})

	a.Extend(&b)
	a.Extend(nil)

	if a.Len() != 3 {
		t.Fatalf("expected 3 commands, got %d", a.Len())
	}
	if _, ok := a.Commands()[1].(LineCommand); !ok {
		t.Errorf("command 1: expected LineCommand, got %T", a.Commands()[1])
	}
}

// TestParseColor covers the accepted textual color forms.
func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "#ff0000", want: ColorRed},
		{in: "ff0000", want: ColorRed},
		{in: "#00ff00ff", want: ColorGreen},
		{in: "0000ff80", want: RGBA(0, 0, 255, 0x80)},
		{in: "00000000", want: ColorTransparent},
		{in: "#fff", wantErr: true},
		{in: "not-a-color", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, got.Hex(), tt.want.Hex())
		}
	}
}

// TestRecorder_RoundTrip verifies that replaying recorded commands onto a
// second recorder reproduces the identical sequence.
func TestRecorder_RoundTrip(t *testing.T) {
	var list DisplayList
	list.Append(PolygonCommand{
		Points: []Offset{{}, {X: 4}, {X: 4, Y: 4}},
		Paint:  Paint{FillColor: ColorWhite},
	})
	list.Append(TextCommand{Text: "A", Position: Offset{X: 2, Y: 2}, Style: TextStyle{Color: ColorBlack, Size: 12}})

	var first, second Recorder
	list.Replay(&first)
	replayed := DisplayList{cmds: first.Commands}
	replayed.Replay(&second)

	if !reflect.DeepEqual(first.Commands, second.Commands) {
		t.Errorf("recorded sequences differ:\nfirst:  %#v\nsecond: %#v", first.Commands, second.Commands)
	}
}
