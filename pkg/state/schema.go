// Package state defines the fixed schema of queryable runtime facts and
// the immutable per-frame Snapshot built from them.
//
// Every field a condition may reference is declared here, once. Conditions
// resolve field names to integer indices at config validation time, so
// per-frame evaluation is an index into a flat value slice and can never
// fail structurally.
package state

import "context"

// Kind is the type of a state field value.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Scope says whether a field is per controller slot or global.
type Scope uint8

const (
	// ScopeSlot fields have one value per controller slot. They are
	// unknown in the global view.
	ScopeSlot Scope = iota
	// ScopeGlobal fields have one shared value, visible in every view.
	ScopeGlobal
)

// Field describes one entry of the fixed state schema.
type Field struct {
	Name  string
	Kind  Kind
	Scope Scope
	// Enum holds the ordered symbol set for KindEnum fields; a value of
	// such a field is an ordinal into this slice.
	Enum []string

	index int
}

// Index returns the field's position in a view's value slice.
func (f *Field) Index() int {
	return f.index
}

// EnumOrdinal resolves an enum symbol to its ordinal.
func (f *Field) EnumOrdinal(symbol string) (int, bool) {
	for i, s := range f.Enum {
		if s == symbol {
			return i, true
		}
	}
	return 0, false
}

// MaxSlots is the number of controller slots the companion service reports.
const MaxSlots = 8

// Connection status enum symbols, in wire order.
var connectionStatusEnum = []string{"disconnected", "pairing", "connected"}

// ConnectionStatus is an ordinal into the connection_status enum.
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusPairing
	StatusConnected
)

// Controller type enum symbols.
var controllerTypeEnum = []string{
	"unknown",
	"pro_controller",
	"joycon_left",
	"joycon_right",
	"joycon_pair",
	"handheld",
}

// ControllerType is an ordinal into the controller_type enum.
type ControllerType int

const (
	TypeUnknown ControllerType = iota
	TypeProController
	TypeJoyconLeft
	TypeJoyconRight
	TypeJoyconPair
	TypeHandheld
)

// ButtonNames lists the button fields in wire bit order: bit i of the
// button mask corresponds to ButtonNames[i].
var ButtonNames = []string{
	"button_a",
	"button_b",
	"button_x",
	"button_y",
	"button_stick_left",
	"button_stick_right",
	"button_l",
	"button_r",
	"button_zl",
	"button_zr",
	"button_plus",
	"button_minus",
	"button_dpad_left",
	"button_dpad_up",
	"button_dpad_right",
	"button_dpad_down",
	"button_capture",
	"button_home",
}

var (
	schema  []*Field
	byName  map[string]*Field
	buttons []*Field

	// Fields referenced directly by the snapshot builder.
	fieldConnectionStatus *Field
	fieldConnected        *Field
	fieldControllerType   *Field
	fieldBatteryLevel     *Field
	fieldPlayerIndex      *Field
	fieldStickLeftX       *Field
	fieldStickLeftY       *Field
	fieldStickRightX      *Field
	fieldStickRightY      *Field
	fieldStickLeftActive  *Field
	fieldStickRightActive *Field
	fieldConnectedCount   *Field
	fieldStateUnknown     *Field
	slotConnected         []*Field
)

func addField(name string, kind Kind, scope Scope, enum []string) *Field {
	f := &Field{Name: name, Kind: kind, Scope: scope, Enum: enum, index: len(schema)}
	schema = append(schema, f)
	byName[name] = f
	return f
}

func init() {
	byName = make(map[string]*Field)

	fieldConnectionStatus = addField("connection_status", KindEnum, ScopeSlot, connectionStatusEnum)
	fieldConnected = addField("connected", KindBool, ScopeSlot, nil)
	fieldControllerType = addField("controller_type", KindEnum, ScopeSlot, controllerTypeEnum)
	fieldBatteryLevel = addField("battery_level", KindInt, ScopeSlot, nil)
	fieldPlayerIndex = addField("player_index", KindInt, ScopeSlot, nil)

	for _, name := range ButtonNames {
		buttons = append(buttons, addField(name, KindBool, ScopeSlot, nil))
	}

	fieldStickLeftX = addField("stick_left_x", KindInt, ScopeSlot, nil)
	fieldStickLeftY = addField("stick_left_y", KindInt, ScopeSlot, nil)
	fieldStickRightX = addField("stick_right_x", KindInt, ScopeSlot, nil)
	fieldStickRightY = addField("stick_right_y", KindInt, ScopeSlot, nil)
	fieldStickLeftActive = addField("stick_left_active", KindBool, ScopeSlot, nil)
	fieldStickRightActive = addField("stick_right_active", KindBool, ScopeSlot, nil)

	fieldConnectedCount = addField("connected_count", KindInt, ScopeGlobal, nil)
	for i := 0; i < MaxSlots; i++ {
		slotConnected = append(slotConnected,
			addField("slot"+string(rune('0'+i))+"_connected", KindBool, ScopeGlobal, nil))
	}
	fieldStateUnknown = addField("state_unknown", KindBool, ScopeGlobal, nil)
}

// Lookup resolves a field name against the fixed schema.
func Lookup(name string) (*Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// NumFields returns the size of the schema.
func NumFields() int {
	return len(schema)
}

// Fields returns the schema in declaration order.
// The returned slice must not be modified.
func Fields() []*Field {
	return schema
}

// Source provides one fresh Snapshot per call. Implementations abstract
// the IPC mechanism that talks to the companion system service.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}
