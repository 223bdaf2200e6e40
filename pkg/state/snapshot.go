package state

// stickDeadZone is the raw axis magnitude below which a stick counts as
// centered for the *_active fields.
const stickDeadZone = 4096

// BatteryUnknown marks an unreported battery level.
const BatteryUnknown = -1

// Controller is the decoded per-controller report from the companion
// service, independent of its wire encoding.
type Controller struct {
	ID      int
	Status  ConnectionStatus
	Type    ControllerType
	Battery int // 0-100, or BatteryUnknown
	Buttons uint32
	LeftX   int
	LeftY   int
	RightX  int
	RightY  int
}

// View exposes the field values visible to one evaluation context: either
// one controller slot (slot fields plus globals) or the global context
// (slot fields unknown).
type View struct {
	values []Value
	known  []bool
}

// Field returns the value at the given schema index and whether it is
// known in this view. Conditions treat a comparison on an unknown field
// as false.
func (v *View) Field(index int) (Value, bool) {
	if index < 0 || index >= len(v.values) {
		return Value{}, false
	}
	return v.values[index], v.known[index]
}

func (v *View) set(f *Field, val Value) {
	v.values[f.index] = val
	v.known[f.index] = true
}

// Snapshot is the immutable record of all queryable runtime facts for one
// frame. It is constructed once per frame by the frame loop and shared by
// reference with the evaluators.
type Snapshot struct {
	controllers []Controller
	degraded    bool
	global      View
	slots       [MaxSlots]View
}

// NewSnapshot builds a snapshot from controller reports. The degraded flag
// sets the state_unknown field (raised by the frame loop after repeated
// transport failures).
func NewSnapshot(controllers []Controller, degraded bool) *Snapshot {
	s := &Snapshot{
		controllers: append([]Controller(nil), controllers...),
		degraded:    degraded,
	}

	connected := 0
	byID := make(map[int]*Controller, len(s.controllers))
	for i := range s.controllers {
		c := &s.controllers[i]
		if c.ID >= 0 && c.ID < MaxSlots {
			byID[c.ID] = c
		}
		if c.Status == StatusConnected {
			connected++
		}
	}

	s.global = newView()
	s.global.set(fieldConnectedCount, IntValue(int64(connected)))
	s.global.set(fieldStateUnknown, BoolValue(degraded))
	for i := 0; i < MaxSlots; i++ {
		c, ok := byID[i]
		s.global.set(slotConnected[i], BoolValue(ok && c.Status == StatusConnected))
	}

	for slot := 0; slot < MaxSlots; slot++ {
		view := newView()
		// Globals are visible from every slot.
		copy(view.values, s.global.values)
		copy(view.known, s.global.known)
		view.set(fieldPlayerIndex, IntValue(int64(slot)))

		c, ok := byID[slot]
		if !ok {
			// No report for this slot: identity and inputs are unknown,
			// but the slot is definitely not connected.
			view.set(fieldConnectionStatus, EnumValue(int(StatusDisconnected)))
			view.set(fieldConnected, BoolValue(false))
			s.slots[slot] = view
			continue
		}

		view.set(fieldConnectionStatus, EnumValue(int(c.Status)))
		view.set(fieldConnected, BoolValue(c.Status == StatusConnected))
		view.set(fieldControllerType, EnumValue(int(c.Type)))
		if c.Battery != BatteryUnknown {
			view.set(fieldBatteryLevel, IntValue(int64(c.Battery)))
		}
		for bit, f := range buttons {
			view.set(f, BoolValue(c.Buttons&(1<<bit) != 0))
		}
		view.set(fieldStickLeftX, IntValue(int64(c.LeftX)))
		view.set(fieldStickLeftY, IntValue(int64(c.LeftY)))
		view.set(fieldStickRightX, IntValue(int64(c.RightX)))
		view.set(fieldStickRightY, IntValue(int64(c.RightY)))
		view.set(fieldStickLeftActive, BoolValue(outsideDeadZone(c.LeftX, c.LeftY)))
		view.set(fieldStickRightActive, BoolValue(outsideDeadZone(c.RightX, c.RightY)))
		s.slots[slot] = view
	}

	return s
}

// Empty returns a snapshot with no controller reports. Used before the
// first successful fetch.
func Empty() *Snapshot {
	return NewSnapshot(nil, false)
}

func newView() View {
	return View{
		values: make([]Value, NumFields()),
		known:  make([]bool, NumFields()),
	}
}

func outsideDeadZone(x, y int) bool {
	return x > stickDeadZone || x < -stickDeadZone || y > stickDeadZone || y < -stickDeadZone
}

// Degraded reports whether state_unknown is raised in this snapshot.
func (s *Snapshot) Degraded() bool {
	return s.degraded
}

// WithDegraded returns a snapshot with the same controller reports and the
// given degraded flag. The receiver is not modified.
func (s *Snapshot) WithDegraded(degraded bool) *Snapshot {
	if s.degraded == degraded {
		return s
	}
	return NewSnapshot(s.controllers, degraded)
}

// Global returns the view for screen-level conditions: global fields are
// known, slot fields are unknown.
func (s *Snapshot) Global() *View {
	return &s.global
}

// Slot returns the view for one controller slot.
func (s *Snapshot) Slot(slot int) *View {
	if slot < 0 || slot >= MaxSlots {
		return &s.global
	}
	return &s.slots[slot]
}
