package state

import "fmt"

// Value is a typed state value: a bool, an integer, or an enum ordinal.
// The closed kind set mirrors the schema's Kind.
type Value struct {
	Kind Kind
	Num  int64
}

// BoolValue constructs a boolean value.
func BoolValue(b bool) Value {
	var n int64
	if b {
		n = 1
	}
	return Value{Kind: KindBool, Num: n}
}

// IntValue constructs an integer value.
func IntValue(n int64) Value {
	return Value{Kind: KindInt, Num: n}
}

// EnumValue constructs an enum value from its ordinal.
func EnumValue(ordinal int) Value {
	return Value{Kind: KindEnum, Num: int64(ordinal)}
}

// Bool returns the value as a boolean.
func (v Value) Bool() bool {
	return v.Num != 0
}

// Int returns the value as an integer.
func (v Value) Int() int64 {
	return v.Num
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindEnum:
		return fmt.Sprintf("enum(%d)", v.Num)
	default:
		return fmt.Sprintf("%d", v.Num)
	}
}
