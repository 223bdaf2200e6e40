package condition

import (
	"fmt"

	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// BindErrorKind distinguishes the two ways binding can fail.
type BindErrorKind int

const (
	// BindUnknownField means a referenced field is not in the schema.
	BindUnknownField BindErrorKind = iota
	// BindTypeMismatch means operand types or operators do not line up.
	BindTypeMismatch
)

// BindError describes a failure to bind an expression to the state schema.
type BindError struct {
	Kind BindErrorKind
	// Field is the offending field or symbol name, when applicable.
	Field string
	Msg   string
}

func (e *BindError) Error() string {
	return e.Msg
}

// Bound is an expression resolved against the state schema: field names
// replaced by indices, enum symbols by ordinals, every comparison
// type-checked. Eval cannot fail for a Bound expression.
type Bound struct {
	root boolNode
	src  string
}

// Compile parses src and binds it against the fixed state schema.
func Compile(src string) (*Bound, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Bind(expr, src)
}

// Bind resolves and type-checks an expression tree. src is retained for
// Source and error messages.
func Bind(expr Expr, src string) (*Bound, error) {
	root, err := bindBool(expr)
	if err != nil {
		return nil, err
	}
	return &Bound{root: root, src: src}, nil
}

// Source returns the original expression text.
func (b *Bound) Source() string {
	return b.src
}

// Eval evaluates the expression against one view. It is pure and
// deterministic. And/Or short-circuit left to right; a comparison (or bare
// boolean field) whose field is unknown in the view evaluates to false.
func (b *Bound) Eval(view *state.View) bool {
	return b.root.evalBool(view)
}

// boolNode is a bound boolean expression node.
type boolNode interface {
	evalBool(view *state.View) bool
}

// valueNode is a bound comparison operand.
type valueNode interface {
	// evalValue returns the operand value, or ok=false when the backing
	// field is unknown in the view.
	evalValue(view *state.View) (state.Value, bool)
	valueKind() state.Kind
}

type andNode struct{ left, right boolNode }

func (n andNode) evalBool(view *state.View) bool {
	return n.left.evalBool(view) && n.right.evalBool(view)
}

type orNode struct{ left, right boolNode }

func (n orNode) evalBool(view *state.View) bool {
	return n.left.evalBool(view) || n.right.evalBool(view)
}

type notNode struct{ inner boolNode }

func (n notNode) evalBool(view *state.View) bool {
	return !n.inner.evalBool(view)
}

type boolLitNode struct{ value bool }

func (n boolLitNode) evalBool(_ *state.View) bool {
	return n.value
}

// fieldBoolNode reads a boolean field used directly as a condition.
// An unknown field evaluates to false.
type fieldBoolNode struct{ index int }

func (n fieldBoolNode) evalBool(view *state.View) bool {
	v, ok := view.Field(n.index)
	return ok && v.Bool()
}

type cmpNode struct {
	op          Op
	left, right valueNode
}

func (n cmpNode) evalBool(view *state.View) bool {
	lv, ok := n.left.evalValue(view)
	if !ok {
		return false
	}
	rv, ok := n.right.evalValue(view)
	if !ok {
		return false
	}
	if lv.Kind != rv.Kind {
		// Binding guarantees matching kinds; reaching this means the
		// validator let something through it must not.
		errors.Invariantf("condition.Eval", "comparing %s with %s", lv.Kind, rv.Kind)
	}
	switch n.op {
	case OpEQ:
		return lv.Num == rv.Num
	case OpNE:
		return lv.Num != rv.Num
	case OpLT:
		return lv.Num < rv.Num
	case OpLE:
		return lv.Num <= rv.Num
	case OpGT:
		return lv.Num > rv.Num
	case OpGE:
		return lv.Num >= rv.Num
	default:
		errors.Invariantf("condition.Eval", "unknown operator %d", int(n.op))
		return false
	}
}

type fieldValueNode struct {
	index int
	kind  state.Kind
}

func (n fieldValueNode) evalValue(view *state.View) (state.Value, bool) {
	return view.Field(n.index)
}

func (n fieldValueNode) valueKind() state.Kind {
	return n.kind
}

type litValueNode struct{ value state.Value }

func (n litValueNode) evalValue(_ *state.View) (state.Value, bool) {
	return n.value, true
}

func (n litValueNode) valueKind() state.Kind {
	return n.value.Kind
}

func bindBool(expr Expr) (boolNode, error) {
	switch e := expr.(type) {
	case And:
		left, err := bindBool(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := bindBool(e.Right)
		if err != nil {
			return nil, err
		}
		return andNode{left: left, right: right}, nil
	case Or:
		left, err := bindBool(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := bindBool(e.Right)
		if err != nil {
			return nil, err
		}
		return orNode{left: left, right: right}, nil
	case Not:
		inner, err := bindBool(e.Expr)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	case BoolLit:
		return boolLitNode{value: e.Value}, nil
	case FieldRef:
		field, ok := state.Lookup(e.Name)
		if !ok {
			return nil, &BindError{
				Kind:  BindUnknownField,
				Field: e.Name,
				Msg:   fmt.Sprintf("unknown state field %q", e.Name),
			}
		}
		if field.Kind != state.KindBool {
			return nil, &BindError{
				Kind:  BindTypeMismatch,
				Field: e.Name,
				Msg:   fmt.Sprintf("field %q is %s, not a boolean condition", e.Name, field.Kind),
			}
		}
		return fieldBoolNode{index: field.Index()}, nil
	case IntLit:
		return nil, &BindError{
			Kind: BindTypeMismatch,
			Msg:  fmt.Sprintf("integer literal %d is not a condition", e.Value),
		}
	case Compare:
		return bindCompare(e)
	default:
		errors.Invariantf("condition.Bind", "unhandled expression node %T", expr)
		return nil, nil
	}
}

func bindCompare(cmp Compare) (boolNode, error) {
	left, leftField := resolveField(cmp.Left)
	right, rightField := resolveField(cmp.Right)

	// A bare identifier opposite an enum field reads as that enum's
	// symbol, even when the name also happens to be a schema field:
	// in `connection_status == connected` the right-hand side is the
	// connection_status symbol, not the connected bool field.
	if sym, ok := enumSymbol(cmp.Right, leftField); ok {
		right, rightField = sym, nil
	} else if sym, ok := enumSymbol(cmp.Left, rightField); ok {
		left, leftField = sym, nil
	}

	var err error
	if left == nil {
		left, err = resolveOperand(cmp.Left, rightField)
		if err != nil {
			return nil, err
		}
	}
	if right == nil {
		right, err = resolveOperand(cmp.Right, leftField)
		if err != nil {
			return nil, err
		}
	}

	if left.valueKind() != right.valueKind() {
		return nil, &BindError{
			Kind: BindTypeMismatch,
			Msg: fmt.Sprintf("cannot compare %s with %s in %q",
				left.valueKind(), right.valueKind(), cmp),
		}
	}
	if cmp.Op.ordered() && left.valueKind() != state.KindInt {
		return nil, &BindError{
			Kind: BindTypeMismatch,
			Msg: fmt.Sprintf("operator %s needs integer operands, got %s in %q",
				cmp.Op, left.valueKind(), cmp),
		}
	}
	if leftField != nil && rightField != nil && leftField.Kind == state.KindEnum {
		if !sameEnum(leftField, rightField) {
			return nil, &BindError{
				Kind: BindTypeMismatch,
				Msg: fmt.Sprintf("fields %q and %q have different enum types",
					leftField.Name, rightField.Name),
			}
		}
	}
	return cmpNode{op: cmp.Op, left: left, right: right}, nil
}

// enumSymbol resolves a bare identifier to an ordinal of the opposite
// enum field's symbol set. It reports false for every other operand shape.
func enumSymbol(expr Expr, opposite *state.Field) (valueNode, bool) {
	if opposite == nil || opposite.Kind != state.KindEnum {
		return nil, false
	}
	ref, ok := expr.(FieldRef)
	if !ok {
		return nil, false
	}
	ord, ok := opposite.EnumOrdinal(ref.Name)
	if !ok {
		return nil, false
	}
	return litValueNode{value: state.EnumValue(ord)}, true
}

// resolveField maps a FieldRef operand to its field node when the name is
// in the schema. It returns nil nodes for every other operand shape.
func resolveField(expr Expr) (valueNode, *state.Field) {
	ref, ok := expr.(FieldRef)
	if !ok {
		return nil, nil
	}
	field, ok := state.Lookup(ref.Name)
	if !ok {
		return nil, nil
	}
	return fieldValueNode{index: field.Index(), kind: field.Kind}, field
}

// resolveOperand handles non-field operands: literals, and identifiers
// that name an enum symbol of the opposite field.
func resolveOperand(expr Expr, opposite *state.Field) (valueNode, error) {
	switch e := expr.(type) {
	case IntLit:
		return litValueNode{value: state.IntValue(e.Value)}, nil
	case BoolLit:
		return litValueNode{value: state.BoolValue(e.Value)}, nil
	case FieldRef:
		if opposite != nil && opposite.Kind == state.KindEnum {
			if ord, ok := opposite.EnumOrdinal(e.Name); ok {
				return litValueNode{value: state.EnumValue(ord)}, nil
			}
			return nil, &BindError{
				Kind:  BindUnknownField,
				Field: e.Name,
				Msg: fmt.Sprintf("%q is neither a state field nor a value of %q",
					e.Name, opposite.Name),
			}
		}
		return nil, &BindError{
			Kind:  BindUnknownField,
			Field: e.Name,
			Msg:   fmt.Sprintf("unknown state field %q", e.Name),
		}
	default:
		return nil, &BindError{
			Kind: BindTypeMismatch,
			Msg:  fmt.Sprintf("%q is not a comparison operand", expr),
		}
	}
}

func sameEnum(a, b *state.Field) bool {
	if len(a.Enum) != len(b.Enum) {
		return false
	}
	for i := range a.Enum {
		if a.Enum[i] != b.Enum[i] {
			return false
		}
	}
	return true
}
