// Package condition implements the boolean expression language used by
// overlay configurations.
//
// Expressions are parsed into a small closed AST, bound against the fixed
// state schema once at config load time (resolving field names to indices
// and type-checking every comparison), and evaluated per frame against a
// state.View. Evaluation is pure, deterministic and total for any bound
// expression; structural errors are impossible after binding.
package condition

import "fmt"

// Op is a comparison operator.
type Op int

const (
	OpEQ Op = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ordered reports whether the operator requires numeric ordering.
func (o Op) ordered() bool {
	return o == OpLT || o == OpLE || o == OpGT || o == OpGE
}

// Expr is a node of the parsed, unbound expression tree.
//
// The node set is closed: FieldRef, IntLit, BoolLit, Compare, And, Or, Not.
// A bare identifier parses as FieldRef; the binder may reinterpret it as an
// enum symbol when it appears opposite an enum field in a comparison.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// FieldRef references a named state field (or an enum symbol, resolved at
// bind time).
type FieldRef struct {
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

// Compare applies a comparison operator to two operands.
type Compare struct {
	Op    Op
	Left  Expr
	Right Expr
}

// And is a short-circuit conjunction.
type And struct {
	Left  Expr
	Right Expr
}

// Or is a short-circuit disjunction.
type Or struct {
	Left  Expr
	Right Expr
}

// Not negates its operand.
type Not struct {
	Expr Expr
}

func (FieldRef) isExpr() {}
func (IntLit) isExpr()   {}
func (BoolLit) isExpr()  {}
func (Compare) isExpr()  {}
func (And) isExpr()      {}
func (Or) isExpr()       {}
func (Not) isExpr()      {}

func (e FieldRef) String() string { return e.Name }
func (e IntLit) String() string   { return fmt.Sprintf("%d", e.Value) }

func (e BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (e Compare) String() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

func (e And) String() string {
	return fmt.Sprintf("(%s && %s)", e.Left, e.Right)
}

func (e Or) String() string {
	return fmt.Sprintf("(%s || %s)", e.Left, e.Right)
}

func (e Not) String() string {
	return fmt.Sprintf("!%s", e.Expr)
}
