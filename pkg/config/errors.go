package config

import "fmt"

// ErrorKind identifies the category of a configuration error.
type ErrorKind int

const (
	// KindParse indicates malformed syntax or an invalid value.
	KindParse ErrorKind = iota
	// KindUnknownAttribute indicates an unknown shape type or style
	// attribute name.
	KindUnknownAttribute
	// KindUnknownStateField indicates a condition referencing a field
	// outside the fixed state schema.
	KindUnknownStateField
	// KindTypeMismatch indicates a condition comparison with
	// incompatible operand types.
	KindTypeMismatch
	// KindDuplicateLayout indicates two layouts sharing a name.
	KindDuplicateLayout
	// KindUnknownLayout indicates a binding referencing an undeclared
	// layout.
	KindUnknownLayout
	// KindMissingDefaultBinding indicates no unconditional catch-all
	// binding is declared.
	KindMissingDefaultBinding
	// KindCyclicTemplate indicates a template instantiating itself,
	// directly or transitively.
	KindCyclicTemplate
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUnknownAttribute:
		return "unknown-attribute"
	case KindUnknownStateField:
		return "unknown-state-field"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindDuplicateLayout:
		return "duplicate-layout"
	case KindUnknownLayout:
		return "unknown-layout"
	case KindMissingDefaultBinding:
		return "missing-default-binding"
	case KindCyclicTemplate:
		return "cyclic-template"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ConfigError is a load-time configuration failure. One is returned for
// the first problem found; loading never partially succeeds.
type ConfigError struct {
	Kind ErrorKind
	// Path locates the problem in the document (e.g. `layout "pro": item 2`).
	Path   string
	Detail string
	// Err is the underlying error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	msg := e.Detail
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("config [%s] %s: %s", e.Kind, e.Path, msg)
	}
	return fmt.Sprintf("config [%s]: %s", e.Kind, msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(kind ErrorKind, path, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}
