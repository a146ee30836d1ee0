package entities

import "fmt"

// FormatError reports an input string that does not have the expected shape
type FormatError struct {
	Value    string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q: expected %s", e.Value, e.Expected)
}

// StructuralError reports markup that lacks an element the parser depends on
type StructuralError struct {
	Element string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s not found", e.Element)
}

// TypeError reports a value whose Go type cannot be used as a port identifier
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("unsupported identifier type %T", e.Value)
}
