package template

import (
	"fmt"
)

type (
	// TemplateSyntaxError reports malformed template source with the line it
	// occurred on and common-mistake guidance.
	TemplateSyntaxError struct {
		Line    int
		Message string
	}

	// VariableNotFoundError reports an unresolved variable reference along
	// with ranked suggestions for what the author may have meant.
	VariableNotFoundError struct {
		Variable   string
		Suggestion string
	}

	// ProcessingError is the generic rendering/validation failure.
	ProcessingError struct {
		Message string
	}
)

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("template syntax error on line %d: %s", e.Line, e.Message)
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found\n%s", e.Variable, e.Suggestion)
}

func (e *ProcessingError) Error() string {
	return e.Message
}
