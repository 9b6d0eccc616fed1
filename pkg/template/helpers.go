package template

import (
	"fmt"
	"strings"
	"unicode"
)

// Helper is a pure function over a resolved argument list. Arguments arrive
// as store values (nil for unresolved paths); the result is substituted as
// text and may feed an enclosing helper call.
type Helper func(args []any) (string, error)

func builtinHelpers() map[string]Helper {
	return map[string]Helper{
		"default":    defaultHelper,
		"uppercase":  stringHelper("uppercase", strings.ToUpper),
		"lowercase":  stringHelper("lowercase", strings.ToLower),
		"capitalize": stringHelper("capitalize", capitalize),
		"trim":       stringHelper("trim", strings.TrimSpace),
		"replace":    replaceHelper,
	}
}

// defaultHelper returns the fallback when the value is absent or an empty
// string. Other falsy values (false, 0) pass through unchanged.
func defaultHelper(args []any) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("requires a value and a fallback, got %d arguments", len(args))
	}
	if args[0] == nil {
		return Stringify(args[1]), nil
	}
	if s := Stringify(args[0]); s != "" {
		return s, nil
	}
	return Stringify(args[1]), nil
}

func stringHelper(name string, fn func(string) string) Helper {
	return func(args []any) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("requires exactly one argument, got %d", len(args))
		}
		return fn(Stringify(args[0])), nil
	}
}

func replaceHelper(args []any) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("requires text, old, and new arguments, got %d", len(args))
	}
	text := Stringify(args[0])
	old := Stringify(args[1])
	repl := Stringify(args[2])
	return strings.ReplaceAll(text, old, repl), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
