package schederr

import (
	"strings"
	"unicode"
)

// ValidateIdentifier validates a DDL/LSD unit name for well-formedness.
// Names must be non-empty, free of whitespace and control characters,
// and free of ';' (starts a comment) and ',' (separates operands); '<'
// and '-' are not rejected.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeParse, "identifier cannot be empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return New(ErrCodeParse, "identifier %q contains whitespace", name)
		}
		if unicode.IsControl(r) {
			return New(ErrCodeParse, "identifier %q contains control characters", name)
		}
	}
	if strings.ContainsAny(name, ";,") {
		return New(ErrCodeParse, "identifier %q contains a reserved character", name)
	}
	return nil
}

// ValidateDefined checks that name has already been defined (appears in
// defs) before it is used as an input operand, per the DDL "use before
// def" rule. It returns an ErrCodeUndefinedName error naming the
// offending line when the name is missing.
func ValidateDefined(defs map[string]struct{}, name string, line int) error {
	if _, ok := defs[name]; !ok {
		return New(ErrCodeUndefinedName, "line %d: %q used before definition", line, name)
	}
	return nil
}

// ValidateKindToken validates the "Kind" token of an LSD "To" line,
// which must be exactly "data" or "order".
func ValidateKindToken(token string, line int) error {
	switch token {
	case "data", "order":
		return nil
	default:
		return New(ErrCodeParse, "line %d: unknown dep kind %q (want data or order)", line, token)
	}
}

// ValidateNonNegativeInt validates that a parsed integer field (latency,
// register id, unit id) is not negative; DDL/LSD numeric fields are
// unsigned in the wire format but a naive parser may accept a leading
// '-', so this is checked explicitly at the parse boundary.
func ValidateNonNegativeInt(field string, value int, line int) error {
	if value < 0 {
		return New(ErrCodeParse, "line %d: %s must not be negative, got %d", line, field, value)
	}
	return nil
}
