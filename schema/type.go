package schema

import (
	"fmt"
	"strings"
)

// Type is the semantic type tag of a column.
type Type uint8

// Column types.
const (
	TypeOther Type = iota
	TypeInteger
	TypeFloat
	TypeDecimal
	TypeDate
	TypeTime
	TypeTimestamp
	TypeBoolean
	TypeString
	TypeText
	TypeEnum
	TypeSet
	TypeArray
	TypeObject
	TypeUUID
	TypeUUIDBinary
	TypeBinary
	TypeJSON
)

var typeNames = [...]string{
	TypeOther:      "other",
	TypeInteger:    "integer",
	TypeFloat:      "float",
	TypeDecimal:    "decimal",
	TypeDate:       "date",
	TypeTime:       "time",
	TypeTimestamp:  "timestamp",
	TypeBoolean:    "boolean",
	TypeString:     "string",
	TypeText:       "text",
	TypeEnum:       "enum",
	TypeSet:        "set",
	TypeArray:      "array",
	TypeObject:     "object",
	TypeUUID:       "uuid",
	TypeUUIDBinary: "uuid_binary",
	TypeBinary:     "binary",
	TypeJSON:       "json",
}

// String returns the lowercase name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// ParseType returns the Type for the given name. Common SQL aliases
// (int, bigint, varchar, datetime, bool ...) are accepted.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	switch name {
	case "int", "smallint", "tinyint", "bigint", "serial", "bigserial":
		return TypeInteger, nil
	case "double", "real":
		return TypeFloat, nil
	case "numeric":
		return TypeDecimal, nil
	case "datetime":
		return TypeTimestamp, nil
	case "bool":
		return TypeBoolean, nil
	case "varchar", "char", "longvarchar":
		return TypeString, nil
	case "clob", "longtext":
		return TypeText, nil
	case "blob", "varbinary", "bytea":
		return TypeBinary, nil
	case "binary_uuid", "uuid-binary":
		return TypeUUIDBinary, nil
	}
	return TypeOther, fmt.Errorf("schema: unknown column type %q", s)
}

// Numeric reports whether the type holds numbers.
func (t Type) Numeric() bool {
	return t == TypeInteger || t == TypeFloat || t == TypeDecimal
}

// Temporal reports whether the type holds dates or times.
func (t Type) Temporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeTimestamp
}

// Textual reports whether the type holds character data.
func (t Type) Textual() bool {
	return t == TypeString || t == TypeText
}

// Action is a referential action of a foreign key.
type Action uint8

// Referential actions.
const (
	ActionNone Action = iota
	ActionRestrict
	ActionCascade
	ActionSetNull
	ActionSetDefault
)

var actionNames = [...]string{
	ActionNone:       "NONE",
	ActionRestrict:   "RESTRICT",
	ActionCascade:    "CASCADE",
	ActionSetNull:    "SETNULL",
	ActionSetDefault: "SETDEFAULT",
}

// String returns the name of the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", a)
}

// ParseAction parses referential actions as written in DDL ("SET NULL",
// "cascade", "no action" ...).
func ParseAction(s string) (Action, error) {
	name := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	switch name {
	case "", "NONE", "NOACTION":
		return ActionNone, nil
	case "RESTRICT":
		return ActionRestrict, nil
	case "CASCADE":
		return ActionCascade, nil
	case "SETNULL":
		return ActionSetNull, nil
	case "SETDEFAULT":
		return ActionSetDefault, nil
	}
	return ActionNone, fmt.Errorf("schema: unknown referential action %q", s)
}
