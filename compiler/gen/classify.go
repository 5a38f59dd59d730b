package gen

import (
	"fmt"

	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/schema"
)

// Behavior is the filter behavior of a column. The set of behaviors is
// closed: every column type maps to exactly one of the types below.
type Behavior interface {
	behavior()
}

type (
	// NumericBehavior filters numeric and temporal columns. Ranges and
	// membership lists are accepted.
	NumericBehavior struct{ Temporal bool }

	// BooleanBehavior coerces non bool values with the string policy of
	// ToBool before comparing.
	BooleanBehavior struct{}

	// TextBehavior filters character columns.
	TextBehavior struct{}

	// EnumBehavior maps values to their index in the declared value set.
	EnumBehavior struct{ Values []string }

	// SetBehavior encodes values as a bitmask where bit i stands for
	// Values[i].
	SetBehavior struct{ Values []string }

	// ArrayBehavior matches "| a | b |" encoded array columns with LIKE
	// patterns.
	ArrayBehavior struct{}

	// UUIDBinaryBehavior converts UUID values to their 16 bytes form,
	// with swapped time fields when Swap is set.
	UUIDBinaryBehavior struct{ Swap bool }

	// ObjectBehavior serializes non string values with msgpack.
	ObjectBehavior struct{}

	// PassthroughBehavior binds values unchanged.
	PassthroughBehavior struct{}
)

func (NumericBehavior) behavior()     {}
func (BooleanBehavior) behavior()     {}
func (TextBehavior) behavior()        {}
func (EnumBehavior) behavior()        {}
func (SetBehavior) behavior()         {}
func (ArrayBehavior) behavior()       {}
func (UUIDBinaryBehavior) behavior()  {}
func (ObjectBehavior) behavior()      {}
func (PassthroughBehavior) behavior() {}

// Classify returns the filter behavior of a column on the given platform.
func Classify(c *schema.Column, p dialect.Platform) Behavior {
	switch c.Type {
	case schema.TypeInteger, schema.TypeFloat, schema.TypeDecimal:
		return NumericBehavior{}
	case schema.TypeDate, schema.TypeTime, schema.TypeTimestamp:
		return NumericBehavior{Temporal: true}
	case schema.TypeBoolean:
		return BooleanBehavior{}
	case schema.TypeString, schema.TypeText, schema.TypeUUID:
		return TextBehavior{}
	case schema.TypeEnum:
		return EnumBehavior{Values: c.Values}
	case schema.TypeSet:
		return SetBehavior{Values: c.Values}
	case schema.TypeArray:
		return ArrayBehavior{}
	case schema.TypeUUIDBinary:
		return UUIDBinaryBehavior{Swap: p.UUIDSwap}
	case schema.TypeObject:
		return ObjectBehavior{}
	default:
		return PassthroughBehavior{}
	}
}

// BehaviorName returns a short name of the behavior.
func BehaviorName(b Behavior) string {
	switch b := b.(type) {
	case NumericBehavior:
		if b.Temporal {
			return "temporal"
		}
		return "numeric"
	case BooleanBehavior:
		return "boolean"
	case TextBehavior:
		return "text"
	case EnumBehavior:
		return "enum"
	case SetBehavior:
		return "set"
	case ArrayBehavior:
		return "array"
	case UUIDBinaryBehavior:
		if b.Swap {
			return "uuid_binary(swapped)"
		}
		return "uuid_binary"
	case ObjectBehavior:
		return "object"
	case PassthroughBehavior:
		return "passthrough"
	}
	panic(fmt.Sprintf("gen: unknown behavior %T", b))
}
