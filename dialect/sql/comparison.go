package sql

import (
	"errors"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"
)

// Comparison is the operator a filter applies between a column and a value.
// The zero value means no explicit comparison was requested and lets the
// column type pick its default.
type Comparison string

// Comparison operators.
const (
	Equal        Comparison = "="
	NotEqual     Comparison = "<>"
	GreaterThan  Comparison = ">"
	GreaterEqual Comparison = ">="
	LessThan     Comparison = "<"
	LessEqual    Comparison = "<="
	Like         Comparison = "LIKE"
	NotLike      Comparison = "NOT LIKE"
	ILike        Comparison = "ILIKE"
	NotILike     Comparison = "NOT ILIKE"
	In           Comparison = "IN"
	NotIn        Comparison = "NOT IN"
	IsNull       Comparison = "IS NULL"
	IsNotNull    Comparison = "IS NOT NULL"

	// Collection comparisons, resolved by set and array column filters.
	ContainsAll  Comparison = "CONTAINS_ALL"
	ContainsSome Comparison = "CONTAINS_SOME"
	ContainsNone Comparison = "CONTAINS_NONE"

	// Bitwise comparisons on integer bitmasks.
	BinaryAll  Comparison = "BINARY_ALL"
	BinaryAnd  Comparison = "BINARY_AND"
	BinaryNone Comparison = "BINARY_NONE"
)

// ErrUnsupportedComparison is returned for operators that cannot be
// rendered for the given operand.
var ErrUnsupportedComparison = errors.New("dialect/sql: unsupported comparison")

// Range is an inclusive range filter on numeric and temporal columns.
// A nil bound is not applied.
type Range struct {
	Min any
	Max any
}

// Compare renders "col cmp v" as a squirrel predicate. Membership
// operators accept slices; scalars are treated as one element lists.
func Compare(col string, cmp Comparison, v any) (sq.Sqlizer, error) {
	switch cmp {
	case "", Equal:
		return sq.Eq{col: v}, nil
	case NotEqual:
		return sq.NotEq{col: v}, nil
	case GreaterThan:
		return sq.Gt{col: v}, nil
	case GreaterEqual:
		return sq.GtOrEq{col: v}, nil
	case LessThan:
		return sq.Lt{col: v}, nil
	case LessEqual:
		return sq.LtOrEq{col: v}, nil
	case Like:
		return sq.Like{col: v}, nil
	case NotLike:
		return sq.NotLike{col: v}, nil
	case ILike:
		return sq.ILike{col: v}, nil
	case NotILike:
		return sq.NotILike{col: v}, nil
	case In:
		return sq.Eq{col: AsList(v)}, nil
	case NotIn:
		return sq.NotEq{col: AsList(v)}, nil
	case IsNull:
		return sq.Eq{col: nil}, nil
	case IsNotNull:
		return sq.NotEq{col: nil}, nil
	case BinaryAll:
		return sq.Expr("("+col+" & ?) = ?", v, v), nil
	case BinaryAnd:
		return sq.Expr("("+col+" & ?) <> 0", v), nil
	case BinaryNone:
		return sq.Expr("("+col+" & ?) = 0", v), nil
	}
	return nil, fmt.Errorf("%w %q on %s", ErrUnsupportedComparison, cmp, col)
}

// IsList reports whether v is a slice or array other than []byte.
func IsList(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// AsList returns v as a []any. Scalars become one element lists.
func AsList(v any) []any {
	switch v := v.(type) {
	case []any:
		return v
	case nil:
		return []any{nil}
	}
	if !IsList(v) {
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list
}
