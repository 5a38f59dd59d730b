package gen

import (
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/cases"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// Filter is the compiled filter operation of a column.
type Filter struct {
	Column   *schema.Column
	Behavior Behavior
}

// NewFilter compiles the filter of column c for platform p.
func NewFilter(c *schema.Column, p dialect.Platform) *Filter {
	return &Filter{Column: c, Behavior: Classify(c, p)}
}

// Name returns the name of the filter method.
func (f *Filter) Name() string { return "FilterBy" + pascal(f.Column.Name) }

// HasSingular reports whether the column has a singular filter.
func (f *Filter) HasSingular() bool {
	if f.Column.Singular == "" {
		return false
	}
	switch f.Behavior.(type) {
	case ArrayBehavior, SetBehavior:
		return true
	}
	return false
}

// SingularName returns the name of the singular filter method.
func (f *Filter) SingularName() string { return "FilterBy" + pascal(f.Column.Singular) }

// Apply adds the filter of v to c. Operations that resolve to no predicate,
// such as a set filter with an empty operand, leave c unmodified.
func (f *Filter) Apply(c *sql.Criteria, v any, cmp sql.Comparison) error {
	pred, err := f.Predicate(c.Qualifier(), v, cmp)
	if err != nil || pred == nil {
		return err
	}
	c.Add(c.Qualifier(), f.Column.Name, pred)
	return nil
}

// ApplySingular adds the singular filter of v to c.
func (f *Filter) ApplySingular(c *sql.Criteria, v any, cmp sql.Comparison) error {
	pred, err := f.SingularPredicate(c.Qualifier(), v, cmp)
	if err != nil || pred == nil {
		return err
	}
	c.Add(c.Qualifier(), f.Column.Name, pred)
	return nil
}

// Predicate returns the predicate filtering the column, qualified with
// qual, by v. A nil predicate and error means the filter is a no-op.
func (f *Filter) Predicate(qual string, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	col := sql.Qualify(qual, f.Column.Name)
	if pred, ok := nullPredicate(col, v, cmp); ok {
		return pred, nil
	}
	switch b := f.Behavior.(type) {
	case NumericBehavior:
		switch r := v.(type) {
		case sql.Range:
			return rangePredicate(col, r), nil
		case *sql.Range:
			return rangePredicate(col, *r), nil
		}
		return f.compare(col, listDefault(v, cmp), v)
	case TextBehavior:
		return f.compare(col, listDefault(v, cmp), v)
	case BooleanBehavior:
		return f.compare(col, cmp, ToBool(v))
	case EnumBehavior:
		return f.enumPredicate(col, b, v, cmp)
	case SetBehavior:
		return f.setPredicate(col, b, v, cmp)
	case ArrayBehavior:
		return f.arrayPredicate(col, v, cmp)
	case UUIDBinaryBehavior:
		return f.uuidPredicate(col, b, v, cmp)
	case ObjectBehavior:
		switch v.(type) {
		case string, []byte:
		default:
			data, err := msgpack.Marshal(v)
			if err != nil {
				return nil, relgen.NewValidationError(f.table(), f.Column.Name, v, err)
			}
			v = data
		}
		return f.compare(col, cmp, v)
	case PassthroughBehavior:
		return f.compare(col, cmp, v)
	}
	return nil, relgen.NewUsageError(f.Name(), "unknown behavior %T", f.Behavior)
}

// SingularPredicate returns the predicate of the singular filter. Set
// columns delegate to the plural filter, array columns match one token.
func (f *Filter) SingularPredicate(qual string, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	if !f.HasSingular() {
		return nil, relgen.NewUsageError(f.Name(), "column %q has no singular filter", f.Column.Name)
	}
	if _, ok := f.Behavior.(SetBehavior); ok {
		return f.Predicate(qual, v, cmp)
	}
	col := sql.Qualify(qual, f.Column.Name)
	if pred, ok := nullPredicate(col, v, cmp); ok {
		return pred, nil
	}
	switch cmp {
	case "", sql.ContainsAll:
		return sq.Like{col: arrayToken(v)}, nil
	case sql.ContainsNone:
		return sq.Or{sq.NotLike{col: arrayToken(v)}, sq.Eq{col: nil}}, nil
	}
	return f.compare(col, cmp, v)
}

func (f *Filter) table() string {
	if t := f.Column.Table(); t != nil {
		return t.Name
	}
	return ""
}

func (f *Filter) compare(col string, cmp sql.Comparison, v any) (sq.Sqlizer, error) {
	pred, err := sql.Compare(col, cmp, v)
	if err != nil {
		return nil, relgen.NewUsageError(f.Name(), "%v", err)
	}
	return pred, nil
}

func (f *Filter) enumPredicate(col string, b EnumBehavior, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	if !sql.IsList(v) {
		i, err := f.valueIndex(b.Values, v)
		if err != nil {
			return nil, err
		}
		return f.compare(col, cmp, i)
	}
	values := sql.AsList(v)
	indexes := make([]any, len(values))
	for n, x := range values {
		i, err := f.valueIndex(b.Values, x)
		if err != nil {
			return nil, err
		}
		indexes[n] = i
	}
	if cmp == "" {
		cmp = sql.In
	}
	return f.compare(col, cmp, indexes)
}

func (f *Filter) setPredicate(col string, b SetBehavior, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	var mask uint64
	if v != nil {
		for _, x := range sql.AsList(v) {
			i, err := f.valueIndex(b.Values, x)
			if err != nil {
				return nil, err
			}
			mask |= 1 << uint(i)
		}
	}
	bits := int64(mask)
	switch cmp {
	case "", sql.ContainsAll:
		if bits == 0 {
			return nil, nil
		}
		return f.compare(col, sql.BinaryAll, bits)
	case sql.ContainsSome, sql.In:
		if bits == 0 {
			return nil, nil
		}
		return f.compare(col, sql.BinaryAnd, bits)
	case sql.ContainsNone:
		none, err := f.compare(col, sql.BinaryNone, bits)
		if err != nil {
			return nil, err
		}
		return sq.Or{none, sq.Eq{col: nil}}, nil
	}
	return f.compare(col, cmp, bits)
}

func (f *Filter) arrayPredicate(col string, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	var values []any
	if v != nil {
		values = sql.AsList(v)
	}
	switch cmp {
	case "", sql.ContainsAll:
		and := make(sq.And, len(values))
		for i, x := range values {
			and[i] = sq.Like{col: arrayToken(x)}
		}
		return collapse(and), nil
	case sql.ContainsSome:
		or := make(sq.Or, len(values))
		for i, x := range values {
			or[i] = sq.Like{col: arrayToken(x)}
		}
		return collapseOr(or), nil
	case sql.ContainsNone:
		and := make(sq.And, len(values))
		for i, x := range values {
			and[i] = sq.NotLike{col: arrayToken(x)}
		}
		if len(and) == 0 {
			return sq.Eq{col: nil}, nil
		}
		return sq.Or{collapse(and), sq.Eq{col: nil}}, nil
	}
	return f.compare(col, cmp, v)
}

func (f *Filter) uuidPredicate(col string, b UUIDBinaryBehavior, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	switch v.(type) {
	case uuid.UUID, [16]byte:
		// Arrays, not lists.
	default:
		if sql.IsList(v) {
			return f.uuidListPredicate(col, b, v, cmp)
		}
	}
	bin, err := f.uuidBytes(v, b.Swap)
	if err != nil {
		return nil, err
	}
	return f.compare(col, cmp, bin)
}

func (f *Filter) uuidListPredicate(col string, b UUIDBinaryBehavior, v any, cmp sql.Comparison) (sq.Sqlizer, error) {
	values := sql.AsList(v)
	bins := make([]any, len(values))
	for i, x := range values {
		bin, err := f.uuidBytes(x, b.Swap)
		if err != nil {
			return nil, err
		}
		bins[i] = bin
	}
	if cmp == "" {
		cmp = sql.In
	}
	return f.compare(col, cmp, bins)
}

func (f *Filter) valueIndex(values []string, v any) (int, error) {
	s := valueString(v)
	i := slices.Index(values, s)
	if i < 0 {
		return 0, relgen.NewValidationError(f.table(), f.Column.Name, v,
			fmt.Errorf("value is not one of [%s]", strings.Join(values, ", ")))
	}
	return i, nil
}

func (f *Filter) uuidBytes(v any, swap bool) ([]byte, error) {
	var (
		u   uuid.UUID
		err error
	)
	switch v := v.(type) {
	case uuid.UUID:
		u = v
	case [16]byte:
		u = uuid.UUID(v)
	case []byte:
		if len(v) == 16 {
			return v, nil
		}
		u, err = uuid.ParseBytes(v)
	case string:
		u, err = uuid.Parse(v)
	case fmt.Stringer:
		u, err = uuid.Parse(v.String())
	default:
		err = fmt.Errorf("unsupported uuid value type %T", v)
	}
	if err != nil {
		return nil, relgen.NewValidationError(f.table(), f.Column.Name, v, err)
	}
	return UUIDToBin(u, swap), nil
}

// UUIDToBin returns the 16 bytes of u. With swap, the time fields are
// stored high first: time_hi, time_mid, time_low, then the rest.
func UUIDToBin(u uuid.UUID, swap bool) []byte {
	if !swap {
		b := u
		return b[:]
	}
	b := make([]byte, 0, 16)
	b = append(b, u[6:8]...)
	b = append(b, u[4:6]...)
	b = append(b, u[0:4]...)
	return append(b, u[8:]...)
}

// falsey are the strings coerced to false by boolean filters.
var falsey = []string{"false", "off", "-", "no", "n", "0", ""}

// ToBool coerces a boolean filter value. Strings in the case folded set
// "false", "off", "-", "no", "n", "0" and "" are false, other strings are
// true. Numbers are true when not zero.
func ToBool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		return !slices.Contains(falsey, cases.Fold().String(v))
	case []byte:
		return !slices.Contains(falsey, cases.Fold().String(string(v)))
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case nil:
		return false
	}
	return !slices.Contains(falsey, cases.Fold().String(fmt.Sprint(v)))
}

// nullPredicate handles nil values with equality comparisons.
func nullPredicate(col string, v any, cmp sql.Comparison) (sq.Sqlizer, bool) {
	if v != nil {
		return nil, false
	}
	switch cmp {
	case "", sql.Equal, sql.IsNull:
		return sq.Eq{col: nil}, true
	case sql.NotEqual, sql.IsNotNull:
		return sq.NotEq{col: nil}, true
	}
	return nil, false
}

func rangePredicate(col string, r sql.Range) sq.Sqlizer {
	var and sq.And
	if r.Min != nil {
		and = append(and, sq.GtOrEq{col: r.Min})
	}
	if r.Max != nil {
		and = append(and, sq.LtOrEq{col: r.Max})
	}
	if len(and) == 0 {
		return nil
	}
	return collapse(and)
}

// listDefault defaults the comparison of list values to IN.
func listDefault(v any, cmp sql.Comparison) sql.Comparison {
	if cmp == "" && sql.IsList(v) {
		return sql.In
	}
	return cmp
}

// collapse returns nil for empty conjunctions, and the single part of one
// element conjunctions.
func collapse(and sq.And) sq.Sqlizer {
	switch len(and) {
	case 0:
		return nil
	case 1:
		return and[0]
	}
	return and
}

// collapseOr is the disjunction counterpart of collapse.
func collapseOr(or sq.Or) sq.Sqlizer {
	switch len(or) {
	case 0:
		return nil
	case 1:
		return or[0]
	}
	return or
}

func arrayToken(v any) string {
	return "%| " + valueString(v) + " |%"
}

func valueString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
