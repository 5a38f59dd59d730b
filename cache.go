package relgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/relgen/schema"
)

// PoolKey encodes primary key values into an instance pool key. A single
// value is encoded as its string form, composite values are quoted and
// joined in primary key order. The same encoding serves both writes to and
// reads from the pool.
func PoolKey(values ...any) string {
	if len(values) == 1 {
		return keyString(values[0])
	}
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(keyString(v)))
	}
	return b.String()
}

func keyString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// EntityKey returns the pool key of an entity of table t, and false when
// the table has no primary key or a key column is NULL.
func EntityKey(t *schema.Table, e Entity) (string, bool) {
	pk := t.PrimaryKey()
	if len(pk) == 0 {
		return "", false
	}
	values := make([]any, len(pk))
	for i, c := range pk {
		v, ok := e.Value(c.Name)
		if !ok || v == nil {
			return "", false
		}
		values[i] = v
	}
	return PoolKey(values...), true
}
