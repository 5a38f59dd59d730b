package sql

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen/dialect"
)

// identMark delimits identifiers marked for quoting. The statement format
// of a Builder replaces marked names with the platform quoted form.
const identMark = "\x1f"

// reserved holds the keywords that cannot be used as bare identifiers on
// at least one of the supported platforms.
var reserved = func() map[string]struct{} {
	words := strings.Fields(`
		ADD ALL ALTER AND ANY AS ASC BETWEEN BY CASE CAST CHECK COLLATE COLUMN
		CONSTRAINT CREATE CROSS CURRENT_DATE CURRENT_TIME CURRENT_TIMESTAMP
		CURRENT_USER DEFAULT DELETE DESC DISTINCT DROP ELSE END EXCEPT EXISTS
		FALSE FETCH FOR FOREIGN FROM FULL GRANT GROUP HAVING IN INDEX INNER
		INSERT INTERSECT INTO IS JOIN KEY LEFT LIKE LIMIT NATURAL NOT NULL
		OFFSET ON OR ORDER OUTER PRIMARY REFERENCES RIGHT SELECT SET TABLE
		THEN TO TRUE UNION UNIQUE UPDATE USER USING VALUES WHEN WHERE WITH`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Ident returns name ready to be written in a statement. Plain names are
// returned as is. Reserved words and names with other characters than
// letters, digits and underscores are marked and get quoted by the
// dialect when the statement is rendered.
func Ident(name string) string {
	if !NeedsQuote(name) {
		return name
	}
	return identMark + name + identMark
}

// NeedsQuote reports whether name must be quoted to be used as an
// identifier.
func NeedsQuote(name string) bool {
	if name == "" || name == "*" || strings.Contains(name, identMark) {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return true
		}
	}
	_, ok := reserved[strings.ToUpper(name)]
	return ok
}

// Unmark replaces the marked identifiers of query with quote(name).
func Unmark(query string, quote func(string) string) string {
	i := strings.Index(query, identMark)
	if i < 0 {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	for i >= 0 {
		j := strings.Index(query[i+1:], identMark)
		if j < 0 {
			break
		}
		b.WriteString(query[:i])
		b.WriteString(quote(query[i+1 : i+1+j]))
		query = query[i+2+j:]
		i = strings.Index(query, identMark)
	}
	b.WriteString(query)
	return b.String()
}

// quoteFormat quotes the marked identifiers of a statement for the
// platform, then rewrites its placeholders.
type quoteFormat struct {
	platform dialect.Platform
	inner    sq.PlaceholderFormat
}

func (f quoteFormat) ReplacePlaceholders(query string) (string, error) {
	return f.inner.ReplacePlaceholders(Unmark(query, f.platform.Quote))
}

func ansiQuote(name string) string {
	return dialect.Platform{}.Quote(name)
}
