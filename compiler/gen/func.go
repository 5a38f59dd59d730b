package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Common initialisms from golint.
	for _, w := range []string{"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SKU", "SLA", "SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID", "VM", "XML", "XMPP", "XSRF", "XSS"} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// pascal converts the given name into a PascalCase Go identifier.
//
//	user_info => UserInfo
//	full-admin => FullAdmin
//	user_id => UserID
func pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
			continue
		}
		words[i] = rules.Capitalize(w)
	}
	return strings.Join(words, "")
}

// camel converts the given name into a camelCase Go identifier.
//
//	user_info => userInfo
//	user_id => userID
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	first := words[0]
	if _, ok := acronyms[strings.ToUpper(first)]; ok && len(words) == 1 {
		return strings.ToLower(first)
	}
	return strings.ToLower(first[:1]) + first[1:] + pascal(strings.Join(words[1:], "_"))
}

// snake converts the given identifier into snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// receiver returns the receiver name of the given type.
//
//	[]T => t
//	[1]T => t
//	User => u
//	UserQuery => uq
func receiver(s string) string {
	if i := strings.LastIndexAny(s, "]*"); i >= 0 {
		s = s[i+1:]
	}
	var b strings.Builder
	for _, w := range strings.Split(snake(s), "_") {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return b.String()
}

// plural returns the plural form of a Go identifier. Uncountable words
// get a "List" suffix so the plural never equals the singular.
func plural(name string) string {
	p := rules.Pluralize(name)
	if p == name {
		p += "List"
	}
	return p
}

// singular returns the singular form of a table name word.
func singular(name string) string {
	return rules.Singularize(name)
}

// ModelName returns the Go entity name of a table: its explicit model
// name, or the PascalCase singular of the table name.
//
//	orders => Order
//	order_lines => OrderLine
func ModelName(table string) string {
	words := strings.FieldsFunc(table, isSeparator)
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = singular(words[len(words)-1])
	return pascal(strings.Join(words, "_"))
}

// PackageName returns the Go package name of a table.
//
//	order_lines => orderlines
func PackageName(table string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(table, isSeparator), ""))
}
