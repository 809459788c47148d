// Package formula builds record-store filter formulas from a small expression
// tree. Every value is rendered through a single escaping routine, so callers
// never concatenate user input into formula text. The same tree can be
// evaluated against in-memory field maps.
package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date format used inside formulas.
const DateLayout = "2006-01-02"

// Expr is a filter expression.
type Expr interface {
	// String renders the expression as formula text.
	String() string
	// Match evaluates the expression against raw record fields.
	Match(fields map[string]any) bool
}

// Quote renders s as a single-quoted string literal.
// Backslashes are doubled first, then single quotes.
func Quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `''`)
	return "'" + escaped + "'"
}

// Field renders a field reference.
func Field(name string) string {
	return "{" + name + "}"
}

// Literal renders a value. Strings are quoted, times become date literals.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "BLANK()"
	case string:
		return Quote(val)
	case bool:
		if val {
			return "TRUE()"
		}
		return "FALSE()"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return Quote(val.Format(DateLayout))
	case fmt.Stringer:
		return Quote(val.String())
	default:
		return Quote(fmt.Sprint(val))
	}
}

type eqExpr struct {
	field string
	value any
	neg   bool
}

// Eq matches records whose field equals value.
func Eq(field string, value any) Expr { return eqExpr{field: field, value: value} }

// Ne matches records whose field differs from value.
func Ne(field string, value any) Expr { return eqExpr{field: field, value: value, neg: true} }

func (e eqExpr) String() string {
	op := " = "
	if e.neg {
		op = " != "
	}
	return Field(e.field) + op + Literal(e.value)
}

func (e eqExpr) Match(fields map[string]any) bool {
	return equal(fields[e.field], e.value) != e.neg
}

type searchExpr struct {
	field  string
	needle string
}

// Contains matches records whose field, joined if it is a list, contains needle.
// Used for linked-record and multi-value fields.
func Contains(field, needle string) Expr { return searchExpr{field: field, needle: needle} }

func (e searchExpr) String() string {
	return "SEARCH(" + Quote(e.needle) + ", ARRAYJOIN(" + Field(e.field) + "))"
}

func (e searchExpr) Match(fields map[string]any) bool {
	return e.needle != "" && strings.Contains(joined(fields[e.field]), e.needle)
}

type dateExpr struct {
	field string
	day   time.Time
}

// OnDate matches records whose date field falls on the given calendar day.
func OnDate(field string, day time.Time) Expr { return dateExpr{field: field, day: day} }

func (e dateExpr) String() string {
	return "DATETIME_FORMAT(" + Field(e.field) + ", 'YYYY-MM-DD') = " + Quote(e.day.Format(DateLayout))
}

func (e dateExpr) Match(fields map[string]any) bool {
	raw, ok := fields[e.field].(string)
	if !ok || len(raw) < len(DateLayout) {
		return false
	}
	return raw[:len(DateLayout)] == e.day.Format(DateLayout)
}

type blankExpr struct{ field string }

// Blank matches records whose field is empty.
func Blank(field string) Expr { return blankExpr{field: field} }

func (e blankExpr) String() string { return Field(e.field) + " = BLANK()" }

func (e blankExpr) Match(fields map[string]any) bool { return isBlank(fields[e.field]) }

type boolExpr struct {
	op    string
	exprs []Expr
}

// And matches when every expression matches. An empty And matches everything.
func And(exprs ...Expr) Expr { return boolExpr{op: "AND", exprs: compact(exprs)} }

// Or matches when any expression matches. An empty Or matches nothing.
func Or(exprs ...Expr) Expr { return boolExpr{op: "OR", exprs: compact(exprs)} }

func (e boolExpr) String() string {
	switch len(e.exprs) {
	case 0:
		if e.op == "AND" {
			return "TRUE()"
		}
		return "FALSE()"
	case 1:
		return e.exprs[0].String()
	}
	parts := make([]string, len(e.exprs))
	for i, x := range e.exprs {
		parts[i] = x.String()
	}
	return e.op + "(" + strings.Join(parts, ", ") + ")"
}

func (e boolExpr) Match(fields map[string]any) bool {
	if e.op == "AND" {
		for _, x := range e.exprs {
			if !x.Match(fields) {
				return false
			}
		}
		return true
	}
	for _, x := range e.exprs {
		if x.Match(fields) {
			return true
		}
	}
	return false
}

type notExpr struct{ inner Expr }

// Not negates an expression.
func Not(e Expr) Expr { return notExpr{inner: e} }

func (e notExpr) String() string { return "NOT(" + e.inner.String() + ")" }

func (e notExpr) Match(fields map[string]any) bool { return !e.inner.Match(fields) }

func compact(exprs []Expr) []Expr {
	out := exprs[:0:0]
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}

func equal(raw any, want any) bool {
	if want == nil {
		return isBlank(raw)
	}
	switch w := want.(type) {
	case string:
		if isBlank(raw) {
			return w == ""
		}
		return joined(raw) == w
	case bool:
		b, _ := raw.(bool)
		return b == w
	case time.Time:
		s, ok := raw.(string)
		return ok && len(s) >= len(DateLayout) && s[:len(DateLayout)] == w.Format(DateLayout)
	case int:
		return numEqual(raw, float64(w))
	case int64:
		return numEqual(raw, float64(w))
	case float64:
		return numEqual(raw, w)
	default:
		return joined(raw) == fmt.Sprint(want)
	}
}

func numEqual(raw any, want float64) bool {
	switch r := raw.(type) {
	case float64:
		return math.Abs(r-want) < 1e-9
	case int:
		return float64(r) == want
	case int64:
		return float64(r) == want
	}
	return false
}

// joined mirrors ARRAYJOIN: lists are joined with ", ".
func joined(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
