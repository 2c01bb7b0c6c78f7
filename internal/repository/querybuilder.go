package repository

import (
	"strings"
)

// Builder assembles dynamic WHERE clauses as an ordered list of
// predicate+argument pairs.  Predicates are written with `?` markers and
// rendered to PostgreSQL `$n` placeholders at the end, so conditionally
// appended filters can never desynchronize from their parameter indexes.
type Builder struct {
	preds []string
	args  []interface{}
}

// Where appends a predicate.  expr must contain exactly one `?` per
// argument.
func (b *Builder) Where(expr string, args ...interface{}) *Builder {
	b.preds = append(b.preds, expr)
	b.args = append(b.args, args...)
	return b
}

// WhereSQL renders the accumulated predicates as a `WHERE ...` clause
// with `$1..$n` placeholders, or an empty string when no predicate was
// added.
func (b *Builder) WhereSQL() string {
	if len(b.preds) == 0 {
		return ""
	}
	joined := strings.Join(b.preds, " AND ")
	rendered, _ := renumber(joined, 1)
	return "WHERE " + rendered
}

// Suffix renders a trailing fragment (ORDER BY / LIMIT / OFFSET) whose
// `?` markers continue the numbering after the WHERE arguments, and
// appends the fragment's arguments to the builder.
func (b *Builder) Suffix(expr string, args ...interface{}) string {
	rendered, _ := renumber(expr, len(b.args)+1)
	b.args = append(b.args, args...)
	return rendered
}

// Args returns the accumulated arguments in placeholder order.
func (b *Builder) Args() []interface{} {
	return b.args
}

// renumber replaces each `?` in expr with `$start`, `$start+1`, ... and
// returns the rendered string plus the next free index.
func renumber(expr string, start int) (string, int) {
	var sb strings.Builder
	sb.Grow(len(expr) + 8)
	n := start
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' {
			sb.WriteByte('$')
			sb.WriteString(itoa(n))
			n++
			continue
		}
		sb.WriteByte(expr[i])
	}
	return sb.String(), n
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
