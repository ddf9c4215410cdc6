// Package query checks search query strings before they reach the engine.
// It is not a planner: it verifies structure (balanced groups and quotes),
// field and parameter references, and counts prefix terms.
package query

import (
	"strings"

	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// Options control validation of one query.
type Options struct {
	// Dialect is the query dialect; $param references are resolved from 2 up.
	Dialect int
	Params  map[string]string
	// HasField reports whether a schema field exists. Nil skips the check.
	HasField func(name string) bool
	// MaxPrefixTerms caps the number of prefix terms (foo*) before the
	// ReachedMaxPrefixExpansions warning is raised. Zero disables it.
	MaxPrefixTerms int
}

// Result summarizes a valid query.
type Result struct {
	// Expanded is the query with $param references substituted.
	Expanded string
	Fields   []string
	Params   []string
	Prefixes int
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// Validate checks q and records the first problem in st. The returned
// Result is only meaningful when st is OK afterwards.
func Validate(q string, opts Options, st *queryerr.Status) Result {
	var res Result
	if strings.TrimSpace(q) == "" {
		st.Fail(queryerr.QuerySyntax{Offset: 0, Reason: "empty query"})
		return res
	}

	var (
		out     strings.Builder
		stack   []int
		inQuote = -1
	)
	out.Grow(len(q))

	for i := 0; i < len(q); i++ {
		ch := q[i]
		switch {
		case ch == '\\':
			out.WriteByte(ch)
			if i+1 < len(q) {
				i++
				out.WriteByte(q[i])
			}
			continue
		case ch == '"':
			if inQuote >= 0 {
				inQuote = -1
			} else {
				inQuote = i
			}
		case inQuote >= 0:
			// literal text
		case ch == '(' && len(stack) > 0 && q[stack[len(stack)-1]] == '[':
			// exclusive numeric range bound, e.g. [(1 5]
		case ch == '(' || ch == '[' || ch == '{':
			stack = append(stack, i)
		case ch == ')' || ch == ']' || ch == '}':
			if len(stack) == 0 || closers[q[stack[len(stack)-1]]] != ch {
				st.Fail(queryerr.QuerySyntax{Offset: i, Reason: "unexpected `" + string(ch) + "`"})
				return res
			}
			stack = stack[:len(stack)-1]
		case ch == '@':
			name := scanIdent(q, i+1)
			if name == "" {
				st.Fail(queryerr.QuerySyntax{Offset: i, Reason: "expected field name after `@`"})
				return res
			}
			if opts.HasField != nil && !opts.HasField(name) {
				st.Fail(queryerr.QuerySyntax{Offset: i, Reason: "Unknown field `" + name + "`"})
				return res
			}
			res.Fields = append(res.Fields, name)
		case ch == '$' && opts.Dialect >= 2:
			name := scanIdent(q, i+1)
			if name == "" {
				st.Fail(queryerr.QuerySyntax{Offset: i, Reason: "expected parameter name after `$`"})
				return res
			}
			val, ok := opts.Params[name]
			if !ok {
				st.Fail(queryerr.ParamNotFound{Name: name})
				return res
			}
			res.Params = append(res.Params, name)
			out.WriteString(val)
			i += len(name)
			continue
		case ch == '*' && i > 0 && isIdentByte(q[i-1]):
			res.Prefixes++
		}
		out.WriteByte(ch)
	}

	if inQuote >= 0 {
		st.Fail(queryerr.QuerySyntax{Offset: inQuote, Reason: "unterminated quote"})
		return res
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		st.Fail(queryerr.QuerySyntax{Offset: open, Reason: "unbalanced `" + string(q[open]) + "`"})
		return res
	}
	if opts.MaxPrefixTerms > 0 && res.Prefixes > opts.MaxPrefixTerms {
		st.SetReachedMaxPrefixExpansions()
	}

	res.Expanded = out.String()
	return res
}

func scanIdent(q string, from int) string {
	end := from
	for end < len(q) && isIdentByte(q[end]) {
		end++
	}
	return q[from:end]
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
