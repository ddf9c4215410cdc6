package command

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// argCursor walks command arguments left to right. Keyword matching is
// case-insensitive; every failure it reports is already classified.
type argCursor struct {
	cmd  string
	args []string
	pos  int
}

func newArgCursor(cmd string, args []string) *argCursor {
	return &argCursor{cmd: cmd, args: args}
}

func (c *argCursor) done() bool { return c.pos >= len(c.args) }

func (c *argCursor) remaining() int { return len(c.args) - c.pos }

func (c *argCursor) peek() string {
	if c.done() {
		return ""
	}
	return c.args[c.pos]
}

func (c *argCursor) next() string {
	s := c.peek()
	if !c.done() {
		c.pos++
	}
	return s
}

// accept consumes the next argument if it equals kw.
func (c *argCursor) accept(kw string) bool {
	if !c.done() && strings.EqualFold(c.args[c.pos], kw) {
		c.pos++
		return true
	}
	return false
}

// unrecognized reports the next argument as unknown to the command.
func (c *argCursor) unrecognized() error {
	return queryerr.Classify(queryerr.UnknownArg{Command: c.cmd, Arg: c.peek()})
}

func (c *argCursor) str(opt string) (string, error) {
	if c.done() {
		return "", queryerr.Classify(queryerr.ArgMissing{Option: opt})
	}
	return c.next(), nil
}

func (c *argCursor) integer(opt string) (int64, error) {
	s, err := c.str(opt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, queryerr.Classify(queryerr.BadArg{Option: opt, Reason: "Value `" + s + "` is not an integer"})
	}
	return n, nil
}

func (c *argCursor) nonNegative(opt string) (int64, error) {
	n, err := c.integer(opt)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, queryerr.Classify(queryerr.BadArg{Option: opt, Reason: "Value must be non-negative"})
	}
	return n, nil
}

func (c *argCursor) float(opt string) (float64, error) {
	s, err := c.str(opt)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, queryerr.Classify(queryerr.NonNumeric{Option: opt, Value: s})
	}
	return f, nil
}

// list reads "<n> item1 ... itemN".
func (c *argCursor) list(opt string) ([]string, error) {
	n, err := c.nonNegative(opt)
	if err != nil {
		return nil, err
	}
	if int64(c.remaining()) < n {
		return nil, queryerr.Classify(queryerr.BadArg{
			Option: opt, Reason: "Expected " + strconv.FormatInt(n, 10) + " arguments",
		})
	}
	out := make([]string, n)
	copy(out, c.args[c.pos:c.pos+int(n)])
	c.pos += int(n)
	return out, nil
}

// params reads "PARAMS <n> k1 v1 ... kN vN" after the keyword.
func (c *argCursor) params(into map[string]string) error {
	kv, err := c.list("PARAMS")
	if err != nil {
		return err
	}
	if len(kv) == 0 || len(kv)%2 != 0 {
		return queryerr.Classify(queryerr.BadArg{Option: "PARAMS", Reason: "Parameters must be name-value pairs"})
	}
	for i := 0; i < len(kv); i += 2 {
		if _, dup := into[kv[i]]; dup {
			return queryerr.Classify(queryerr.DuplicateParam{Name: kv[i]})
		}
		into[kv[i]] = kv[i+1]
	}
	return nil
}

func (c *argCursor) dialect(maxDialect int) (int, error) {
	d, err := c.integer("DIALECT")
	if err != nil {
		return 0, err
	}
	if d < 1 || d > int64(maxDialect) {
		return 0, queryerr.Classify(queryerr.BadArg{
			Option: "DIALECT",
			Reason: "DIALECT requires a value between 1 and " + strconv.Itoa(maxDialect),
		})
	}
	return int(d), nil
}
