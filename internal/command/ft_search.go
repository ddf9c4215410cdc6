package command

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/query"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// searchRequest is a parsed FT.SEARCH invocation.
type searchRequest struct {
	index     *db.IndexDefinition
	query     string
	dialect   int
	params    map[string]string
	offset    int64
	limit     int64
	sortBy    string
	sortDesc  bool
	returns   []string
	noContent bool
}

// ftSearch handles FT.SEARCH. No documents are stored, so a valid search
// always replies with an empty result set.
func (d *Dispatcher) ftSearch(ctx context.Context, req *Request) (Reply, error) {
	sr, err := d.parseSearch(req.Args)
	if err != nil {
		return nil, err
	}
	if _, err := d.validateQuery(ctx, sr.index, sr.query, sr.dialect, sr.params); err != nil {
		return nil, err
	}
	return Array{Int(0)}, nil
}

func (d *Dispatcher) parseSearch(args []string) (*searchRequest, error) {
	c := newArgCursor("FT.SEARCH", args)
	idx, err := d.catalog.Get(c.next())
	if err != nil {
		return nil, err
	}
	sr := &searchRequest{
		index:   idx,
		query:   c.next(),
		dialect: d.cfg.DefaultDialect,
		params:  make(map[string]string),
		limit:   10,
	}

	for !c.done() {
		switch {
		case c.accept("NOCONTENT"):
			sr.noContent = true
		case c.accept("VERBATIM"), c.accept("NOSTOPWORDS"), c.accept("WITHSCORES"),
			c.accept("WITHPAYLOADS"), c.accept("WITHSORTKEYS"), c.accept("EXPLAINSCORE"),
			c.accept("INORDER"):
		case c.accept("LIMIT"):
			if sr.offset, sr.limit, err = d.parseLimit(c, d.cfg.MaxSearchResults); err != nil {
				return nil, err
			}
		case c.accept("SORTBY"):
			field, err := c.str("SORTBY")
			if err != nil {
				return nil, err
			}
			if _, ok := idx.Field(field); !ok {
				return nil, queryerr.Classify(queryerr.PropertyNotFound{Property: field})
			}
			sr.sortBy = field
			switch {
			case c.accept("DESC"):
				sr.sortDesc = true
			case c.accept("ASC"):
			}
			c.accept("WITHCOUNT")
		case c.accept("RETURN"):
			if sr.returns, err = c.list("RETURN"); err != nil {
				return nil, err
			}
		case c.accept("INKEYS"):
			if _, err := c.list("INKEYS"); err != nil {
				return nil, err
			}
		case c.accept("INFIELDS"):
			fields, err := c.list("INFIELDS")
			if err != nil {
				return nil, err
			}
			for _, f := range fields {
				if _, ok := idx.Field(f); !ok {
					return nil, queryerr.Classify(queryerr.PropertyNotFound{Property: f})
				}
			}
		case c.accept("FILTER"):
			if err := parseNumericFilter(c, idx); err != nil {
				return nil, err
			}
		case c.accept("PARAMS"):
			if err := c.params(sr.params); err != nil {
				return nil, err
			}
		case c.accept("DIALECT"):
			if sr.dialect, err = c.dialect(d.cfg.MaxDialect); err != nil {
				return nil, err
			}
		case c.accept("TIMEOUT"):
			if _, err := c.nonNegative("TIMEOUT"); err != nil {
				return nil, err
			}
		case c.accept("SLOP"):
			if _, err := c.integer("SLOP"); err != nil {
				return nil, err
			}
		case c.accept("LANGUAGE"), c.accept("SCORER"), c.accept("EXPANDER"), c.accept("PAYLOAD"):
			if _, err := c.str(c.args[c.pos-1]); err != nil {
				return nil, err
			}
		default:
			return nil, c.unrecognized()
		}
	}
	return sr, nil
}

// parseLimit reads "LIMIT offset num" and enforces the result cap.
func (d *Dispatcher) parseLimit(c *argCursor, maxResults int) (offset, num int64, err error) {
	if offset, err = c.nonNegative("LIMIT"); err != nil {
		return 0, 0, err
	}
	if num, err = c.nonNegative("LIMIT"); err != nil {
		return 0, 0, err
	}
	if limit := int64(maxResults); limit > 0 && (offset > limit || num > limit-offset) {
		return 0, 0, queryerr.Classify(queryerr.LimitExceeded{What: "number of results (OFFSET + LIMIT)", Max: maxResults})
	}
	return offset, num, nil
}

// parseNumericFilter reads "FILTER field min max".
func parseNumericFilter(c *argCursor, idx *db.IndexDefinition) error {
	name, err := c.str("FILTER")
	if err != nil {
		return err
	}
	f, ok := idx.Field(name)
	if !ok {
		return queryerr.Classify(queryerr.PropertyNotFound{Property: name})
	}
	if f.Type != db.IndexFieldNumeric {
		return queryerr.Classify(queryerr.BadArg{Option: "FILTER", Reason: "Field `" + name + "` is not numeric"})
	}
	for range 2 {
		bound, err := c.str("FILTER")
		if err != nil {
			return err
		}
		if !isRangeBound(bound) {
			return queryerr.Classify(queryerr.NonNumeric{Option: "FILTER", Value: bound})
		}
	}
	return nil
}

// isRangeBound accepts numbers, +inf/-inf and exclusive "(n" bounds.
func isRangeBound(s string) bool {
	if len(s) > 1 && s[0] == '(' {
		s = s[1:]
	}
	switch s {
	case "inf", "+inf", "-inf":
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// validateQuery checks q against idx and forwards any warnings.
func (d *Dispatcher) validateQuery(
	_ context.Context, idx *db.IndexDefinition, q string, dialect int, params map[string]string,
) (query.Result, error) {
	var st queryerr.Status
	res := query.Validate(q, query.Options{
		Dialect: dialect,
		Params:  params,
		HasField: func(name string) bool {
			_, ok := idx.Field(name)
			return ok
		},
		MaxPrefixTerms: d.cfg.MaxPrefixTerms,
	}, &st)
	if err := st.Err(); err != nil {
		return res, err
	}
	if w := st.Warnings(); w.Any() {
		d.observer.QueryWarnings(w)
	}
	return res, nil
}

// ftExplain handles FT.EXPLAIN: it validates the query and echoes it with
// parameters substituted.
func (d *Dispatcher) ftExplain(ctx context.Context, req *Request) (Reply, error) {
	c := newArgCursor("FT.EXPLAIN", req.Args)
	idx, err := d.catalog.Get(c.next())
	if err != nil {
		return nil, err
	}
	q := c.next()
	dialect := d.cfg.DefaultDialect
	params := make(map[string]string)
	for !c.done() {
		switch {
		case c.accept("PARAMS"):
			if err := c.params(params); err != nil {
				return nil, err
			}
		case c.accept("DIALECT"):
			if dialect, err = c.dialect(d.cfg.MaxDialect); err != nil {
				return nil, err
			}
		default:
			return nil, c.unrecognized()
		}
	}
	res, err := d.validateQuery(ctx, idx, q, dialect, params)
	if err != nil {
		return nil, err
	}
	return BulkString(res.Expanded), nil
}
