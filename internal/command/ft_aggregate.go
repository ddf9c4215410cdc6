package command

import (
	"context"
	"strings"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// reducerArity is the number of arguments each GROUPBY reducer takes;
// -1 means one or more.
var reducerArity = map[string]int{
	"COUNT":             0,
	"COUNT_DISTINCT":    1,
	"COUNT_DISTINCTISH": 1,
	"SUM":               1,
	"MIN":               1,
	"MAX":               1,
	"AVG":               1,
	"STDDEV":            1,
	"QUANTILE":          2,
	"TOLIST":            1,
	"FIRST_VALUE":       -1,
	"RANDOM_SAMPLE":     2,
}

// pipeline tracks which properties are visible at each aggregation step.
type pipeline struct {
	idx   *db.IndexDefinition
	props map[string]struct{}
	// grouped is set after the first GROUPBY; only group keys and reducer
	// outputs remain visible.
	grouped bool
}

func newPipeline(idx *db.IndexDefinition) *pipeline {
	return &pipeline{idx: idx, props: make(map[string]struct{})}
}

func (p *pipeline) define(name string) {
	p.props[strings.TrimPrefix(name, "@")] = struct{}{}
}

// ref resolves a "@property" reference.
func (p *pipeline) ref(opt, name string) error {
	if !strings.HasPrefix(name, "@") {
		return queryerr.Classify(queryerr.BadArg{Option: opt, Reason: "Property `" + name + "` must start with @"})
	}
	bare := name[1:]
	if _, ok := p.props[bare]; ok {
		return nil
	}
	if !p.grouped {
		if _, ok := p.idx.Field(bare); ok {
			return nil
		}
	}
	return queryerr.Classify(queryerr.PropertyNotFound{Property: bare})
}

// ftAggregate handles FT.AGGREGATE. The pipeline is validated step by step
// and, with no stored documents, always yields an empty result.
func (d *Dispatcher) ftAggregate(ctx context.Context, req *Request) (Reply, error) {
	c := newArgCursor("FT.AGGREGATE", req.Args)
	idx, err := d.catalog.Get(c.next())
	if err != nil {
		return nil, err
	}
	q := c.next()
	dialect := d.cfg.DefaultDialect
	params := make(map[string]string)
	p := newPipeline(idx)
	withCursor := false

	for !c.done() {
		switch {
		case c.accept("VERBATIM"), c.accept("ADDSCORES"):
		case c.accept("LOAD"):
			if c.accept("*") {
				for _, f := range idx.Fields {
					p.define(f.Identifier())
				}
				continue
			}
			fields, err := c.list("LOAD")
			if err != nil {
				return nil, err
			}
			for _, f := range fields {
				p.define(f)
			}
		case c.accept("GROUPBY"):
			if err := d.parseGroupBy(c, p); err != nil {
				return nil, err
			}
		case c.accept("SORTBY"):
			if err := parseAggregateSort(c, p); err != nil {
				return nil, err
			}
		case c.accept("APPLY"):
			if _, err := c.str("APPLY"); err != nil {
				return nil, err
			}
			if !c.accept("AS") {
				return nil, queryerr.Classify(queryerr.ArgMissing{Option: "APPLY ... AS"})
			}
			name, err := c.str("AS")
			if err != nil {
				return nil, err
			}
			p.define(name)
		case c.accept("FILTER"):
			if _, err := c.str("FILTER"); err != nil {
				return nil, err
			}
		case c.accept("LIMIT"):
			if _, _, err := d.parseLimit(c, d.cfg.MaxAggregateResults); err != nil {
				return nil, err
			}
		case c.accept("PARAMS"):
			if err := c.params(params); err != nil {
				return nil, err
			}
		case c.accept("DIALECT"):
			if dialect, err = c.dialect(d.cfg.MaxDialect); err != nil {
				return nil, err
			}
		case c.accept("TIMEOUT"):
			if _, err := c.nonNegative("TIMEOUT"); err != nil {
				return nil, err
			}
		case c.accept("WITHCURSOR"):
			withCursor = true
			if err := parseCursorOptions(c); err != nil {
				return nil, err
			}
		default:
			return nil, c.unrecognized()
		}
	}

	if _, err := d.validateQuery(ctx, idx, q, dialect, params); err != nil {
		return nil, err
	}
	if withCursor {
		return Array{Array{Int(0)}, Int(0)}, nil
	}
	return Array{Int(0)}, nil
}

// parseGroupBy reads "GROUPBY n @p... [REDUCE fn n args... [AS name]]...".
func (d *Dispatcher) parseGroupBy(c *argCursor, p *pipeline) error {
	keys, err := c.list("GROUPBY")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.ref("GROUPBY", k); err != nil {
			return err
		}
	}

	var outputs []string
	for c.accept("REDUCE") {
		fn, err := c.str("REDUCE")
		if err != nil {
			return err
		}
		fn = strings.ToUpper(fn)
		want, ok := reducerArity[fn]
		if !ok {
			return queryerr.Classify(queryerr.UnknownReducer{Name: fn})
		}
		args, err := c.list(fn)
		if err != nil {
			return err
		}
		if (want >= 0 && len(args) != want) || (want < 0 && len(args) == 0) {
			return queryerr.Classify(queryerr.BadArg{Option: fn, Reason: "Bad arguments for reducer"})
		}
		if len(args) > 0 {
			if err := p.ref(fn, args[0]); err != nil {
				return err
			}
		}

		alias := reducerAlias(fn, args)
		if c.accept("AS") {
			if alias, err = c.str("AS"); err != nil {
				return err
			}
		}
		outputs = append(outputs, alias)
	}

	p.props = make(map[string]struct{}, len(keys)+len(outputs))
	p.grouped = true
	for _, k := range keys {
		p.define(k)
	}
	for _, o := range outputs {
		p.define(o)
	}
	return nil
}

// reducerAlias names a reducer output that has no AS clause.
func reducerAlias(fn string, args []string) string {
	if fn == "COUNT" {
		return "__generated_aliascount"
	}
	var b strings.Builder
	b.WriteString("__generated_alias")
	b.WriteString(strings.ToLower(fn))
	for _, a := range args {
		b.WriteString(strings.TrimPrefix(a, "@"))
	}
	return b.String()
}

// parseAggregateSort reads "SORTBY n (@p [ASC|DESC])... [MAX m]".
func parseAggregateSort(c *argCursor, p *pipeline) error {
	items, err := c.list("SORTBY")
	if err != nil {
		return err
	}
	for _, it := range items {
		switch strings.ToUpper(it) {
		case "ASC", "DESC":
			continue
		}
		if err := p.ref("SORTBY", it); err != nil {
			return err
		}
	}
	if c.accept("MAX") {
		if _, err := c.nonNegative("MAX"); err != nil {
			return err
		}
	}
	return nil
}

// parseCursorOptions reads "[COUNT c] [MAXIDLE ms]" after WITHCURSOR.
func parseCursorOptions(c *argCursor) error {
	for {
		switch {
		case c.accept("COUNT"):
			if _, err := c.nonNegative("COUNT"); err != nil {
				return err
			}
		case c.accept("MAXIDLE"):
			if _, err := c.nonNegative("MAXIDLE"); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
