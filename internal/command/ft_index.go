package command

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

func (d *Dispatcher) registerSearch() {
	d.Register(
		Spec{Name: "FT.CREATE", Arity: -2, Handler: d.ftCreate},
		Spec{Name: "FT.SEARCH", Arity: -3, Handler: d.ftSearch},
		Spec{Name: "FT.AGGREGATE", Arity: -3, Handler: d.ftAggregate},
		Spec{Name: "FT.EXPLAIN", Arity: -3, Handler: d.ftExplain},
		Spec{Name: "FT.INFO", Arity: 2, Handler: d.ftInfo},
		Spec{Name: "FT.DROPINDEX", Arity: -2, Handler: d.ftDropIndex},
		Spec{Name: "FT.ALTER", Arity: -3, Handler: d.ftAlter},
		Spec{Name: "FT._LIST", Arity: 1, Handler: d.ftList},
		Spec{Name: "FT.ALIASADD", Arity: 3, Handler: d.ftAliasAdd},
		Spec{Name: "FT.ALIASUPDATE", Arity: 3, Handler: d.ftAliasUpdate},
		Spec{Name: "FT.ALIASDEL", Arity: 2, Handler: d.ftAliasDel},
	)
}

// ftInfo handles FT.INFO.
func (d *Dispatcher) ftInfo(_ context.Context, req *Request) (Reply, error) {
	info, err := d.catalog.Info(req.Args[0])
	if err != nil {
		return nil, err
	}
	def := info.Definition

	var options Array
	for _, opt := range []struct {
		set  bool
		name string
	}{
		{def.NoOffsets, "NOOFFSETS"},
		{def.NoHL, "NOHL"},
		{def.NoFields, "NOFIELDS"},
		{def.NoFreqs, "NOFREQS"},
		{def.MaxTextFields, "MAXTEXTFIELDS"},
	} {
		if opt.set {
			options = append(options, BulkString(opt.name))
		}
	}

	definition := Array{
		BulkString("key_type"), BulkString(def.StorageType),
		BulkString("prefixes"), Bulks(def.Prefixes...),
	}
	if def.Filter != "" {
		definition = append(definition, BulkString("filter"), BulkString(def.Filter))
	}
	if def.Language != "" {
		definition = append(definition, BulkString("default_language"), BulkString(def.Language))
	}
	score := def.Score
	if score == 0 {
		score = 1
	}
	definition = append(definition, BulkString("default_score"), BulkString(strconv.FormatFloat(score, 'f', -1, 64)))

	attrs := make(Array, 0, len(def.Fields))
	for i := range def.Fields {
		attrs = append(attrs, fieldInfo(&def.Fields[i]))
	}

	return Array{
		BulkString("index_name"), BulkString(def.Name),
		BulkString("index_options"), options,
		BulkString("index_definition"), definition,
		BulkString("attributes"), attrs,
		BulkString("aliases"), Bulks(info.Aliases...),
		BulkString("num_docs"), Int(0),
		BulkString("max_doc_id"), Int(0),
		BulkString("num_terms"), Int(0),
		BulkString("num_records"), Int(0),
		BulkString("indexing"), Int(0),
		BulkString("percent_indexed"), BulkString("1"),
		BulkString("created_at"), Int(info.CreatedAt.Unix()),
	}, nil
}

func fieldInfo(f *db.IndexField) Array {
	out := Array{
		BulkString("identifier"), BulkString(f.Name),
		BulkString("attribute"), BulkString(f.Identifier()),
		BulkString("type"), BulkString(f.Type.String()),
	}
	switch f.Type {
	case db.IndexFieldText:
		w := f.Weight
		if w == 0 {
			w = 1
		}
		out = append(out, BulkString("WEIGHT"), BulkString(strconv.FormatFloat(w, 'f', -1, 64)))
		if f.NoStem {
			out = append(out, BulkString("NOSTEM"))
		}
	case db.IndexFieldTag:
		sep := f.TagSeparator
		if sep == "" {
			sep = ","
		}
		out = append(out, BulkString("SEPARATOR"), BulkString(sep))
		if f.TagCaseSensitive {
			out = append(out, BulkString("CASESENSITIVE"))
		}
	case db.IndexFieldVector:
		out = append(out,
			BulkString("algorithm"), BulkString(f.VectorAlgo),
			BulkString("data_type"), BulkString(f.VectorType),
			BulkString("dim"), Int(f.VectorDim),
			BulkString("distance_metric"), BulkString(f.VectorDistance),
		)
	}
	if f.Sortable {
		out = append(out, BulkString("SORTABLE"))
	}
	if f.NoIndex {
		out = append(out, BulkString("NOINDEX"))
	}
	return out
}

// ftDropIndex handles FT.DROPINDEX. DD is accepted for compatibility;
// there are no documents to delete.
func (d *Dispatcher) ftDropIndex(_ context.Context, req *Request) (Reply, error) {
	c := newArgCursor("FT.DROPINDEX", req.Args)
	name := c.next()
	c.accept("DD")
	if !c.done() {
		return nil, c.unrecognized()
	}
	if _, err := d.catalog.Drop(name); err != nil {
		return nil, err
	}
	return OK, nil
}

// ftAlter handles FT.ALTER idx [SKIPINITIALSCAN] SCHEMA ADD field type [opts]...
func (d *Dispatcher) ftAlter(_ context.Context, req *Request) (Reply, error) {
	c := newArgCursor("FT.ALTER", req.Args)
	name := c.next()
	if _, err := d.catalog.Get(name); err != nil {
		return nil, err
	}
	c.accept("SKIPINITIALSCAN")
	if !c.accept("SCHEMA") {
		if c.done() {
			return nil, queryerr.Classify(queryerr.ArgMissing{Option: "SCHEMA"})
		}
		return nil, c.unrecognized()
	}
	if !c.accept("ADD") {
		if c.done() {
			return nil, queryerr.Classify(queryerr.ArgMissing{Option: "SCHEMA ADD"})
		}
		return nil, c.unrecognized()
	}
	fields, err := parseSchema(c)
	if err != nil {
		return nil, err
	}
	if err := d.catalog.AddFields(name, fields); err != nil {
		return nil, err
	}
	return OK, nil
}

func (d *Dispatcher) ftList(context.Context, *Request) (Reply, error) {
	return Bulks(d.catalog.List()...), nil
}

func (d *Dispatcher) ftAliasAdd(_ context.Context, req *Request) (Reply, error) {
	if err := d.catalog.AliasAdd(req.Args[0], req.Args[1]); err != nil {
		return nil, err
	}
	return OK, nil
}

func (d *Dispatcher) ftAliasUpdate(_ context.Context, req *Request) (Reply, error) {
	if err := d.catalog.AliasUpdate(req.Args[0], req.Args[1]); err != nil {
		return nil, err
	}
	return OK, nil
}

func (d *Dispatcher) ftAliasDel(_ context.Context, req *Request) (Reply, error) {
	if err := d.catalog.AliasDel(req.Args[0]); err != nil {
		return nil, err
	}
	return OK, nil
}
