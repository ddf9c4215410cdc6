package command

import (
	"context"
	"strings"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// ftCreate handles FT.CREATE.
func (d *Dispatcher) ftCreate(_ context.Context, req *Request) (Reply, error) {
	def, err := parseCreate(req.Args)
	if err != nil {
		return nil, err
	}
	if err := d.catalog.Create(def); err != nil {
		return nil, err
	}
	return OK, nil
}

func parseCreate(args []string) (*db.IndexDefinition, error) {
	c := newArgCursor("FT.CREATE", args)
	def := &db.IndexDefinition{Name: c.next(), StorageType: db.StorageHash}

	for !c.done() {
		switch {
		case c.accept("SCHEMA"):
			fields, err := parseSchema(c)
			if err != nil {
				return nil, err
			}
			def.Fields = fields
			return def, nil
		case c.accept("ON"):
			s, err := c.str("ON")
			if err != nil {
				return nil, err
			}
			st, ok := db.ParseStorageType(s)
			if !ok {
				return nil, queryerr.Classify(queryerr.BadArg{Option: "ON", Reason: "Unknown index type `" + s + "`"})
			}
			def.StorageType = st
		case c.accept("PREFIX"):
			p, err := c.list("PREFIX")
			if err != nil {
				return nil, err
			}
			def.Prefixes = append(def.Prefixes, p...)
		case c.accept("FILTER"):
			s, err := c.str("FILTER")
			if err != nil {
				return nil, err
			}
			def.Filter = s
		case c.accept("LANGUAGE"):
			s, err := c.str("LANGUAGE")
			if err != nil {
				return nil, err
			}
			def.Language = s
		case c.accept("LANGUAGE_FIELD"), c.accept("SCORE_FIELD"), c.accept("PAYLOAD_FIELD"):
			if _, err := c.str("field"); err != nil {
				return nil, err
			}
		case c.accept("SCORE"):
			f, err := c.float("SCORE")
			if err != nil {
				return nil, err
			}
			if f < 0 || f > 1 {
				return nil, queryerr.Classify(queryerr.BadArg{Option: "SCORE", Reason: "Score must be between 0 and 1"})
			}
			def.Score = f
		case c.accept("STOPWORDS"):
			w, err := c.list("STOPWORDS")
			if err != nil {
				return nil, err
			}
			def.StopWords = w
		case c.accept("TEMPORARY"):
			n, err := c.nonNegative("TEMPORARY")
			if err != nil {
				return nil, err
			}
			def.Temporary = int(n)
		case c.accept("NOOFFSETS"):
			def.NoOffsets = true
		case c.accept("NOHL"):
			def.NoHL = true
		case c.accept("NOFIELDS"):
			def.NoFields = true
		case c.accept("NOFREQS"):
			def.NoFreqs = true
		case c.accept("MAXTEXTFIELDS"):
			def.MaxTextFields = true
		case c.accept("SKIPINITIALSCAN"):
			def.SkipInitialScan = true
		default:
			return nil, c.unrecognized()
		}
	}
	return nil, queryerr.Classify(queryerr.ArgMissing{Option: "SCHEMA"})
}

// parseSchema reads field definitions until the arguments run out.
func parseSchema(c *argCursor) ([]db.IndexField, error) {
	var fields []db.IndexField
	for !c.done() {
		f, err := parseField(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, queryerr.Classify(queryerr.BadArg{Option: "SCHEMA", Reason: "Fields arguments are missing"})
	}
	return fields, nil
}

func parseField(c *argCursor) (db.IndexField, error) {
	f := db.IndexField{Name: c.next()}
	if c.accept("AS") {
		alias, err := c.str("AS")
		if err != nil {
			return f, err
		}
		f.Alias = alias
	}

	typ, err := c.str("field type for `" + f.Name + "`")
	if err != nil {
		return f, err
	}
	ft, ok := db.ParseFieldType(typ)
	if !ok {
		return f, queryerr.Classify(queryerr.UnsupportedType{Field: f.Name, Type: typ})
	}
	f.Type = ft

	if ft == db.IndexFieldVector {
		if err := parseVector(c, &f); err != nil {
			return f, err
		}
	}

	for !c.done() {
		matched, err := parseFieldOption(c, &f)
		if err != nil {
			return f, err
		}
		if !matched {
			break
		}
	}
	return f, nil
}

// parseFieldOption consumes one option that applies to f's type. It
// returns false when the next token is not such an option, which starts
// the next field.
func parseFieldOption(c *argCursor, f *db.IndexField) (bool, error) {
	switch {
	case c.accept("SORTABLE"):
		f.Sortable = true
		c.accept("UNF")
	case c.accept("NOINDEX"):
		f.NoIndex = true
	case c.accept("INDEXMISSING"):
		f.IndexMissing = true
	case c.accept("INDEXEMPTY"):
		f.IndexEmpty = true
	case f.Type == db.IndexFieldText && c.accept("WEIGHT"):
		w, err := c.float("WEIGHT")
		if err != nil {
			return false, err
		}
		f.Weight = w
	case f.Type == db.IndexFieldText && c.accept("NOSTEM"):
		f.NoStem = true
	case f.Type == db.IndexFieldText && c.accept("PHONETIC"):
		p, err := c.str("PHONETIC")
		if err != nil {
			return false, err
		}
		f.Phonetic = p
	case (f.Type == db.IndexFieldText || f.Type == db.IndexFieldTag) && c.accept("WITHSUFFIXTRIE"):
		f.WithSuffixTrie = true
	case f.Type == db.IndexFieldTag && c.accept("SEPARATOR"):
		s, err := c.str("SEPARATOR")
		if err != nil {
			return false, err
		}
		if len(s) != 1 {
			return false, queryerr.Classify(queryerr.BadArg{Option: "SEPARATOR", Reason: "Tag separator must be a single character"})
		}
		f.TagSeparator = s
	case f.Type == db.IndexFieldTag && c.accept("CASESENSITIVE"):
		f.TagCaseSensitive = true
	default:
		return false, nil
	}
	return true, nil
}

func parseVector(c *argCursor, f *db.IndexField) error {
	algoName, err := c.str("VECTOR")
	if err != nil {
		return err
	}
	algo, ok := db.ParseVectorAlgorithm(algoName)
	if !ok {
		return queryerr.Classify(queryerr.BadArg{Option: "VECTOR", Reason: "Unknown vector algorithm `" + algoName + "`"})
	}
	f.VectorAlgo = algo

	attrs, err := c.list("vector attributes")
	if err != nil {
		return err
	}
	if len(attrs)%2 != 0 {
		return queryerr.Classify(queryerr.BadArg{Option: "VECTOR", Reason: "Vector attributes must be name-value pairs"})
	}

	ac := newArgCursor("FT.CREATE", attrs)
	for !ac.done() {
		switch {
		case ac.accept("TYPE"):
			f.VectorType = strings.ToUpper(ac.next())
		case ac.accept("DIM"):
			n, err := ac.nonNegative("DIM")
			if err != nil {
				return err
			}
			f.VectorDim = int(n)
		case ac.accept("DISTANCE_METRIC"):
			s := ac.next()
			m, ok := db.ParseDistanceMetric(s)
			if !ok {
				return queryerr.Classify(queryerr.BadArg{Option: "DISTANCE_METRIC", Reason: "Unknown metric `" + s + "`"})
			}
			f.VectorDistance = m
		case ac.accept("M"):
			n, err := ac.nonNegative("M")
			if err != nil {
				return err
			}
			f.VectorM = int(n)
		case ac.accept("EF_CONSTRUCTION"):
			n, err := ac.nonNegative("EF_CONSTRUCTION")
			if err != nil {
				return err
			}
			f.VectorEFConstruct = int(n)
		case ac.accept("BLOCK_SIZE"):
			n, err := ac.nonNegative("BLOCK_SIZE")
			if err != nil {
				return err
			}
			f.VectorBlockSize = int(n)
		case ac.accept("INITIAL_CAP"), ac.accept("EF_RUNTIME"), ac.accept("EPSILON"):
			if _, err := ac.float("vector attribute"); err != nil {
				return err
			}
		default:
			return ac.unrecognized()
		}
	}
	if f.VectorType == "" || f.VectorDim == 0 || f.VectorDistance == "" {
		return queryerr.Classify(queryerr.BadArg{
			Option: "VECTOR", Reason: "Missing mandatory parameters: TYPE, DIM and DISTANCE_METRIC are required",
		})
	}
	return nil
}
