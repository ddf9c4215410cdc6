package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// OnJSON sets the index storage type to JSON.
func (b *IndexBuilder) OnJSON() *IndexBuilder {
	b.def.StorageType = StorageJSON
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// NoOffsets disables term offsets (no SLOP/INORDER, no highlighting).
func (b *IndexBuilder) NoOffsets() *IndexBuilder {
	b.def.NoOffsets = true
	return b
}

// Temporary makes the index expire after ttl seconds of inactivity.
func (b *IndexBuilder) Temporary(ttl int) *IndexBuilder {
	b.def.Temporary = ttl
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric})
	return b
}

// Tag adds a TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag})
	return b
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldText})
	return b
}

// SortableText adds a SORTABLE TEXT field with the given weight.
func (b *IndexBuilder) SortableText(name string, weight float64) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:     name,
		Type:     IndexFieldText,
		Weight:   weight,
		Sortable: true,
	})
	return b
}

// Geo adds a GEO field to the index.
func (b *IndexBuilder) Geo(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldGeo})
	return b
}

// VectorHNSW adds a FLOAT32 VECTOR field with the HNSW algorithm.
func (b *IndexBuilder) VectorHNSW(name string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:              name,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorType:        "FLOAT32",
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return b.def.Clone(), nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// Args renders the FT.CREATE arguments (without the command name).
func (idx *IndexDefinition) Args() []string {
	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	if idx.Filter != "" {
		args = append(args, "FILTER", idx.Filter)
	}
	if idx.Language != "" {
		args = append(args, "LANGUAGE", idx.Language)
	}
	if idx.Score != 0 {
		args = append(args, "SCORE", formatFloat(idx.Score))
	}
	if idx.MaxTextFields {
		args = append(args, "MAXTEXTFIELDS")
	}
	if idx.Temporary > 0 {
		args = append(args, "TEMPORARY", strconv.Itoa(idx.Temporary))
	}
	if idx.NoOffsets {
		args = append(args, "NOOFFSETS")
	}
	if idx.NoHL {
		args = append(args, "NOHL")
	}
	if idx.NoFields {
		args = append(args, "NOFIELDS")
	}
	if idx.NoFreqs {
		args = append(args, "NOFREQS")
	}
	if idx.StopWords != nil {
		args = append(args, "STOPWORDS", strconv.Itoa(len(idx.StopWords)))
		args = append(args, idx.StopWords...)
	}
	if idx.SkipInitialScan {
		args = append(args, "SKIPINITIALSCAN")
	}

	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].Args()...)
	}
	return args
}

// Args renders the SCHEMA arguments of a single field.
func (f *IndexField) Args() []string {
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case IndexFieldText:
		args = append(args, "TEXT")
		if f.Weight != 0 && f.Weight != 1 {
			args = append(args, "WEIGHT", formatFloat(f.Weight))
		}
		if f.NoStem {
			args = append(args, "NOSTEM")
		}
		if f.Phonetic != "" {
			args = append(args, "PHONETIC", f.Phonetic)
		}
		if f.WithSuffixTrie {
			args = append(args, "WITHSUFFIXTRIE")
		}
	case IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	case IndexFieldVector:
		args = append(args, f.vectorArgs()...)
	default:
		args = append(args, f.Type.String())
	}

	if f.IndexMissing {
		args = append(args, "INDEXMISSING")
	}
	if f.IndexEmpty {
		args = append(args, "INDEXEMPTY")
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	if f.NoIndex {
		args = append(args, "NOINDEX")
	}
	return args
}

func (f *IndexField) vectorArgs() []string {
	algo := f.VectorAlgo
	if algo == "" {
		algo = VectorHNSW
	}
	vecType := f.VectorType
	if vecType == "" {
		vecType = "FLOAT32"
	}
	distance := f.VectorDistance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", vecType,
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	switch algo {
	case VectorHNSW:
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
	case VectorFlat:
		if f.VectorBlockSize > 0 {
			attrs = append(attrs, "BLOCK_SIZE", strconv.Itoa(f.VectorBlockSize))
		}
	}

	out := make([]string, 0, 3+len(attrs))
	out = append(out, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}

// String returns the definition as an FT.CREATE command line.
func (idx *IndexDefinition) String() string {
	return "FT.CREATE " + strings.Join(idx.Args(), " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
