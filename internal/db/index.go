package db

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// StorageType defines the document storage backend for FT indexes (HASH or JSON).
type StorageType string

const (
	// StorageHash indexes Redis hashes.
	StorageHash StorageType = "HASH"
	// StorageJSON indexes JSON documents.
	StorageJSON StorageType = "JSON"
)

// ParseStorageType parses the ON clause of FT.CREATE (case-insensitive).
func ParseStorageType(s string) (StorageType, bool) {
	switch strings.ToUpper(s) {
	case string(StorageHash):
		return StorageHash, true
	case string(StorageJSON):
		return StorageJSON, true
	}
	return "", false
}

// DistanceMetric used by vector fields.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW uses the HNSW algorithm.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat uses the FLAT (brute-force) algorithm.
	VectorFlat VectorAlgorithm = "FLAT"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a full-text field.
	IndexFieldText
	// IndexFieldVector is a vector field.
	IndexFieldVector
	// IndexFieldGeo is a lon/lat point field.
	IndexFieldGeo
	// IndexFieldGeoShape is a polygon field.
	IndexFieldGeoShape
)

var fieldTypeNames = map[IndexFieldType]string{
	IndexFieldNumeric:  "NUMERIC",
	IndexFieldTag:      "TAG",
	IndexFieldText:     "TEXT",
	IndexFieldVector:   "VECTOR",
	IndexFieldGeo:      "GEO",
	IndexFieldGeoShape: "GEOSHAPE",
}

func (t IndexFieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseFieldType parses a schema field type keyword (case-insensitive).
func ParseFieldType(s string) (IndexFieldType, bool) {
	up := strings.ToUpper(s)
	for t, name := range fieldTypeNames {
		if name == up {
			return t, true
		}
	}
	return 0, false
}

// ParseVectorAlgorithm parses the algorithm of a VECTOR field.
func ParseVectorAlgorithm(s string) (VectorAlgorithm, bool) {
	switch strings.ToUpper(s) {
	case string(VectorHNSW):
		return VectorHNSW, true
	case string(VectorFlat):
		return VectorFlat, true
	}
	return "", false
}

// ParseDistanceMetric parses DISTANCE_METRIC of a VECTOR field.
func ParseDistanceMetric(s string) (DistanceMetric, bool) {
	switch strings.ToUpper(s) {
	case string(DistanceL2):
		return DistanceL2, true
	case string(DistanceIP):
		return DistanceIP, true
	case string(DistanceCosine):
		return DistanceCosine, true
	}
	return "", false
}

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name  string
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	Sortable     bool
	NoIndex      bool
	IndexMissing bool
	IndexEmpty   bool

	// TEXT options
	Weight         float64
	NoStem         bool
	Phonetic       string
	WithSuffixTrie bool

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// VECTOR options
	VectorAlgo        VectorAlgorithm
	VectorType        string // FLOAT32, FLOAT64, ...
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int // HNSW M parameter: max edges per node (default 16)
	VectorEFConstruct int // HNSW EF_CONSTRUCTION: build-time dynamic list size (default 200)
	VectorBlockSize   int // FLAT BLOCK_SIZE
}

// Identifier returns the name the field is addressed by in queries.
func (f *IndexField) Identifier() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Filter      string
	Language    string
	Score       float64
	StopWords   []string
	Temporary   int // seconds, 0 = permanent

	NoOffsets       bool
	NoHL            bool
	NoFields        bool
	NoFreqs         bool
	MaxTextFields   bool
	SkipInitialScan bool

	Fields []IndexField
}

// Field looks up a field by its identifier (alias or name), with or
// without a leading '@'.
func (idx *IndexDefinition) Field(name string) (*IndexField, bool) {
	name = strings.TrimPrefix(name, "@")
	for i := range idx.Fields {
		if idx.Fields[i].Identifier() == name {
			return &idx.Fields[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the definition.
func (idx *IndexDefinition) Clone() *IndexDefinition {
	c := *idx
	c.Prefixes = append([]string(nil), idx.Prefixes...)
	c.StopWords = append([]string(nil), idx.StopWords...)
	c.Fields = append([]IndexField(nil), idx.Fields...)
	return &c
}

// Validate checks that the index definition is well-formed. Failures are
// classified so they can be returned to clients as-is.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return queryerr.Classify(queryerr.ArgMissing{Option: "index name"})
	}
	if !IsValidIdentifier(idx.Name) {
		return queryerr.Classify(queryerr.BadArg{Option: "index name", Reason: "contains invalid characters"})
	}
	if len(idx.Fields) == 0 {
		return queryerr.Classify(queryerr.BadArg{Option: "SCHEMA", Reason: "at least one field is required"})
	}
	return ValidateFields(nil, idx.Fields)
}

// ValidateFields checks added fields against each other and against the
// existing ones.
func ValidateFields(existing, added []IndexField) error {
	seen := make(map[string]bool, len(existing)+len(added))
	for i := range existing {
		seen[existing[i].Identifier()] = true
	}

	for i := range added {
		f := &added[i]
		if f.Name == "" {
			return queryerr.Classify(queryerr.BadArg{
				Option: "SCHEMA", Reason: "field name is required at index " + strconv.Itoa(i),
			})
		}
		key := f.Identifier()
		if seen[key] {
			return queryerr.Classify(queryerr.DuplicateField{Field: key})
		}
		seen[key] = true

		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return queryerr.Classify(queryerr.BadArg{Option: key, Reason: "vector field requires positive DIM"})
		}
		if f.Weight < 0 {
			return queryerr.Classify(queryerr.BadArg{Option: key, Reason: "WEIGHT must be non-negative"})
		}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:.-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-' || r == '.'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
