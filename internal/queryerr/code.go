// Package queryerr classifies search command failures into stable,
// namespaced error codes.
//
// Every failure a command handler can detect is expressed as a Failure
// variant and turned into an *Error by Classify. The rendered message is
// always "<CODE>: <detail>", where CODE is one of the SEARCH_* names below.
// Several codes may share a name when they describe the same category
// (NoIndex and UnknownIndex both render as SEARCH_INDEX_NOT_FOUND), so
// error statistics group by category rather than by call site.
package queryerr

// Code identifies a category of search failure.
type Code uint8

// Error codes. OK is the zero value and means "no error".
const (
	OK Code = iota
	Generic
	Syntax
	ParseArgs
	AddArgs
	Expr
	Keyword
	NoResults
	BadAttr
	Inval
	BuildPlan
	ConstructPipeline
	NoReducer
	ReducerGeneric
	AggPlan
	CursorAlloc
	ReducerInit
	QString
	NoPropKey
	NoPropVal
	NoDoc
	NoOption
	RedisKeyType
	InvalPath
	IndexExists
	BadOption
	BadOrderOption
	Limit
	NoIndex
	DocExists
	DocNotAdded
	DupField
	GeoFormat
	NoDistribute
	UnsuppType
	NotNumeric
	TimedOut
	NoParam
	DupParam
	BadVal
	NonHybrid
	HybridNonExist
	AdhocWithBatchSize
	AdhocWithEfRuntime
	NonRange
	Missing
	Mismatch
	UnknownIndex
	DroppedBackground
	AliasConflict
	IndexBgOOMFail
	WeightNotAllowed
	VectorNotAllowed
	OutOfMemory
	ArgUnrecognized

	numCodes
)

type codeInfo struct {
	name    string
	message string
}

var codeTable = [numCodes]codeInfo{
	OK:                 {"", "Success (not an error)"},
	Generic:            {"SEARCH_GENERIC", "Generic error evaluating the query"},
	Syntax:             {"SEARCH_SYNTAX", "Parsing/Syntax error for query string"},
	ParseArgs:          {"SEARCH_PARSE_ARGS", "Error parsing query/aggregation arguments"},
	AddArgs:            {"SEARCH_ADD_ARGS", "Error parsing document indexing arguments"},
	Expr:               {"SEARCH_EXPR", "Parsing/Evaluating dynamic expression failed"},
	Keyword:            {"SEARCH_KEYWORD", "Could not handle query keyword"},
	NoResults:          {"SEARCH_NO_RESULTS", "Query matches no results"},
	BadAttr:            {"SEARCH_BAD_ATTR", "Attribute not supported for term"},
	Inval:              {"SEARCH_INVAL", "Could not validate the query nodes (bad attribute?)"},
	BuildPlan:          {"SEARCH_BUILD_PLAN", "Could not build plan from query"},
	ConstructPipeline:  {"SEARCH_CONSTRUCT_PIPELINE", "Could not construct query pipeline"},
	NoReducer:          {"SEARCH_NO_REDUCER", "Reducer not found"},
	ReducerGeneric:     {"SEARCH_REDUCER_GENERIC", "Generic reducer error"},
	AggPlan:            {"SEARCH_AGG_PLAN", "Could not plan aggregation request"},
	CursorAlloc:        {"SEARCH_CURSOR_ALLOC", "Could not allocate a cursor"},
	ReducerInit:        {"SEARCH_REDUCER_INIT", "Could not initialize reducer"},
	QString:            {"SEARCH_QSTRING", "Bad query string"},
	NoPropKey:          {"SEARCH_NO_PROP_KEY", "Property not found in schema"},
	NoPropVal:          {"SEARCH_NO_PROP_VAL", "Value not found in result (not a hard error)"},
	NoDoc:              {"SEARCH_NO_DOC", "Document not found"},
	NoOption:           {"SEARCH_NO_OPTION", "Invalid option"},
	RedisKeyType:       {"SEARCH_REDIS_KEY_TYPE", "Invalid Redis key"},
	InvalPath:          {"SEARCH_INVAL_PATH", "Invalid path"},
	IndexExists:        {"SEARCH_INDEX_EXISTS", "Index already exists"},
	BadOption:          {"SEARCH_BAD_OPTION", "Option not supported for current mode"},
	BadOrderOption:     {"SEARCH_BAD_ORDER_OPTION", "Path with undefined ordering does not support slop/inorder"},
	Limit:              {"SEARCH_LIMIT", "Limit exceeded"},
	NoIndex:            {"SEARCH_INDEX_NOT_FOUND", "Index not found"},
	DocExists:          {"SEARCH_DOC_EXISTS", "Document already exists"},
	DocNotAdded:        {"SEARCH_DOC_NOT_ADDED", "Document was not added because condition was unmet"},
	DupField:           {"SEARCH_DUP_FIELD", "Field was specified twice"},
	GeoFormat:          {"SEARCH_GEO_FORMAT", `Invalid lon/lat format. Use "lon lat" or "lon,lat"`},
	NoDistribute:       {"SEARCH_NO_DISTRIBUTE", "Could not distribute the operation"},
	UnsuppType:         {"SEARCH_UNSUPP_TYPE", "Unsupported index type"},
	NotNumeric:         {"SEARCH_NOT_NUMERIC", "Could not convert value to a number"},
	TimedOut:           {"SEARCH_TIMED_OUT", "Timeout limit was reached"},
	NoParam:            {"SEARCH_PARAM_NOT_FOUND", "Parameter not found"},
	DupParam:           {"SEARCH_DUP_PARAM", "Parameter was specified twice"},
	BadVal:             {"SEARCH_BAD_VAL", "Invalid value was given"},
	NonHybrid:          {"SEARCH_NON_HYBRID", "hybrid query attributes were sent for a non-hybrid query"},
	HybridNonExist:     {"SEARCH_HYBRID_NON_EXIST", "invalid hybrid policy was given"},
	AdhocWithBatchSize: {"SEARCH_ADHOC_WITH_BATCH_SIZE", "'batch size' is irrelevant for 'ADHOC_BF' policy"},
	AdhocWithEfRuntime: {"SEARCH_ADHOC_WITH_EF_RUNTIME", "'EF_RUNTIME' is irrelevant for 'ADHOC_BF' policy"},
	NonRange:           {"SEARCH_NON_RANGE", "range query attributes were sent for a non-range query"},
	Missing:            {"SEARCH_MISSING", "'ismissing' requires field to be defined with 'INDEXMISSING'"},
	Mismatch:           {"SEARCH_MISMATCH", "Index mismatch: Shard index is different than queried index"},
	UnknownIndex:       {"SEARCH_INDEX_NOT_FOUND", "Index not found"},
	DroppedBackground:  {"SEARCH_DROPPED_BACKGROUND", "The index was dropped before the query could be executed"},
	AliasConflict:      {"SEARCH_ALIAS_CONFLICT", "Alias conflicts with an existing index name"},
	IndexBgOOMFail:     {"SEARCH_INDEX_BG_OOM_FAIL", "Index background scan did not complete due to OOM"},
	WeightNotAllowed:   {"SEARCH_WEIGHT_NOT_ALLOWED", "Weight attributes are not allowed"},
	VectorNotAllowed:   {"SEARCH_VECTOR_NOT_ALLOWED", "Vector queries are not allowed"},
	OutOfMemory:        {"SEARCH_OUT_OF_MEMORY", "Not enough memory available to execute the query"},
	ArgUnrecognized:    {"SEARCH_ARG_UNRECOGNIZED", "Unknown argument"},
}

// IsOK reports whether c is the "no error" code.
func (c Code) IsOK() bool { return c == OK }

// Name returns the stable machine-readable name, e.g. "SEARCH_INDEX_NOT_FOUND".
// Out-of-range codes report as SEARCH_GENERIC so no failure is ever unnamed.
func (c Code) Name() string {
	if c >= numCodes {
		return codeTable[Generic].name
	}
	return codeTable[c].name
}

// Message returns the default human-readable description of the code.
func (c Code) Message() string {
	if c >= numCodes {
		return codeTable[Generic].message
	}
	return codeTable[c].message
}

// String renders the code with its default message, "<NAME>: <message>".
func (c Code) String() string {
	if c == OK {
		return c.Message()
	}
	return c.Name() + ": " + c.Message()
}

// Codes returns every error code except OK, in declaration order.
func Codes() []Code {
	out := make([]Code, 0, numCodes-1)
	for c := Generic; c < numCodes; c++ {
		out = append(out, c)
	}
	return out
}
