package queryerr

import (
	"fmt"
	"strings"
)

// Failure describes what went wrong inside a command handler. The set of
// variants is closed; Classify maps each one to exactly one Code.
type Failure interface {
	failure()
}

// IndexNotFound: the named index (or alias) is not in the catalog.
type IndexNotFound struct {
	Name string
}

// DuplicateIndex: FT.CREATE on a name that is already taken.
type DuplicateIndex struct {
	Name string
}

// UnknownArg: a token that the command does not understand.
type UnknownArg struct {
	Command string
	Arg     string
}

// ArgMissing: an option was given without its required value(s).
type ArgMissing struct {
	Option string
}

// BadArg: an option value that is present but malformed.
type BadArg struct {
	Option string
	Reason string
}

// DuplicateField: the same field name appears twice in a schema.
type DuplicateField struct {
	Field string
}

// DuplicateParam: the same name appears twice in PARAMS.
type DuplicateParam struct {
	Name string
}

// ParamNotFound: the query references $name but PARAMS does not define it.
type ParamNotFound struct {
	Name string
}

// PropertyNotFound: a property is neither loaded nor in the schema.
type PropertyNotFound struct {
	Property string
}

// QuerySyntax: the query string cannot be parsed.
type QuerySyntax struct {
	Offset int
	Reason string
}

// UnknownReducer: GROUPBY ... REDUCE names an unknown reducer function.
type UnknownReducer struct {
	Name string
}

// UnsupportedType: a schema field declares an unknown type.
type UnsupportedType struct {
	Field string
	Type  string
}

// NonNumeric: a value that must be a number is not.
type NonNumeric struct {
	Option string
	Value  string
}

// LimitExceeded: a configured maximum was exceeded.
type LimitExceeded struct {
	What string
	Max  int
}

// OrderWithoutOffsets: SLOP or INORDER against an index created without offsets.
type OrderWithoutOffsets struct {
	Option string
}

// AliasTaken: the alias is already taken by an index or another alias.
type AliasTaken struct {
	Alias string
}

// AliasNotFound: FT.ALIASDEL on an alias that does not exist.
type AliasNotFound struct {
	Alias string
}

// Unclassified: a failure that has no more specific category.
type Unclassified struct {
	Detail string
}

func (IndexNotFound) failure()       {}
func (DuplicateIndex) failure()      {}
func (UnknownArg) failure()          {}
func (ArgMissing) failure()          {}
func (BadArg) failure()              {}
func (DuplicateField) failure()      {}
func (DuplicateParam) failure()      {}
func (ParamNotFound) failure()       {}
func (PropertyNotFound) failure()    {}
func (QuerySyntax) failure()         {}
func (UnknownReducer) failure()      {}
func (UnsupportedType) failure()     {}
func (NonNumeric) failure()          {}
func (LimitExceeded) failure()       {}
func (OrderWithoutOffsets) failure() {}
func (AliasTaken) failure()          {}
func (AliasNotFound) failure()       {}
func (Unclassified) failure()        {}

// Classify turns a Failure into its classified Error. The mapping is
// deterministic and total: variants without a specific category, including
// a nil Failure, become Generic.
func Classify(f Failure) *Error {
	switch f := f.(type) {
	case IndexNotFound:
		return &Error{code: NoIndex, detail: "Index not found: " + f.Name}
	case DuplicateIndex:
		return &Error{code: IndexExists, detail: "Index already exists: " + f.Name}
	case UnknownArg:
		if f.Command == "" {
			return &Error{code: ArgUnrecognized, detail: fmt.Sprintf("Unknown argument `%s`", f.Arg)}
		}
		return &Error{code: ArgUnrecognized, detail: fmt.Sprintf("Unknown argument `%s` for %s", f.Arg, strings.ToUpper(f.Command))}
	case ArgMissing:
		return &Error{code: ParseArgs, detail: fmt.Sprintf("Bad arguments for %s: Expected an argument", f.Option)}
	case BadArg:
		return &Error{code: ParseArgs, detail: fmt.Sprintf("Bad arguments for %s: %s", f.Option, f.Reason)}
	case DuplicateField:
		return &Error{code: DupField, detail: "Duplicate field in schema - " + f.Field}
	case DuplicateParam:
		return &Error{code: DupParam, detail: fmt.Sprintf("Duplicate parameter `%s`", f.Name)}
	case ParamNotFound:
		return &Error{code: NoParam, detail: fmt.Sprintf("No such parameter `%s`", f.Name)}
	case PropertyNotFound:
		return &Error{code: NoPropKey, detail: fmt.Sprintf("Property `%s` not loaded nor in schema", f.Property)}
	case QuerySyntax:
		return &Error{code: Syntax, detail: fmt.Sprintf("Syntax error at offset %d: %s", f.Offset, f.Reason)}
	case UnknownReducer:
		return &Error{code: NoReducer, detail: fmt.Sprintf("No such reducer `%s`", f.Name)}
	case UnsupportedType:
		return &Error{code: UnsuppType, detail: fmt.Sprintf("Unsupported field type `%s` for field `%s`", f.Type, f.Field)}
	case NonNumeric:
		return &Error{code: NotNumeric, detail: fmt.Sprintf("Could not convert `%s` to a number for %s", f.Value, f.Option)}
	case LimitExceeded:
		return &Error{code: Limit, detail: fmt.Sprintf("%s exceeds the maximum of %d", f.What, f.Max)}
	case OrderWithoutOffsets:
		return &Error{code: BadOrderOption, detail: f.Option + " requires an index with term offsets"}
	case AliasTaken:
		return &Error{code: AliasConflict, detail: "Alias already exists: " + f.Alias}
	case AliasNotFound:
		return &Error{code: Generic, detail: "Alias does not exist: " + f.Alias}
	case Unclassified:
		return &Error{code: Generic, detail: f.Detail}
	default:
		return &Error{code: Generic}
	}
}
