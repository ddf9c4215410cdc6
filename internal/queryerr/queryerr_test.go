package queryerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
)

var allFailures = []Failure{
	IndexNotFound{Name: "idx"},
	DuplicateIndex{Name: "idx"},
	UnknownArg{Command: "ft.dropindex", Arg: "BOGUS"},
	UnknownArg{Arg: "BOGUS"},
	ArgMissing{Option: "LIMIT"},
	BadArg{Option: "LIMIT", Reason: "offset must be non-negative"},
	DuplicateField{Field: "title"},
	DuplicateParam{Name: "p"},
	ParamNotFound{Name: "p"},
	PropertyNotFound{Property: "@price"},
	QuerySyntax{Offset: 3, Reason: "unbalanced parenthesis"},
	UnknownReducer{Name: "MEDIAN2"},
	UnsupportedType{Field: "f", Type: "BLOB"},
	NonNumeric{Option: "WEIGHT", Value: "abc"},
	LimitExceeded{What: "LIMIT", Max: 10000},
	OrderWithoutOffsets{Option: "SLOP"},
	AliasTaken{Alias: "a"},
	AliasNotFound{Alias: "a"},
	Unclassified{Detail: "boom"},
	Unclassified{},
	nil,
}

func TestCodeNames_AreNamespaced(t *testing.T) {
	for _, c := range Codes() {
		if !strings.HasPrefix(c.Name(), "SEARCH_") {
			t.Errorf("code %d name %q lacks SEARCH_ prefix", c, c.Name())
		}
		if c.Message() == "" {
			t.Errorf("code %s has empty message", c.Name())
		}
	}
}

func TestCode_OutOfRangeIsGeneric(t *testing.T) {
	c := Code(250)
	if c.Name() != "SEARCH_GENERIC" {
		t.Errorf("Name() = %q, want SEARCH_GENERIC", c.Name())
	}
}

func TestCode_String(t *testing.T) {
	if got := NoIndex.String(); got != "SEARCH_INDEX_NOT_FOUND: Index not found" {
		t.Errorf("NoIndex.String() = %q", got)
	}
	if got := OK.String(); got != "Success (not an error)" {
		t.Errorf("OK.String() = %q", got)
	}
}

func TestNoIndexAndUnknownIndex_ShareName(t *testing.T) {
	if NoIndex.Name() != UnknownIndex.Name() {
		t.Errorf("NoIndex %q != UnknownIndex %q", NoIndex.Name(), UnknownIndex.Name())
	}
}

func TestClassify_MessageFormat(t *testing.T) {
	for _, f := range allFailures {
		t.Run(fmt.Sprintf("%T", f), func(t *testing.T) {
			e := Classify(f)
			if e.Code().IsOK() {
				t.Fatal("classified failure must never be OK")
			}
			pattern := regexp.MustCompile("^" + regexp.QuoteMeta(e.Code().Name()) + ": .+$")
			if !pattern.MatchString(e.Error()) {
				t.Errorf("message %q does not match %s", e.Error(), pattern)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for _, name := range []string{"a", "b", "nonexistent_index", "missing_idx"} {
		e := Classify(IndexNotFound{Name: name})
		if e.Code() != NoIndex {
			t.Errorf("IndexNotFound{%q} code = %s, want %s", name, e.Code().Name(), NoIndex.Name())
		}
		if !strings.HasPrefix(e.Error(), "SEARCH_INDEX_NOT_FOUND: ") {
			t.Errorf("message = %q", e.Error())
		}
	}
}

func TestClassify_Codes(t *testing.T) {
	tests := []struct {
		f    Failure
		want Code
	}{
		{IndexNotFound{Name: "x"}, NoIndex},
		{DuplicateIndex{Name: "x"}, IndexExists},
		{UnknownArg{Arg: "X"}, ArgUnrecognized},
		{ArgMissing{Option: "LIMIT"}, ParseArgs},
		{BadArg{Option: "DIALECT", Reason: "r"}, ParseArgs},
		{DuplicateField{Field: "f"}, DupField},
		{DuplicateParam{Name: "p"}, DupParam},
		{ParamNotFound{Name: "p"}, NoParam},
		{PropertyNotFound{Property: "p"}, NoPropKey},
		{QuerySyntax{}, Syntax},
		{UnknownReducer{Name: "r"}, NoReducer},
		{UnsupportedType{}, UnsuppType},
		{NonNumeric{}, NotNumeric},
		{LimitExceeded{}, Limit},
		{OrderWithoutOffsets{Option: "INORDER"}, BadOrderOption},
		{AliasTaken{}, AliasConflict},
		{AliasNotFound{}, Generic},
		{Unclassified{}, Generic},
		{nil, Generic},
	}
	for _, tc := range tests {
		if got := Classify(tc.f).Code(); got != tc.want {
			t.Errorf("Classify(%#v) = %s, want %s", tc.f, got.Name(), tc.want.Name())
		}
	}
}

func TestClassify_UnknownArgMentionsCommand(t *testing.T) {
	e := Classify(UnknownArg{Command: "ft.dropindex", Arg: "BOGUS"})
	want := "SEARCH_ARG_UNRECOGNIZED: Unknown argument `BOGUS` for FT.DROPINDEX"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestError_EmptyDetailFallsBack(t *testing.T) {
	e := Classify(Unclassified{})
	if e.Error() != "SEARCH_GENERIC: Generic error evaluating the query" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestError_Redacted(t *testing.T) {
	e := Classify(IndexNotFound{Name: "secret_tenant_idx"})
	if strings.Contains(e.Redacted(), "secret_tenant_idx") {
		t.Errorf("Redacted() leaks user data: %q", e.Redacted())
	}
	if e.Redacted() != "SEARCH_INDEX_NOT_FOUND: Index not found" {
		t.Errorf("Redacted() = %q", e.Redacted())
	}
}

func TestError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("ft.search: %w", Classify(IndexNotFound{Name: "a"}))
	if !errors.Is(err, ErrIndexNotFound) {
		t.Error("expected errors.Is(err, ErrIndexNotFound)")
	}
	if errors.Is(err, ErrIndexExists) {
		t.Error("unexpected match with ErrIndexExists")
	}
	if !errors.Is(Classify(ArgMissing{Option: "LIMIT"}), ErrParseArgs) {
		t.Error("ArgMissing should match ErrParseArgs")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != OK {
		t.Error("CodeOf(nil) should be OK")
	}
	if CodeOf(errors.New("plain")) != Generic {
		t.Error("unclassified error should be Generic")
	}
	wrapped := fmt.Errorf("wrap: %w", Classify(DuplicateParam{Name: "x"}))
	if CodeOf(wrapped) != DupParam {
		t.Errorf("CodeOf(wrapped) = %s", CodeOf(wrapped).Name())
	}
}

func TestStatus_FirstFailureWins(t *testing.T) {
	var s Status
	if !s.OK() || s.Err() != nil || s.Code() != OK {
		t.Fatal("zero Status must be OK")
	}

	s.Fail(ArgMissing{Option: "LIMIT"})
	s.Fail(IndexNotFound{Name: "x"})

	if s.OK() {
		t.Fatal("expected failure")
	}
	if s.Code() != ParseArgs {
		t.Errorf("Code() = %s, want %s", s.Code().Name(), ParseArgs.Name())
	}
	if !errors.Is(s.Err(), ErrParseArgs) {
		t.Errorf("Err() = %v", s.Err())
	}
}

func TestStatus_Warnings(t *testing.T) {
	var s Status
	if s.Warnings().Any() {
		t.Fatal("no warnings expected")
	}
	s.SetReachedMaxPrefixExpansions()
	if w := s.Warnings(); !w.ReachedMaxPrefixExpansions || !w.Any() {
		t.Errorf("warnings = %+v", w)
	}

	// A warning does not turn the status into a failure.
	if !s.OK() || s.Err() != nil {
		t.Error("warning should leave the status OK")
	}
}
