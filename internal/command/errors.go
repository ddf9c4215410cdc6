package command

import (
	"fmt"
	"strings"
)

// ServerError is a core (non-search) error reply such as "ERR syntax error".
// Its statistics key is Prefix.
type ServerError struct {
	Prefix string
	Msg    string
}

func (e *ServerError) Error() string { return e.Prefix + " " + e.Msg }

// Core server errors.
var (
	ErrSyntax            = &ServerError{Prefix: "ERR", Msg: "syntax error"}
	ErrNotInteger        = &ServerError{Prefix: "ERR", Msg: "value is not an integer or out of range"}
	ErrClusterDisabled   = &ServerError{Prefix: "ERR", Msg: "This instance has cluster support disabled"}
	ErrDBOutOfRange      = &ServerError{Prefix: "ERR", Msg: "DB index is out of range"}
	ErrUnsupportedProto  = &ServerError{Prefix: "NOPROTO", Msg: "unsupported protocol version"}
	ErrProtoNotAnInteger = &ServerError{Prefix: "ERR", Msg: "Protocol version is not an integer or out of range"}
)

// ErrUnknownCommand builds the Redis "unknown command" error.
func ErrUnknownCommand(name string, args []string) *ServerError {
	var b strings.Builder
	for i, a := range args {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "'%s' ", a)
	}
	return &ServerError{
		Prefix: "ERR",
		Msg:    fmt.Sprintf("unknown command '%s', with args beginning with: %s", name, b.String()),
	}
}

// ErrUnknownSubcommand builds the Redis "unknown subcommand" error.
func ErrUnknownSubcommand(name, sub string) *ServerError {
	return &ServerError{
		Prefix: "ERR",
		Msg:    fmt.Sprintf("unknown subcommand '%s'. Try %s HELP.", sub, strings.ToUpper(name)),
	}
}

// ErrWrongArity builds the Redis arity error.
func ErrWrongArity(name string) *ServerError {
	return &ServerError{
		Prefix: "ERR",
		Msg:    fmt.Sprintf("wrong number of arguments for '%s' command", strings.ToLower(name)),
	}
}
