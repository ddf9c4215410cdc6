package command

// ReplyWriter is the subset of a RESP connection that replies are written to.
// redcon.Conn satisfies it.
type ReplyWriter interface {
	WriteError(msg string)
	WriteString(str string)
	WriteBulkString(bulk string)
	WriteInt64(num int64)
	WriteArray(count int)
	WriteNull()
}

// Reply is a fully built command response. Handlers build the whole reply
// before anything is written, so a failing command never emits a partial
// response.
type Reply interface {
	WriteTo(w ReplyWriter)
}

// SimpleString is a RESP simple string (+OK).
type SimpleString string

// BulkString is a RESP bulk string.
type BulkString string

// Int is a RESP integer.
type Int int64

// Array is a RESP array.
type Array []Reply

// Null is the RESP null bulk string.
type Null struct{}

// ErrorReply is a RESP error. It is produced only by the dispatcher, after
// the failure has been classified and counted.
type ErrorReply string

// OK is the canonical +OK reply.
const OK = SimpleString("OK")

func (s SimpleString) WriteTo(w ReplyWriter) { w.WriteString(string(s)) }
func (s BulkString) WriteTo(w ReplyWriter)   { w.WriteBulkString(string(s)) }
func (n Int) WriteTo(w ReplyWriter)          { w.WriteInt64(int64(n)) }
func (Null) WriteTo(w ReplyWriter)           { w.WriteNull() }
func (e ErrorReply) WriteTo(w ReplyWriter)   { w.WriteError(string(e)) }

func (a Array) WriteTo(w ReplyWriter) {
	w.WriteArray(len(a))
	for _, r := range a {
		r.WriteTo(w)
	}
}

// Bulks builds an array of bulk strings.
func Bulks(items ...string) Array {
	out := make(Array, len(items))
	for i, s := range items {
		out[i] = BulkString(s)
	}
	return out
}
