package command

import (
	"context"
	"strconv"
	"strings"
)

func (d *Dispatcher) registerServer() {
	d.Register(
		Spec{Name: "PING", Arity: -1, Handler: d.ping},
		Spec{Name: "ECHO", Arity: 2, Handler: d.echo},
		Spec{Name: "INFO", Arity: -1, Handler: d.info},
		Spec{Name: "CONFIG", Arity: -2, Handler: d.config},
		Spec{Name: "CLIENT", Arity: -2, Handler: d.client},
		Spec{Name: "HELLO", Arity: -1, Handler: d.hello},
		Spec{Name: "COMMAND", Arity: -1, Handler: d.command},
		Spec{Name: "CLUSTER", Arity: -2, Handler: d.cluster},
		Spec{Name: "SELECT", Arity: 2, Handler: d.selectDB},
		Spec{Name: "QUIT", Arity: -1, Handler: d.quit},
		Spec{Name: "AUTH", Arity: -2, Handler: d.auth},
	)
}

func (d *Dispatcher) ping(_ context.Context, req *Request) (Reply, error) {
	switch len(req.Args) {
	case 0:
		return SimpleString("PONG"), nil
	case 1:
		return BulkString(req.Args[0]), nil
	default:
		return nil, ErrWrongArity(req.Name)
	}
}

func (d *Dispatcher) echo(_ context.Context, req *Request) (Reply, error) {
	return BulkString(req.Args[0]), nil
}

func (d *Dispatcher) info(_ context.Context, req *Request) (Reply, error) {
	return BulkString(d.renderInfo(req.Args)), nil
}

// config supports RESETSTAT, which clears the error statistics and the
// cumulative server counters. GET answers with an empty list.
func (d *Dispatcher) config(_ context.Context, req *Request) (Reply, error) {
	switch strings.ToUpper(req.Args[0]) {
	case "RESETSTAT":
		if len(req.Args) != 1 {
			return nil, ErrWrongArity("config|resetstat")
		}
		d.errors.Reset()
		d.stats.Reset()
		return OK, nil
	case "GET":
		return Array{}, nil
	default:
		return nil, ErrUnknownSubcommand(req.Name, req.Args[0])
	}
}

func (d *Dispatcher) client(_ context.Context, req *Request) (Reply, error) {
	conn := req.Conn
	switch strings.ToUpper(req.Args[0]) {
	case "SETNAME":
		if len(req.Args) != 2 {
			return nil, ErrWrongArity("client|setname")
		}
		if conn != nil {
			conn.Name = req.Args[1]
		}
		return OK, nil
	case "GETNAME":
		if conn == nil || conn.Name == "" {
			return Null{}, nil
		}
		return BulkString(conn.Name), nil
	case "ID":
		if conn == nil {
			return Int(0), nil
		}
		return Int(conn.Seq), nil
	default:
		// SETINFO, TRACKING and friends are accepted and ignored.
		return OK, nil
	}
}

// hello negotiates the protocol. Only RESP2 is spoken; asking for 3 gets
// NOPROTO so clients fall back.
func (d *Dispatcher) hello(_ context.Context, req *Request) (Reply, error) {
	c := newArgCursor(req.Name, req.Args)
	if !c.done() {
		proto, err := strconv.Atoi(c.next())
		if err != nil {
			return nil, ErrProtoNotAnInteger
		}
		if proto != 2 {
			return nil, ErrUnsupportedProto
		}
	}
	for !c.done() {
		switch {
		case c.accept("AUTH"):
			if c.remaining() < 2 {
				return nil, ErrSyntax
			}
			c.next()
			c.next()
		case c.accept("SETNAME"):
			if c.done() {
				return nil, ErrSyntax
			}
			name := c.next()
			if req.Conn != nil {
				req.Conn.Name = name
			}
		default:
			return nil, ErrSyntax
		}
	}

	var id int64
	if req.Conn != nil {
		id = req.Conn.Seq
	}
	return Array{
		BulkString("server"), BulkString("searchd"),
		BulkString("version"), BulkString(d.cfg.Version),
		BulkString("proto"), Int(2),
		BulkString("id"), Int(id),
		BulkString("mode"), BulkString("standalone"),
		BulkString("role"), BulkString("master"),
		BulkString("modules"), Array{},
	}, nil
}

func (d *Dispatcher) command(context.Context, *Request) (Reply, error) {
	return Array{}, nil
}

func (d *Dispatcher) cluster(context.Context, *Request) (Reply, error) {
	return nil, ErrClusterDisabled
}

func (d *Dispatcher) selectDB(_ context.Context, req *Request) (Reply, error) {
	n, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return nil, ErrNotInteger
	}
	if n != 0 {
		return nil, ErrDBOutOfRange
	}
	return OK, nil
}

// quit acknowledges; the transport closes the connection after the reply.
func (d *Dispatcher) quit(context.Context, *Request) (Reply, error) {
	return OK, nil
}

// auth accepts any credentials; the RESP listener has no access control.
func (d *Dispatcher) auth(_ context.Context, req *Request) (Reply, error) {
	if len(req.Args) > 2 {
		return nil, ErrSyntax
	}
	return OK, nil
}
