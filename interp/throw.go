package interp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ThrowState is the dedicated label/payload pair a throw carries while it
// propagates. Since an Interp is itself
// single-threaded, this lives on the engine rather than on a goroutine-local.
type ThrowState struct {
	Active  bool
	Label   Cell
	Payload Cell
}

// Throw sets the engine's thrown state and returns StatusThrown, the value
// every executor along the unwind path propagates until a catch accepts it.
func (eng *Interp) Throw(label, payload Cell) Status {
	eng.thrown = ThrowState{Active: true, Label: label, Payload: payload}
	eng.metrics.throws.WithLabelValues(labelName(label)).Inc()
	return StatusThrown
}

func labelName(label Cell) string {
	if label.Heart == HeartWord && label.AsSymbol() != nil {
		return label.AsSymbol().String()
	}
	return label.Heart.String()
}

// CatchFilter decides whether a pending throw's label is accepted by a
// particular catch point.
type CatchFilter func(label Cell) bool

// ByWordName returns a CatchFilter that accepts a throw labelled with the
// word sym.
func ByWordName(sym *Symbol) CatchFilter {
	return func(label Cell) bool {
		return label.Heart == HeartWord && label.AsSymbol() == sym
	}
}

// AnyLabel accepts every throw (plain `catch [...]`).
func AnyLabel(Cell) bool { return true }

// TryCatch consumes the engine's pending thrown state if filter accepts its
// label, returning the payload. If no throw is pending, or filter rejects
// it, ok is false and the throw (if any) is left active for an outer catch.
func (eng *Interp) TryCatch(filter CatchFilter) (payload Cell, ok bool) {
	if !eng.thrown.Active {
		return Cell{}, false
	}
	if !filter(eng.thrown.Label) {
		return Cell{}, false
	}
	payload = eng.thrown.Payload
	eng.thrown = ThrowState{}
	return payload, true
}

// HaltCell builds the reserved throw label used for the signal-driven
// cancellation path.
func HaltCell(eng *Interp) Cell { return WordCell(eng.haltSym, nil) }

// RaisedError is the payload carried by a raised-error cell: a first-class
// error context with a message and an optional wrapped Go cause retaining
// a stack trace.
type RaisedError struct {
	Kind    string // "binding", "argument", "evaluation", "isotope", "resource", "user"
	Message string
	Cause   error
}

func (r *RaisedError) Error() string { return fmt.Sprintf("%s: %s", r.Kind, r.Message) }

// Raise constructs a raised-error cell: a first-class error value placed in
// `out` with FlagRaised, not yet a throw. The Go cause is built with
// errors.New from github.com/pkg/errors, which records the call stack.
func Raise(kind, msg string) Cell {
	re := &RaisedError{Kind: kind, Message: msg, Cause: errors.New(msg)}
	ctx := NewContext(HeartError, nil, nil, nil)
	ctx.Manage()
	c := ContextCell(ctx)
	c.Flags |= FlagRaised
	c.Payload.Ctx.errVal = re
	return c
}

// IsRaised reports whether c is an unconsumed raised error.
func (c *Cell) IsRaised() bool { return c.Flags.Has(FlagRaised) }

// AsRaisedError extracts the underlying *RaisedError from an error-context
// cell produced by Raise.
func (c *Cell) AsRaisedError() *RaisedError {
	if c.Payload.Ctx == nil {
		return nil
	}
	return c.Payload.Ctx.errVal
}

// Promote converts an unconsumed raised error into a full throw. The throw's label is the
// generic `error` word so host catches can filter on it specifically.
func (eng *Interp) Promote(raised Cell) Status {
	raised.Flags &^= FlagRaised
	return eng.Throw(WordCell(eng.errorSym, nil), raised)
}

// WrapAbruptFailure converts a Go panic recovered from inside a dispatcher
// into a thrown error labelled generically.
func (eng *Interp) WrapAbruptFailure(r interface{}) Status {
	var cause error
	switch v := r.(type) {
	case error:
		cause = errors.WithStack(v)
	default:
		cause = errors.Errorf("panic: %v", v)
	}
	raised := Raise("resource", cause.Error())
	raised.Payload.Ctx.errVal.Cause = cause
	raised.Flags &^= FlagRaised
	return eng.Throw(WordCell(eng.errorSym, nil), raised)
}
