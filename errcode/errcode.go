package errcode

// Code is a stable, machine-readable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"

	// Configuration
	MissingArgument        Code = "missing_argument"
	ArgumentTypeNotAllowed Code = "argument_type_not_allowed"

	// Resource ownership
	AlreadyAllocated      Code = "already_allocated"
	HandlerNotAllocated   Code = "handler_not_allocated"
	ReadingDeallocatedPin Code = "reading_deallocated_pin"

	// Lifecycle state
	NotReady         Code = "not_ready"
	NotReadyNotReset Code = "not_ready_not_reset"
	NotInputMode     Code = "not_input_mode"
	ModeNotAllowed   Code = "mode_not_allowed"

	// Hardware application
	FieldFailed  Code = "field_failed"
	PLLNotLocked Code = "pll_not_locked"

	UnknownPort       Code = "unknown_port"
	UnknownPin        Code = "unknown_pin"
	UnknownPeripheral Code = "unknown_peripheral"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E without a cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around a cause.
func Wrap(c Code, op string, err error) *E { return &E{C: c, Op: op, Err: err} }

// Of extracts a Code from an error, defaulting to Error.
// The outermost code wins when wrappers are nested.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	for e := err; e != nil; {
		switch x := e.(type) {
		case Code:
			return x
		case coder:
			return x.Code()
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return Error
}

// Cause returns the innermost Code carried by err, or Error if none.
// Useful when a field callback's own code is wrapped in FieldFailed.
func Cause(err error) Code {
	c := Error
	if err == nil {
		return OK
	}
	for e := err; e != nil; {
		switch x := e.(type) {
		case Code:
			return x
		case *E:
			c = x.C
			e = x.Err
			continue
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return c
}
