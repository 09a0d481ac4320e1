// Package engine is the shared lifecycle for configurable peripherals.
//
// A driver type declares its settings schema once and installs one callback
// per field into a Table shared by every instance. Each Engine instance keeps
// its own field values, mandatory set and Status. Initialize checks that the
// mandatory fields are set and then runs the callbacks in label order; the
// first failing callback stops the pass and leaves the engine in StatusError.
//
// Everything here assumes a single execution context: nothing is locked.
package engine

import (
	"strconv"

	"periphkit-go/errcode"
	"periphkit-go/periph/settings"
	"periphkit-go/x/fmtx"
)

// Status is the lifecycle state of a peripheral. Drivers define their own
// fault codes starting at StatusDriver.
type Status uint8

const (
	StatusReset Status = iota
	StatusReady
	StatusError

	StatusDriver Status = 16
)

func (s Status) String() string {
	switch s {
	case StatusReset:
		return "reset"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Peripheral is the capability every engine-backed driver exposes.
type Peripheral interface {
	Initialize(checkMandatory bool, retries int) error
	Status() Status
	IsReady() bool
}

// Driver describes one driver type: its schema and its callback table.
type Driver[L settings.Label, D any] struct {
	name   string
	schema *settings.Schema[L]
	table  *Table[L, D]

	// Logf, when set, receives one line per failed initialization pass.
	Logf func(format string, args ...any)
	// Settle, when set, runs before every retry of Initialize (attempt >= 1).
	Settle func(attempt int)
}

// Println is a Logf writing to the console.
func Println(format string, args ...any) { println(fmtx.Sprintf(format, args...)) }

func NewDriver[L settings.Label, D any](name string, s *settings.Schema[L]) *Driver[L, D] {
	return &Driver[L, D]{name: name, schema: s}
}

func (d *Driver[L, D]) Name() string                 { return d.name }
func (d *Driver[L, D]) Schema() *settings.Schema[L] { return d.schema }

// Table returns the installed callback table, or nil before the first
// instance was built.
func (d *Driver[L, D]) Table() *Table[L, D] { return d.table }

// Install builds the callback table on the first call. Later calls return
// the existing table and do not run setup.
func (d *Driver[L, D]) Install(setup func(t *Table[L, D])) *Table[L, D] {
	if d.table != nil {
		return d.table
	}
	d.schema.Seal()
	t := &Table[L, D]{schema: d.schema, fns: make([]Callback[L, D], d.schema.Len())}
	setup(t)
	for i, fn := range t.fns {
		if fn == nil {
			panic("engine: " + d.name + " has no callback for " + d.schema.FieldName(L(i)))
		}
	}
	t.sealed = true
	d.table = t
	return t
}

func (d *Driver[L, D]) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// Callback programs one field into hardware.
type Callback[L settings.Label, D any] func(value any, e *Engine[L, D]) error

// Table holds one callback per label, aligned by position.
type Table[L settings.Label, D any] struct {
	schema *settings.Schema[L]
	fns    []Callback[L, D]
	sealed bool
}

// Bind installs the callback of one field. It may only be called from the
// setup function passed to Install, once per field.
func Bind[L settings.Label, T comparable, D any](t *Table[L, D], f settings.Field[L, T], fn func(v T, e *Engine[L, D]) error) {
	i := int(f.Label())
	if t.sealed {
		panic("engine: callback table is sealed")
	}
	if t.fns[i] != nil {
		panic("engine: callback bound twice for " + t.schema.FieldName(f.Label()))
	}
	t.fns[i] = func(v any, e *Engine[L, D]) error { return fn(v.(T), e) }
}

// Engine is one peripheral instance's settings and status.
type Engine[L settings.Label, D any] struct {
	driver    *Driver[L, D]
	table     *Table[L, D]
	dev       D
	values    *settings.Container[L]
	mandatory []bool
	status    Status
	failed    int
}

// New builds an instance of a driver type. setup installs the shared table
// on the first call for that driver and is ignored afterwards.
func New[L settings.Label, D any](d *Driver[L, D], dev D, setup func(t *Table[L, D])) *Engine[L, D] {
	t := d.Install(setup)
	return &Engine[L, D]{
		driver:    d,
		table:     t,
		dev:       dev,
		values:    settings.New(d.schema),
		mandatory: make([]bool, d.schema.Len()),
		failed:    -1,
	}
}

func (e *Engine[L, D]) Driver() *Driver[L, D]             { return e.driver }
func (e *Engine[L, D]) Table() *Table[L, D]               { return e.table }
func (e *Engine[L, D]) Device() D                         { return e.dev }
func (e *Engine[L, D]) Settings() *settings.Container[L] { return e.values }
func (e *Engine[L, D]) Status() Status                    { return e.status }

// SetStatus lets a driver record a driver-specific code.
func (e *Engine[L, D]) SetStatus(s Status) { e.status = s }

// IsResetOrReady reports whether the engine accepts new configuration.
func (e *Engine[L, D]) IsResetOrReady() bool {
	return e.status == StatusReset || e.status == StatusReady
}

func (e *Engine[L, D]) IsReady() bool { return e.status == StatusReady }

// Get returns the current value of a field.
func Get[L settings.Label, T comparable, D any](e *Engine[L, D], f settings.Field[L, T]) T {
	return settings.Get(e.values, f)
}

// Set replaces one field. It is rejected while the engine is in a fault state.
func Set[L settings.Label, T comparable, D any](e *Engine[L, D], f settings.Field[L, T], v T) error {
	if !e.IsResetOrReady() {
		return e.rejected("set_" + e.driver.schema.FieldName(f.Label()))
	}
	settings.Set(e.values, f, v)
	return nil
}

// SetValue replaces one field from an untyped value.
func (e *Engine[L, D]) SetValue(label L, v any) error {
	if !e.IsResetOrReady() {
		return e.rejected("set_value")
	}
	return e.values.SetValue(label, v)
}

// SetAll replaces every field, in label order.
func (e *Engine[L, D]) SetAll(values ...any) error {
	if !e.IsResetOrReady() {
		return e.rejected("set_all")
	}
	return e.values.SetAll(values...)
}

func (e *Engine[L, D]) rejected(op string) error {
	return errcode.New(errcode.NotReadyNotReset, op, e.driver.name+" is "+e.status.String())
}

// SetMandatory adds a label to the mandatory set.
func (e *Engine[L, D]) SetMandatory(label L) {
	if int(label) < len(e.mandatory) {
		e.mandatory[label] = true
	}
}

func (e *Engine[L, D]) IsMandatory(label L) bool {
	return int(label) < len(e.mandatory) && e.mandatory[label]
}

// Missing returns the mandatory labels still holding their sentinel.
func (e *Engine[L, D]) Missing() []L {
	var out []L
	for i, m := range e.mandatory {
		if m && !e.values.IsSet(L(i)) {
			out = append(out, L(i))
		}
	}
	return out
}

// FailedField returns the label whose callback failed the last pass.
func (e *Engine[L, D]) FailedField() (L, bool) {
	if e.failed < 0 {
		return 0, false
	}
	return L(e.failed), true
}

// Initialize validates the mandatory fields and applies every field through
// its callback, in label order.
//
// A missing mandatory field fails immediately with MissingArgument and
// leaves the status untouched. A failing callback stops the pass, sets
// StatusError and returns FieldFailed wrapping the callback's error; writes
// already made are not rolled back. With retries > 0 a failed pass is
// repeated up to that many more times.
func (e *Engine[L, D]) Initialize(checkMandatory bool, retries int) error {
	name := e.driver.name
	if checkMandatory {
		if miss := e.Missing(); len(miss) > 0 {
			return errcode.New(errcode.MissingArgument, "initialize",
				name+"."+e.driver.schema.FieldName(miss[0]))
		}
	}
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 && e.driver.Settle != nil {
			e.driver.Settle(attempt)
		}
		if err = e.apply(); err == nil {
			e.status = StatusReady
			return nil
		}
		e.status = StatusError
		e.driver.logf("[%s] init attempt %d: %v", name, attempt+1, err)
	}
	return err
}

func (e *Engine[L, D]) apply() error {
	e.failed = -1
	for i, fn := range e.table.fns {
		label := L(i)
		if err := fn(e.values.Value(label), e); err != nil {
			e.failed = i
			return &errcode.E{
				C:   errcode.FieldFailed,
				Op:  "initialize",
				Msg: e.driver.name + "." + e.driver.schema.FieldName(label),
				Err: err,
			}
		}
	}
	return nil
}

// CopyFrom copies the field values and mandatory set of src. Status is not
// copied.
func (e *Engine[L, D]) CopyFrom(src *Engine[L, D]) {
	e.values.CopyFrom(src.values)
	copy(e.mandatory, src.mandatory)
}

// Reset returns the engine to StatusReset without touching hardware.
func (e *Engine[L, D]) Reset() {
	e.status = StatusReset
	e.failed = -1
}
