// Package gpio is the STM32F4 GPIO pin driver.
//
// An IOPin owns exactly one (port, pin) pair in an AllocationTable from the
// moment both are set until it is closed or moved from. Configuration goes
// through the engine: fields are queued by the setters and written to the
// port registers by Initialize, in label order.
package gpio

import (
	"periphkit-go/errcode"
	"periphkit-go/periph/engine"
	"periphkit-go/periph/regs"
	"periphkit-go/periph/settings"
)

type Label uint8

const (
	LabelPort Label = iota
	LabelPin
	LabelMode
	LabelPull
	LabelOutputType
	LabelSpeed
	LabelState
	labelCount
)

var (
	schema = settings.NewSchema[Label]("gpio", labelCount)

	FieldPort       = settings.Declare(schema, LabelPort, "port", PortNone)
	FieldPin        = settings.Declare(schema, LabelPin, "pin", PinNone)
	FieldMode       = settings.Declare(schema, LabelMode, "mode", ModeNone)
	FieldPull       = settings.Declare(schema, LabelPull, "pull", PullUnset)
	FieldOutputType = settings.Declare(schema, LabelOutputType, "output_type", OutputTypeUnset)
	FieldSpeed      = settings.Declare(schema, LabelSpeed, "output_speed", SpeedUnset)
	FieldState      = settings.Declare(schema, LabelState, "state", StateUnset)

	driver = engine.NewDriver[Label, *IOPin]("gpio", schema)
)

func init() { driver.Logf = engine.Println }

func setup(t *engine.Table[Label, *IOPin]) {
	engine.Bind(t, FieldPort, applyPort)
	engine.Bind(t, FieldPin, applyPin)
	engine.Bind(t, FieldMode, applyMode)
	engine.Bind(t, FieldPull, applyPull)
	engine.Bind(t, FieldOutputType, applyOutputType)
	engine.Bind(t, FieldSpeed, applySpeed)
	engine.Bind(t, FieldState, applyState)
}

// IOPin is one GPIO pin.
type IOPin struct {
	table *AllocationTable
	m     regs.Map
	e     *engine.Engine[Label, *IOPin]
	block *regs.GPIOBlock

	owns    bool // holds the allocation of the configured pair
	closed  bool
	applied Mode // last mode written to MODER
}

var _ engine.Peripheral = (*IOPin)(nil)

// New returns an unconfigured pin. Port and pin are mandatory.
func New(table *AllocationTable, m regs.Map) *IOPin {
	p := &IOPin{table: table, m: m}
	p.e = engine.New(driver, p, setup)
	p.e.SetMandatory(LabelPort)
	p.e.SetMandatory(LabelPin)
	return p
}

// Table returns the allocation table the pin claims from.
func (p *IOPin) Table() *AllocationTable { return p.table }

func (p *IOPin) Port() Port             { return engine.Get(p.e, FieldPort) }
func (p *IOPin) Pin() Pin               { return engine.Get(p.e, FieldPin) }
func (p *IOPin) Mode() Mode             { return engine.Get(p.e, FieldMode) }
func (p *IOPin) Pull() Pull             { return engine.Get(p.e, FieldPull) }
func (p *IOPin) OutputType() OutputType { return engine.Get(p.e, FieldOutputType) }
func (p *IOPin) Speed() Speed           { return engine.Get(p.e, FieldSpeed) }
func (p *IOPin) State() State           { return engine.Get(p.e, FieldState) }

func (p *IOPin) Status() engine.Status { return p.e.Status() }
func (p *IOPin) IsReady() bool         { return p.e.IsReady() }
func (p *IOPin) IsClosed() bool        { return p.closed }

// Name renders the pin as "PA5".
func (p *IOPin) Name() string { return pairName(p.Port(), p.Pin()) }

func (p *IOPin) usable(op string) error {
	if p.closed {
		return errcode.New(errcode.HandlerNotAllocated, op, "pin is closed")
	}
	if !p.e.IsResetOrReady() {
		return errcode.New(errcode.NotReadyNotReset, op, p.e.Status().String())
	}
	return nil
}

// SetPort selects the port, claiming the resulting pair when the pin is
// already set.
func (p *IOPin) SetPort(port Port) error {
	if err := p.usable("set_port"); err != nil {
		return err
	}
	if err := p.reallocate(port, p.Pin()); err != nil {
		return err
	}
	return engine.Set(p.e, FieldPort, port)
}

// SetPin selects the pin number, claiming the resulting pair when the port
// is already set.
func (p *IOPin) SetPin(pin Pin) error {
	if err := p.usable("set_pin"); err != nil {
		return err
	}
	if pin != PinNone && pin > 15 {
		return errcode.New(errcode.UnknownPin, "set_pin", pairName(p.Port(), pin))
	}
	if err := p.reallocate(p.Port(), pin); err != nil {
		return err
	}
	return engine.Set(p.e, FieldPin, pin)
}

// reallocate moves ownership to (port, pin). The old pair is released only
// once the new one is claimed.
func (p *IOPin) reallocate(port Port, pin Pin) error {
	oldPort, oldPin := p.Port(), p.Pin()
	if p.owns && port == oldPort && pin == oldPin {
		return nil
	}
	if port != PortNone && pin != PinNone {
		if err := p.table.claim(port, pin); err != nil {
			return err
		}
	}
	if p.owns {
		p.table.release(oldPort, oldPin)
	}
	p.owns = port != PortNone && pin != PinNone
	// A new pair needs a fresh block lookup and a new Initialize.
	if port != oldPort {
		p.block = nil
	}
	p.applied = ModeNone
	if p.e.IsReady() {
		p.e.Reset()
	}
	return nil
}

func (p *IOPin) SetMode(m Mode) error {
	if err := p.usable("set_mode"); err != nil {
		return err
	}
	return engine.Set(p.e, FieldMode, m)
}

// SetPUPD selects the pull-up/pull-down resistor.
func (p *IOPin) SetPUPD(pull Pull) error {
	if err := p.usable("set_pupd"); err != nil {
		return err
	}
	return engine.Set(p.e, FieldPull, pull)
}

func (p *IOPin) SetOutputType(t OutputType) error {
	if err := p.usable("set_output_type"); err != nil {
		return err
	}
	return engine.Set(p.e, FieldOutputType, t)
}

func (p *IOPin) SetOutputSpeed(s Speed) error {
	if err := p.usable("set_output_speed"); err != nil {
		return err
	}
	return engine.Set(p.e, FieldSpeed, s)
}

// SetState queues the output level applied by Initialize.
func (p *IOPin) SetState(s State) error {
	if err := p.usable("set_state"); err != nil {
		return err
	}
	return engine.Set(p.e, FieldState, s)
}

// SetField sets one field from an untyped value, for table-driven setup.
// Port and pin go through the allocation check.
func (p *IOPin) SetField(label Label, v any) error {
	switch label {
	case LabelPort:
		port, ok := v.(Port)
		if !ok {
			return errcode.New(errcode.ArgumentTypeNotAllowed, "set_field", "port")
		}
		return p.SetPort(port)
	case LabelPin:
		pin, ok := v.(Pin)
		if !ok {
			return errcode.New(errcode.ArgumentTypeNotAllowed, "set_field", "pin")
		}
		return p.SetPin(pin)
	}
	if err := p.usable("set_field"); err != nil {
		return err
	}
	return p.e.SetValue(label, v)
}

func (p *IOPin) SetInputMode() error           { return p.SetMode(ModeInput) }
func (p *IOPin) SetOutputMode() error          { return p.SetMode(ModeOutput) }
func (p *IOPin) SetPullup() error              { return p.SetPUPD(PullUp) }
func (p *IOPin) SetPulldown() error            { return p.SetPUPD(PullDown) }
func (p *IOPin) SetPullPushOutputType() error  { return p.SetOutputType(PushPull) }
func (p *IOPin) SetOpenDrainOutputType() error { return p.SetOutputType(OpenDrain) }

// Initialize writes every queued field to the port registers. On failure
// the pin's status is the IOPin code of the cause.
func (p *IOPin) Initialize(checkMandatory bool, retries int) error {
	if p.closed {
		return errcode.New(errcode.HandlerNotAllocated, "initialize", "pin is closed")
	}
	err := p.e.Initialize(checkMandatory, retries)
	if err != nil && p.e.Status() == engine.StatusError {
		if s, ok := StatusOf(err); ok {
			p.e.SetStatus(s)
		}
	}
	return err
}

func (p *IOPin) ready(op string) error {
	if p.closed {
		return errcode.New(errcode.HandlerNotAllocated, op, "pin is closed")
	}
	if !p.owns {
		return errcode.New(errcode.HandlerNotAllocated, op, p.Name()+" is not allocated")
	}
	if !p.e.IsReady() || p.block == nil {
		return errcode.New(errcode.NotReady, op, p.Name()+" is "+p.e.Status().String())
	}
	return nil
}

// Write drives the output level through BSRR.
func (p *IOPin) Write(high bool) error {
	if err := p.ready("write"); err != nil {
		return err
	}
	p.drive(StateOf(high))
	return nil
}

// Toggle inverts the output latch.
func (p *IOPin) Toggle() error {
	if err := p.ready("toggle"); err != nil {
		return err
	}
	p.drive(StateOf(!p.block.ODR.HasBits(1 << p.Pin())))
	return nil
}

func (p *IOPin) drive(s State) {
	settings.Set(p.e.Settings(), FieldState, s)
	n := uint32(p.Pin())
	if s == High {
		p.block.BSRR.Set(1 << n)
	} else {
		p.block.BSRR.Set(1 << (n + 16))
	}
}

// Read returns the input level. The pin must be Ready and its last applied
// mode must be input; a mode queued since Initialize does not count.
func (p *IOPin) Read() (bool, error) {
	if p.closed || !p.owns {
		return false, errcode.New(errcode.ReadingDeallocatedPin, "read", p.Name()+" is not allocated")
	}
	if err := p.ready("read"); err != nil {
		return false, err
	}
	if m := p.applied; m != ModeInput && m != ModeNone {
		return false, errcode.New(errcode.NotInputMode, "read", p.Name()+" is "+m.String())
	}
	return p.block.IDR.HasBits(1 << p.Pin()), nil
}

// Reset returns the pin's registers to their reset values and clears the
// queued mode, pull, output type, speed and state. Port, pin and the
// allocation are kept. Without force the pin must be Ready.
func (p *IOPin) Reset(force bool) error {
	if !force {
		if err := p.ready("reset"); err != nil {
			return err
		}
	} else if p.closed || !p.owns {
		return errcode.New(errcode.HandlerNotAllocated, "reset", p.Name()+" is not allocated")
	}
	if b := p.block; b != nil {
		n := uint8(p.Pin())
		regs.ReplaceBits(b.MODER, 0, 2, n*2)
		regs.ReplaceBits(b.OTYPER, 0, 1, n)
		regs.ReplaceBits(b.OSPEEDR, 0, 2, n*2)
		regs.ReplaceBits(b.PUPDR, 0, 2, n*2)
		b.BSRR.Set(1 << (uint32(n) + 16))
		p.applied = ModeNone
	}
	c := p.e.Settings()
	settings.Set(c, FieldMode, ModeNone)
	settings.Set(c, FieldPull, PullUnset)
	settings.Set(c, FieldOutputType, OutputTypeUnset)
	settings.Set(c, FieldSpeed, SpeedUnset)
	settings.Set(c, FieldState, StateUnset)
	p.e.Reset()
	return nil
}

// Close releases the pin's allocation. Registers are left as they are.
// Close is idempotent.
func (p *IOPin) Close() error {
	if p.closed {
		return nil
	}
	if p.owns {
		p.table.release(p.Port(), p.Pin())
	}
	p.owns = false
	p.closed = true
	p.block = nil
	p.e.Reset()
	return nil
}

// Clone returns a new pin with p's settings. It fails while p owns the
// same pair.
func (p *IOPin) Clone() (*IOPin, error) { return p.cloneAs(p.Port(), p.Pin()) }

// CloneWithPin copies p's settings onto another pin of the same port.
func (p *IOPin) CloneWithPin(pin Pin) (*IOPin, error) { return p.cloneAs(p.Port(), pin) }

// CloneWithPort copies p's settings onto the same pin of another port.
func (p *IOPin) CloneWithPort(port Port) (*IOPin, error) { return p.cloneAs(port, p.Pin()) }

func (p *IOPin) cloneAs(port Port, pin Pin) (*IOPin, error) {
	q := New(p.table, p.m)
	q.e.CopyFrom(p.e)
	c := q.e.Settings()
	settings.Set(c, FieldPort, PortNone)
	settings.Set(c, FieldPin, PinNone)
	if err := q.SetPort(port); err != nil {
		return nil, err
	}
	if err := q.SetPin(pin); err != nil {
		return nil, err
	}
	return q, nil
}

// Move transfers p's settings, allocation and status to a new pin. p is
// closed afterwards.
func (p *IOPin) Move() (*IOPin, error) {
	if p.closed {
		return nil, errcode.New(errcode.HandlerNotAllocated, "move", "pin is closed")
	}
	q := New(p.table, p.m)
	q.e.CopyFrom(p.e)
	q.e.SetStatus(p.e.Status())
	q.owns, q.block, q.applied = p.owns, p.block, p.applied
	p.owns = false
	p.closed = true
	p.block = nil
	p.e.Reset()
	return q, nil
}

func applyPort(v Port, e *engine.Engine[Label, *IOPin]) error {
	p := e.Device()
	b, ok := p.m.GPIO(uint8(v))
	if v == PortNone || !ok {
		return errcode.New(errcode.HandlerNotAllocated, "port", "GPIO"+v.String())
	}
	p.block = b
	return nil
}

func applyPin(v Pin, e *engine.Engine[Label, *IOPin]) error {
	if v > 15 {
		return errcode.New(errcode.UnknownPin, "pin", "pin out of range")
	}
	if !e.Device().owns {
		return errcode.New(errcode.HandlerNotAllocated, "pin", "pin is not allocated")
	}
	return nil
}

// blockOf returns the register block and pin number for field callbacks.
// The port callback runs first, so the block is resolved by then.
func blockOf(e *engine.Engine[Label, *IOPin]) (*regs.GPIOBlock, uint8, error) {
	b := e.Device().block
	if b == nil {
		return nil, 0, errcode.New(errcode.HandlerNotAllocated, "gpio", "port block not resolved")
	}
	return b, uint8(engine.Get(e, FieldPin)), nil
}

func applyMode(v Mode, e *engine.Engine[Label, *IOPin]) error {
	if v == ModeNone {
		return nil
	}
	if v > ModeAnalog {
		return errcode.New(errcode.InvalidParams, "mode", v.String())
	}
	b, n, err := blockOf(e)
	if err != nil {
		return err
	}
	pull := engine.Get(e, FieldPull)
	if v == ModeAnalog && (pull == PullUp || pull == PullDown) {
		return errcode.New(errcode.ModeNotAllowed, "mode", "analog pin with pull "+pull.String())
	}
	regs.ReplaceBits(b.MODER, uint32(v), 2, n*2)
	e.Device().applied = v
	if (v == ModeInput || v == ModeAnalog) && pull == PullUnset {
		regs.ReplaceBits(b.PUPDR, uint32(PullNone), 2, n*2)
	}
	return nil
}

func applyPull(v Pull, e *engine.Engine[Label, *IOPin]) error {
	if v == PullUnset {
		return nil
	}
	if v > PullDown {
		return errcode.New(errcode.InvalidParams, "pull", v.String())
	}
	b, n, err := blockOf(e)
	if err != nil {
		return err
	}
	regs.ReplaceBits(b.PUPDR, uint32(v), 2, n*2)
	return nil
}

func applyOutputType(v OutputType, e *engine.Engine[Label, *IOPin]) error {
	if v == OutputTypeUnset {
		return nil
	}
	if v > OpenDrain {
		return errcode.New(errcode.InvalidParams, "output_type", v.String())
	}
	b, n, err := blockOf(e)
	if err != nil {
		return err
	}
	regs.ReplaceBits(b.OTYPER, uint32(v), 1, n)
	return nil
}

func applySpeed(v Speed, e *engine.Engine[Label, *IOPin]) error {
	if v == SpeedUnset {
		return nil
	}
	if v > SpeedHigh {
		return errcode.New(errcode.InvalidParams, "output_speed", v.String())
	}
	b, n, err := blockOf(e)
	if err != nil {
		return err
	}
	regs.ReplaceBits(b.OSPEEDR, uint32(v), 2, n*2)
	return nil
}

func applyState(v State, e *engine.Engine[Label, *IOPin]) error {
	switch v {
	case StateUnset:
		return nil
	case Low, High:
	default:
		return errcode.New(errcode.InvalidParams, "state", "bad level")
	}
	b, n, err := blockOf(e)
	if err != nil {
		return err
	}
	if v == High {
		b.BSRR.Set(1 << n)
	} else {
		b.BSRR.Set(1 << (uint32(n) + 16))
	}
	return nil
}
