package config

import (
	"fmt"

	"periphkit-go/drivers/gpio"
	"periphkit-go/errcode"
	"periphkit-go/periph/clockgate"
	"periphkit-go/periph/rcc"
	"periphkit-go/periph/regs"
	"periphkit-go/x/mathx"
)

const maxClockRetries = 10_000

// Board is a configured board: the clock controller and every planned pin.
type Board struct {
	Name  string
	Clock *rcc.Controller
	pins  map[string]*gpio.IOPin
	order []string
}

// Pin returns a pin by label, or by name ("PA5") when it has no label.
func (b *Board) Pin(key string) (*gpio.IOPin, bool) {
	p, ok := b.pins[key]
	return p, ok
}

// Keys lists the pins in plan order.
func (b *Board) Keys() []string { return append([]string(nil), b.order...) }

// Close releases every pin.
func (b *Board) Close() {
	for _, k := range b.order {
		_ = b.pins[k].Close()
	}
}

// Apply brings up the clock tree and every pin of the plan on m. Pins are
// claimed from table. On error every pin claimed so far is released again.
func Apply(plan *BoardPlan, m regs.Map, table *gpio.AllocationTable) (*Board, error) {
	clk, err := applyClock(plan.Clock, m)
	if err != nil {
		return nil, err
	}
	b := &Board{Name: plan.Board, Clock: clk, pins: make(map[string]*gpio.IOPin)}
	for _, pp := range plan.Pins {
		p, err := applyPin(pp, clk, m, table)
		if err == nil {
			if _, dup := b.pins[pp.Key()]; dup {
				_ = p.Close()
				err = errcode.New(errcode.InvalidParams, "apply", "duplicate pin key "+pp.Key())
			}
		}
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("pin %s: %w", pp.Pin, err)
		}
		b.pins[pp.Key()] = p
		b.order = append(b.order, pp.Key())
	}
	return b, nil
}

func applyClock(cp ClockPlan, m regs.Map) (*rcc.Controller, error) {
	c := rcc.New(m, clockgate.New(m))
	if cp.HSEHz != 0 {
		c.HSEHz = cp.HSEHz
	}
	src := rcc.HSI
	if cp.Source != "" {
		s, err := rcc.ParseSource(cp.Source)
		if err != nil {
			return nil, err
		}
		src = s
	}
	var pll rcc.PLL
	if cp.PLL != nil {
		pll = rcc.PLL{M: cp.PLL.M, N: cp.PLL.N, P: cp.PLL.P, Q: cp.PLL.Q, FromHSE: cp.PLL.FromHSE}
	}
	if err := c.SetAll(src, pll); err != nil {
		return nil, err
	}
	if err := c.Initialize(true, mathx.Clamp(cp.Retries, 0, maxClockRetries)); err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}
	for _, name := range cp.Enable {
		p, ok := rcc.Lookup(name)
		if !ok {
			return nil, errcode.New(errcode.UnknownPeripheral, "enable", name)
		}
		if err := c.Enable(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func applyPin(pp PinPlan, clk *rcc.Controller, m regs.Map, table *gpio.AllocationTable) (*gpio.IOPin, error) {
	port, pin, err := gpio.ParsePinName(pp.Pin)
	if err != nil {
		return nil, err
	}
	mode, err := gpio.ParseMode(pp.Mode)
	if err != nil {
		return nil, err
	}
	pull, err := gpio.ParsePull(pp.Pull)
	if err != nil {
		return nil, err
	}
	otype, err := gpio.ParseOutputType(pp.OutputType)
	if err != nil {
		return nil, err
	}
	speed, err := gpio.ParseSpeed(pp.Speed)
	if err != nil {
		return nil, err
	}
	if err := clk.EnableGPIO(uint8(port)); err != nil {
		return nil, err
	}

	p := gpio.New(table, m)
	steps := []func() error{
		func() error { return p.SetPort(port) },
		func() error { return p.SetPin(pin) },
		func() error { return p.SetMode(mode) },
		func() error { return p.SetPUPD(pull) },
		func() error { return p.SetOutputType(otype) },
		func() error { return p.SetOutputSpeed(speed) },
	}
	if pp.Initial != nil {
		steps = append(steps, func() error { return p.SetState(gpio.StateOf(*pp.Initial)) })
	}
	steps = append(steps, func() error { return p.Initialize(true, 0) })
	for _, step := range steps {
		if err := step(); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	return p, nil
}
