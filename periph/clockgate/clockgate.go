// Package clockgate sets and clears peripheral clock-gate bits, one Bridge
// per bus group.
package clockgate

import (
	"strconv"

	"periphkit-go/errcode"
	"periphkit-go/periph/regs"
	"periphkit-go/x/mathx"
)

// Bridge owns the enable, low-power-enable and reset registers of one bus.
// Indices are bit positions local to that bus.
type Bridge struct {
	bus  regs.Bus
	regs regs.BusBlock
}

func (b *Bridge) Bus() regs.Bus { return b.bus }

// Enable sets the peripheral's bit in the enable register, or in the
// low-power enable register when lowPower is true. Re-enabling is a no-op.
func (b *Bridge) Enable(index uint8, lowPower bool) error {
	if lowPower {
		return b.EnableLowPower(index)
	}
	return b.set(index, b.regs.ENR, "enable")
}

// Disable clears exactly the peripheral's enable bit.
func (b *Bridge) Disable(index uint8) error {
	return b.clear(index, b.regs.ENR, "disable")
}

func (b *Bridge) EnableLowPower(index uint8) error {
	return b.set(index, b.regs.LPENR, "enable_low_power")
}

func (b *Bridge) DisableLowPower(index uint8) error {
	return b.clear(index, b.regs.LPENR, "disable_low_power")
}

// Reset sets the peripheral's reset bit. Releasing the peripheral from reset
// (clearing the bit again) is left to the caller.
func (b *Bridge) Reset(index uint8) error {
	return b.set(index, b.regs.RSTR, "reset")
}

// IsEnabled reports whether the peripheral's enable bit is set.
func (b *Bridge) IsEnabled(index uint8) bool {
	return index < 32 && b.regs.ENR.HasBits(mathx.Bit(index))
}

func (b *Bridge) set(index uint8, r regs.Register, op string) error {
	if err := b.check(index, op); err != nil {
		return err
	}
	r.SetBits(mathx.Bit(index))
	return nil
}

func (b *Bridge) clear(index uint8, r regs.Register, op string) error {
	if err := b.check(index, op); err != nil {
		return err
	}
	r.ClearBits(mathx.Bit(index))
	return nil
}

func (b *Bridge) check(index uint8, op string) error {
	if index >= 32 {
		return errcode.New(errcode.InvalidParams, op, b.bus.String()+" index "+strconv.Itoa(int(index)))
	}
	return nil
}

// Gates hands out one Bridge per bus group, created on first use and kept
// for the lifetime of the Gates value.
type Gates struct {
	m       regs.Map
	bridges [regs.NumBuses]*Bridge
}

func New(m regs.Map) *Gates { return &Gates{m: m} }

// Bridge returns the bridge of a bus group.
func (g *Gates) Bridge(bus regs.Bus) (*Bridge, error) {
	if bus >= regs.NumBuses {
		return nil, errcode.New(errcode.InvalidParams, "bridge", "bus "+strconv.Itoa(int(bus)))
	}
	if g.bridges[bus] == nil {
		g.bridges[bus] = &Bridge{bus: bus, regs: g.m.RCC().Buses[bus]}
	}
	return g.bridges[bus], nil
}
