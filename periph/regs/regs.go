// Package regs is the register-access layer used by peripheral drivers.
//
// Drivers never touch addresses directly; they receive a Map and program the
// Register values it hands out. On TinyGo stm32f4 builds Hardware returns the
// memory-mapped registers. On the host, NewSimMap gives an in-memory register
// file with just enough behaviour (BSRR, IDR, oscillator ready flags) to run
// drivers under test, and NewI2CMap drives a register file on an I2C bridge.
package regs

import "periphkit-go/x/mathx"

// Register is a 32-bit peripheral register. *volatile.Register32 satisfies it.
type Register interface {
	Get() uint32
	Set(value uint32)
	SetBits(mask uint32)
	ClearBits(mask uint32)
	HasBits(mask uint32) bool
}

// ReplaceBits writes value into the width-bit field of r at pos, leaving the
// rest of the register untouched.
func ReplaceBits(r Register, value uint32, width, pos uint8) {
	mask := mathx.FieldMask(width) << pos
	r.Set(r.Get()&^mask | (value<<pos)&mask)
}

// ReadBits returns the width-bit field of r at pos.
func ReadBits(r Register, width, pos uint8) uint32 {
	return mathx.Field(r.Get(), pos, width)
}

// Bus is one clock-gating domain. Peripherals in the same bus share an
// enable, a low-power enable and a reset register.
type Bus uint8

const (
	AHB1 Bus = iota
	AHB2
	APB1
	APB2
	NumBuses
)

func (b Bus) String() string {
	switch b {
	case AHB1:
		return "AHB1"
	case AHB2:
		return "AHB2"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	default:
		return "bus?"
	}
}

// BusBlock is the register set of one bus group.
type BusBlock struct {
	ENR   Register // clock enable
	LPENR Register // clock enable in low-power (sleep) mode
	RSTR  Register // peripheral reset
}

// RCCBlock is the reset and clock control register block.
type RCCBlock struct {
	CR      Register
	PLLCFGR Register
	CFGR    Register
	Buses   [NumBuses]BusBlock
}

// GPIOBlock is one GPIO port's register block.
type GPIOBlock struct {
	MODER   Register
	OTYPER  Register
	OSPEEDR Register
	PUPDR   Register
	IDR     Register
	ODR     Register
	BSRR    Register
}

// Map resolves peripheral identity to register blocks.
type Map interface {
	RCC() *RCCBlock
	// GPIO returns the block of port index 0..7 (A=0 .. H=7), if present.
	GPIO(port uint8) (*GPIOBlock, bool)
}

// Entry names one register of a map, for dumps and diagnostics.
type Entry struct {
	Name string
	Addr uint32
	Reg  Register
}

// Lister is implemented by maps that can enumerate their registers.
type Lister interface {
	Entries() []Entry
}
