package regs

import "tinygo.org/x/drivers"

// I2CMap exposes a register file that lives behind an I2C memory-access
// bridge (a debug probe or a companion MCU running a register server).
//
// Wire format, little-endian throughout:
//
//	read:  write [addr:4]          then read [value:4]
//	write: write [addr:4][value:4]
//
// Register methods cannot report failures, so the first bus error is kept
// and returned by Err; reads after a failure yield 0.
type I2CMap struct {
	*layout
	bus  drivers.I2C
	addr uint16
	w    [8]byte
	r    [4]byte
	err  error
}

var _ Map = (*I2CMap)(nil)

// NewI2CMap maps the STM32F411 register layout onto the bridge at addr.
func NewI2CMap(bus drivers.I2C, addr uint16, ports ...uint8) *I2CMap {
	if len(ports) == 0 {
		ports = STM32F411Ports
	}
	m := &I2CMap{bus: bus, addr: addr}
	m.layout = buildLayout(ports, func(a uint32) Register {
		return &i2cReg{m: m, addr: a}
	})
	return m
}

// Err returns the first bus error seen, if any.
func (m *I2CMap) Err() error { return m.err }

func (m *I2CMap) read(a uint32) uint32 {
	putU32(m.w[:4], a)
	if err := m.bus.Tx(m.addr, m.w[:4], m.r[:]); err != nil {
		m.fail(err)
		return 0
	}
	return uint32(m.r[0]) | uint32(m.r[1])<<8 | uint32(m.r[2])<<16 | uint32(m.r[3])<<24
}

func (m *I2CMap) write(a, v uint32) {
	putU32(m.w[:4], a)
	putU32(m.w[4:], v)
	if err := m.bus.Tx(m.addr, m.w[:], nil); err != nil {
		m.fail(err)
	}
}

func (m *I2CMap) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

type i2cReg struct {
	m    *I2CMap
	addr uint32
}

func (r *i2cReg) Get() uint32              { return r.m.read(r.addr) }
func (r *i2cReg) Set(v uint32)             { r.m.write(r.addr, v) }
func (r *i2cReg) SetBits(mask uint32)      { r.Set(r.Get() | mask) }
func (r *i2cReg) ClearBits(mask uint32)    { r.Set(r.Get() &^ mask) }
func (r *i2cReg) HasBits(mask uint32) bool { return r.Get()&mask == mask }
