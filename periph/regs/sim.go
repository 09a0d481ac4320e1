package regs

// Cell is a plain in-memory register.
type Cell struct {
	v      uint32
	writes *int
}

// NewCell returns a standalone register holding v.
func NewCell(v uint32) *Cell { return &Cell{v: v} }

func (c *Cell) Get() uint32              { return c.v }
func (c *Cell) HasBits(mask uint32) bool { return c.v&mask == mask }
func (c *Cell) Set(v uint32)             { c.v = v; c.count() }
func (c *Cell) SetBits(mask uint32)      { c.v |= mask; c.count() }
func (c *Cell) ClearBits(mask uint32)    { c.v &^= mask; c.count() }

func (c *Cell) count() {
	if c.writes != nil {
		*c.writes++
	}
}

// bsrr turns set/reset writes into ODR updates; it always reads as zero.
type bsrr struct{ odr *Cell }

func (b *bsrr) Get() uint32         { return 0 }
func (b *bsrr) HasBits(uint32) bool { return false }
// Set wins over reset when both bits of a pin are written.
func (b *bsrr) Set(v uint32) {
	b.odr.ClearBits(v >> 16)
	b.odr.SetBits(v & 0xFFFF)
}
func (b *bsrr) SetBits(mask uint32) { b.Set(mask) }
func (b *bsrr) ClearBits(uint32)    {}

// idr reads the output latch for output pins and the driven level otherwise.
type idr struct {
	moder  *Cell
	odr    *Cell
	driven uint32
}

func (r *idr) Get() uint32 {
	var v uint32
	for pin := uint8(0); pin < 16; pin++ {
		src := r.driven
		if ReadBits(r.moder, 2, pin*2) == 1 {
			src = r.odr.v
		}
		v |= src & (1 << pin)
	}
	return v
}
func (r *idr) HasBits(mask uint32) bool { return r.Get()&mask == mask }
func (r *idr) Set(uint32)               {}
func (r *idr) SetBits(uint32)           {}
func (r *idr) ClearBits(uint32)         {}

var oscillators = [3]struct{ on, rdy uint32 }{
	{CRHSION, CRHSIRDY},
	{CRHSEON, CRHSERDY},
	{CRPLLON, CRPLLRDY},
}

const crReadyBits = CRHSIRDY | CRHSERDY | CRPLLRDY

// oscCR raises each oscillator's ready flag once it has been polled `delay`
// times with its ON bit set. Ready flags are read-only.
type oscCR struct {
	v      uint32
	delay  int
	polls  [3]int
	writes *int
}

func (c *oscCR) settle() {
	for i, o := range oscillators {
		if c.v&o.on == 0 || c.v&o.rdy != 0 {
			continue
		}
		if c.polls[i] >= c.delay {
			c.v |= o.rdy
		} else {
			c.polls[i]++
		}
	}
}

func (c *oscCR) Get() uint32              { c.settle(); return c.v }
func (c *oscCR) HasBits(mask uint32) bool { return c.Get()&mask == mask }

func (c *oscCR) Set(v uint32) {
	c.v = v&^crReadyBits | c.v&crReadyBits
	for i, o := range oscillators {
		if c.v&o.on == 0 {
			c.v &^= o.rdy
			c.polls[i] = 0
		}
	}
	*c.writes++
}
func (c *oscCR) SetBits(mask uint32)   { c.Set(c.v | mask) }
func (c *oscCR) ClearBits(mask uint32) { c.Set(c.v &^ mask) }

// cfgr copies SW into SWS on every write; the simulated switch completes at once.
type cfgr struct{ Cell }

func (c *cfgr) Set(v uint32) {
	c.Cell.Set(v&^(3<<CFGRSWSPos) | (v>>CFGRSWPos&3)<<CFGRSWSPos)
}
func (c *cfgr) SetBits(mask uint32)   { c.Set(c.v | mask) }
func (c *cfgr) ClearBits(mask uint32) { c.Set(c.v &^ mask) }

// SimMap is an in-memory STM32F411 register map for host runs and tests.
type SimMap struct {
	*layout
	cr     *oscCR
	idr    [8]*idr
	writes int
}

var _ Map = (*SimMap)(nil)

// NewSimMap builds a simulated map with the given port indices, or all
// STM32F411 ports when none are given.
func NewSimMap(ports ...uint8) *SimMap {
	if len(ports) == 0 {
		ports = STM32F411Ports
	}
	m := &SimMap{}
	m.layout = buildLayout(ports, func(addr uint32) Register {
		return &Cell{writes: &m.writes}
	})
	m.cr = &oscCR{v: CRReset, writes: &m.writes}
	m.rcc.CR = m.cr
	m.rcc.CFGR = &cfgr{Cell{writes: &m.writes}}
	m.rcc.PLLCFGR.(*Cell).v = PLLCFGRReset
	for _, p := range ports {
		b := m.gpio[p]
		odr := b.ODR.(*Cell)
		m.idr[p] = &idr{moder: b.MODER.(*Cell), odr: odr}
		b.IDR = m.idr[p]
		b.BSRR = &bsrr{odr: odr}
	}
	for i, e := range m.entries {
		switch {
		case e.Addr == RCCBase+OffCR:
			m.entries[i].Reg = m.rcc.CR
		case e.Addr == RCCBase+OffCFGR:
			m.entries[i].Reg = m.rcc.CFGR
		case e.Addr >= GPIOABase && e.Addr < RCCBase:
			p := uint8((e.Addr - GPIOABase) / gpioStep)
			switch e.Addr - GPIOBase(p) {
			case OffIDR:
				m.entries[i].Reg = m.gpio[p].IDR
			case OffBSRR:
				m.entries[i].Reg = m.gpio[p].BSRR
			}
		}
	}
	return m
}

// SetLockDelay sets how many polls an oscillator stays not-ready after its
// ON bit is set.
func (m *SimMap) SetLockDelay(polls int) { m.cr.delay = polls }

// Drive sets the externally driven level of an input pin.
func (m *SimMap) Drive(port, pin uint8, high bool) {
	r := m.idr[port]
	if r == nil || pin > 15 {
		return
	}
	if high {
		r.driven |= 1 << pin
	} else {
		r.driven &^= 1 << pin
	}
}

// Writes returns the number of register writes performed so far.
func (m *SimMap) Writes() int { return m.writes }
