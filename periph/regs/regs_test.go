package regs

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

func TestReplaceAndReadBits(t *testing.T) {
	c := NewCell(0xFFFF_FFFF)
	ReplaceBits(c, 0b01, 2, 10)
	if got := c.Get(); got != 0xFFFF_F7FF {
		t.Fatalf("ReplaceBits: got %#x", got)
	}
	if ReadBits(c, 2, 10) != 0b01 {
		t.Fatalf("ReadBits: got %#b", ReadBits(c, 2, 10))
	}
	// Oversized values are truncated to the field.
	ReplaceBits(c, 0b111, 2, 0)
	if ReadBits(c, 2, 0) != 0b11 || !c.HasBits(1<<2) {
		t.Fatalf("field overflow leaked: %#x", c.Get())
	}
}

func TestSimBSRRUpdatesODR(t *testing.T) {
	m := NewSimMap()
	a, ok := m.GPIO(0)
	if !ok {
		t.Fatal("port A missing")
	}
	a.BSRR.Set(1 << 5)
	if a.ODR.Get() != 1<<5 {
		t.Fatalf("ODR after set = %#x", a.ODR.Get())
	}
	a.BSRR.Set(1 << (5 + 16))
	if a.ODR.Get() != 0 {
		t.Fatalf("ODR after reset = %#x", a.ODR.Get())
	}
	if a.BSRR.Get() != 0 {
		t.Fatal("BSRR must read as zero")
	}
}

func TestSimIDRFollowsModeAndDrive(t *testing.T) {
	m := NewSimMap()
	a, _ := m.GPIO(0)
	m.Drive(0, 3, true)
	if !a.IDR.HasBits(1 << 3) {
		t.Fatal("driven input not visible")
	}
	// Pin 5 as output mirrors the latch, not the driven level.
	ReplaceBits(a.MODER, 1, 2, 10)
	m.Drive(0, 5, true)
	if a.IDR.HasBits(1 << 5) {
		t.Fatal("output pin should read its latch")
	}
	a.BSRR.Set(1 << 5)
	if !a.IDR.HasBits(1 << 5) {
		t.Fatal("output latch not reflected in IDR")
	}
}

func TestSimMissingPort(t *testing.T) {
	m := NewSimMap(0, 1)
	if _, ok := m.GPIO(2); ok {
		t.Fatal("port C should be absent")
	}
	if _, ok := m.GPIO(200); ok {
		t.Fatal("out of range port should be absent")
	}
}

func TestSimOscillatorLockDelay(t *testing.T) {
	m := NewSimMap()
	cr := m.RCC().CR
	if !cr.HasBits(CRHSION | CRHSIRDY) {
		t.Fatalf("HSI should be on and ready after reset: %#x", cr.Get())
	}
	m.SetLockDelay(2)
	cr.SetBits(CRPLLON)
	if cr.HasBits(CRPLLRDY) || cr.HasBits(CRPLLRDY) {
		t.Fatal("PLL ready too early")
	}
	if !cr.HasBits(CRPLLRDY) {
		t.Fatal("PLL should lock on the third poll")
	}
	cr.ClearBits(CRPLLON)
	if cr.Get()&CRPLLRDY != 0 {
		t.Fatal("ready flag must drop with the ON bit")
	}
	// Ready flags are read-only.
	cr.Set(CRHSEON | CRHSERDY)
	if cr.Get()&CRHSIRDY != 0 {
		t.Fatal("HSI ready should drop once HSION is cleared")
	}
}

func TestSimCFGRReportsSwitch(t *testing.T) {
	m := NewSimMap()
	r := m.RCC()
	ReplaceBits(r.CFGR, 2, 2, CFGRSWPos)
	if ReadBits(r.CFGR, 2, CFGRSWSPos) != 2 {
		t.Fatalf("SWS not updated: CFGR=%#x", r.CFGR.Get())
	}
	// SWS is read-only: a direct write is overridden by SW.
	r.CFGR.Set(1 | 3<<CFGRSWSPos)
	if ReadBits(r.CFGR, 2, CFGRSWSPos) != 1 {
		t.Fatalf("SWS write leaked: CFGR=%#x", r.CFGR.Get())
	}
	for _, e := range m.Entries() {
		if e.Name == "RCC_CFGR" && e.Reg != r.CFGR {
			t.Fatal("entry should point at the live CFGR")
		}
	}
}

func TestSimEntriesAndWrites(t *testing.T) {
	m := NewSimMap()
	found := map[string]Entry{}
	for _, e := range m.Entries() {
		found[e.Name] = e
	}
	e, ok := found["RCC_AHB1ENR"]
	if !ok || e.Addr != 0x4002_3830 {
		t.Fatalf("RCC_AHB1ENR entry = %+v", e)
	}
	if e := found["GPIOH_MODER"]; e.Addr != 0x4002_1C00 {
		t.Fatalf("GPIOH_MODER addr = %#x", e.Addr)
	}
	if found["GPIOA_BSRR"].Reg != Register(mustGPIO(t, m, 0).BSRR) {
		t.Fatal("entry should point at the live BSRR")
	}
	before := m.Writes()
	m.RCC().Buses[AHB1].ENR.SetBits(1)
	if m.Writes() != before+1 {
		t.Fatalf("writes = %d, want %d", m.Writes(), before+1)
	}
}

func mustGPIO(t *testing.T, m Map, p uint8) *GPIOBlock {
	t.Helper()
	b, ok := m.GPIO(p)
	if !ok {
		t.Fatalf("port %d missing", p)
	}
	return b
}

// ---- I2C bridge ----

var _ drivers.I2C = (*fakeBridge)(nil)

type fakeBridge struct {
	mem  map[uint32]uint32
	fail error
	txs  int
}

func (f *fakeBridge) Tx(addr uint16, w, r []byte) error {
	f.txs++
	if f.fail != nil {
		return f.fail
	}
	if addr != 0x2A || len(w) < 4 {
		return errors.New("bad frame")
	}
	a := uint32(w[0]) | uint32(w[1])<<8 | uint32(w[2])<<16 | uint32(w[3])<<24
	switch {
	case len(w) == 8 && len(r) == 0:
		f.mem[a] = uint32(w[4]) | uint32(w[5])<<8 | uint32(w[6])<<16 | uint32(w[7])<<24
	case len(w) == 4 && len(r) == 4:
		v := f.mem[a]
		r[0], r[1], r[2], r[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	default:
		return errors.New("bad frame")
	}
	return nil
}

func TestI2CMapReadModifyWrite(t *testing.T) {
	f := &fakeBridge{mem: map[uint32]uint32{RCCBase + OffAHB1ENR: 0x10}}
	m := NewI2CMap(f, 0x2A)
	enr := m.RCC().Buses[AHB1].ENR
	enr.SetBits(1 << 2)
	if f.mem[RCCBase+OffAHB1ENR] != 0x14 {
		t.Fatalf("remote ENR = %#x", f.mem[RCCBase+OffAHB1ENR])
	}
	enr.ClearBits(0x10)
	if !enr.HasBits(1<<2) || enr.Get() != 0x04 {
		t.Fatalf("remote ENR after clear = %#x", enr.Get())
	}
	b, _ := m.GPIO(3)
	b.MODER.Set(0xDEAD_BEEF)
	if f.mem[GPIOBase(3)+OffMODER] != 0xDEAD_BEEF {
		t.Fatal("GPIOD MODER not written at its bus address")
	}
	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
}

func TestI2CMapKeepsFirstError(t *testing.T) {
	first := errors.New("nack")
	f := &fakeBridge{mem: map[uint32]uint32{}, fail: first}
	m := NewI2CMap(f, 0x2A)
	if got := m.RCC().CR.Get(); got != 0 {
		t.Fatalf("failed read = %#x", got)
	}
	f.fail = errors.New("later")
	m.RCC().CR.Set(1)
	if m.Err() != first {
		t.Fatalf("Err = %v, want first error", m.Err())
	}
}
