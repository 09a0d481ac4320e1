package clockgate

import (
	"errors"
	"testing"

	"periphkit-go/errcode"
	"periphkit-go/periph/regs"
)

func newBridge(t *testing.T, bus regs.Bus) (*Bridge, *regs.SimMap) {
	t.Helper()
	m := regs.NewSimMap()
	b, err := New(m).Bridge(bus)
	if err != nil {
		t.Fatalf("Bridge(%v): %v", bus, err)
	}
	return b, m
}

func TestEnableIsIdempotent(t *testing.T) {
	b, m := newBridge(t, regs.AHB1)
	enr := m.RCC().Buses[regs.AHB1].ENR
	for i := 0; i < 2; i++ {
		if err := b.Enable(3, false); err != nil {
			t.Fatalf("Enable: %v", err)
		}
	}
	if enr.Get() != 1<<3 {
		t.Fatalf("ENR = %#x, want bit 3 only", enr.Get())
	}
	if !b.IsEnabled(3) || b.IsEnabled(2) {
		t.Fatal("IsEnabled mismatch")
	}
}

func TestDisableClearsExactlyOneBit(t *testing.T) {
	b, m := newBridge(t, regs.APB1)
	enr := m.RCC().Buses[regs.APB1].ENR
	enr.Set(0xF0F0_0001)
	if err := b.Enable(17, false); err != nil {
		t.Fatal(err)
	}
	if err := b.Disable(17); err != nil {
		t.Fatal(err)
	}
	if enr.Get() != 0xF0F0_0001 {
		t.Fatalf("ENR = %#x, other bits disturbed", enr.Get())
	}
	if err := b.Disable(0); err != nil {
		t.Fatal(err)
	}
	if enr.Get() != 0xF0F0_0000 {
		t.Fatalf("ENR = %#x after clearing bit 0", enr.Get())
	}
}

func TestLowPowerAndReset(t *testing.T) {
	b, m := newBridge(t, regs.APB2)
	bus := m.RCC().Buses[regs.APB2]
	if err := b.Enable(4, true); err != nil {
		t.Fatal(err)
	}
	if bus.LPENR.Get() != 1<<4 || bus.ENR.Get() != 0 {
		t.Fatalf("low-power enable wrote LPENR=%#x ENR=%#x", bus.LPENR.Get(), bus.ENR.Get())
	}
	if err := b.DisableLowPower(4); err != nil || bus.LPENR.Get() != 0 {
		t.Fatalf("DisableLowPower: %v LPENR=%#x", err, bus.LPENR.Get())
	}
	if err := b.EnableLowPower(12); err != nil || bus.LPENR.Get() != 1<<12 {
		t.Fatalf("EnableLowPower: %v LPENR=%#x", err, bus.LPENR.Get())
	}
	if err := b.Reset(12); err != nil || bus.RSTR.Get() != 1<<12 {
		t.Fatalf("Reset: %v RSTR=%#x", err, bus.RSTR.Get())
	}
	if bus.ENR.Get() != 0 {
		t.Fatal("reset must not touch the enable register")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	b, m := newBridge(t, regs.AHB2)
	if err := b.Enable(32, false); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("want invalid_params, got %v", err)
	}
	if err := b.Reset(40); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("want invalid_params, got %v", err)
	}
	if m.RCC().Buses[regs.AHB2].RSTR.Get() != 0 {
		t.Fatal("rejected call wrote a register")
	}
	if b.IsEnabled(40) {
		t.Fatal("out of range index cannot be enabled")
	}
}

func TestBridgesAreCreatedOncePerBus(t *testing.T) {
	g := New(regs.NewSimMap())
	a1, _ := g.Bridge(regs.AHB1)
	a2, _ := g.Bridge(regs.AHB1)
	p1, _ := g.Bridge(regs.APB1)
	if a1 != a2 {
		t.Fatal("same bus should yield the same bridge")
	}
	if a1 == p1 || p1.Bus() != regs.APB1 {
		t.Fatal("different buses should yield different bridges")
	}
	if _, err := g.Bridge(regs.NumBuses); err == nil {
		t.Fatal("unknown bus should fail")
	}
}
