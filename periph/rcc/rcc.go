// Package rcc is the reset and clock controller: system clock source
// selection, PLL parameters and per-peripheral clock gates.
//
// The clock source and PLL are engine fields. Peripheral clock operations go
// straight to the bus bridges and do not look at the controller status; the
// caller selects (and, for the PLL, locks) the system clock first.
package rcc

import (
	"strconv"
	"time"

	"periphkit-go/errcode"
	"periphkit-go/periph/clockgate"
	"periphkit-go/periph/engine"
	"periphkit-go/periph/regs"
	"periphkit-go/periph/settings"
	"periphkit-go/x/mathx"
)

type Label uint8

const (
	LabelSource Label = iota
	LabelPLL
	labelCount
)

// Source is the system clock source.
type Source uint8

const (
	HSI Source = iota
	HSE
	MainPLL

	SourceUnset Source = 0xFF
)

func (s Source) String() string {
	switch s {
	case HSI:
		return "hsi"
	case HSE:
		return "hse"
	case MainPLL:
		return "pll"
	case SourceUnset:
		return "unset"
	default:
		return "source(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSource accepts the names printed by Source.String.
func ParseSource(s string) (Source, error) {
	switch s {
	case "hsi", "HSI":
		return HSI, nil
	case "hse", "HSE":
		return HSE, nil
	case "pll", "PLL":
		return MainPLL, nil
	}
	return SourceUnset, errcode.New(errcode.InvalidParams, "parse_source", s)
}

// PLL holds the main PLL dividers: f_vco = f_in / M * N, f_sys = f_vco / P,
// f_usb = f_vco / Q.
type PLL struct {
	M, N, P, Q uint32
	FromHSE    bool
}

// Validate checks every divider against its hardware range.
func (p PLL) Validate() error {
	switch {
	case !mathx.Between(p.M, 2, 63):
		return errcode.New(errcode.InvalidParams, "pll", "M out of range 2..63")
	case !mathx.Between(p.N, 50, 432):
		return errcode.New(errcode.InvalidParams, "pll", "N out of range 50..432")
	case !mathx.OneOf(p.P, 2, 4, 6, 8):
		return errcode.New(errcode.InvalidParams, "pll", "P must be 2, 4, 6 or 8")
	case !mathx.Between(p.Q, 2, 15):
		return errcode.New(errcode.InvalidParams, "pll", "Q out of range 2..15")
	}
	return nil
}

// word merges the dividers into a PLLCFGR value, keeping base's other bits.
func (p PLL) word(base uint32) uint32 {
	v := base
	put := func(val uint32, width, pos uint8) {
		mask := mathx.FieldMask(width) << pos
		v = v&^mask | (val<<pos)&mask
	}
	put(p.M, 6, regs.PLLCFGRMPos)
	put(p.N, 9, regs.PLLCFGRNPos)
	put(p.P/2-1, 2, regs.PLLCFGRPPos)
	put(p.Q, 4, regs.PLLCFGRQPos)
	if p.FromHSE {
		v |= regs.PLLCFGRSrcHSE
	} else {
		v &^= regs.PLLCFGRSrcHSE
	}
	return v
}

const (
	HSIHz = 16_000_000

	swHSI = 0
	swHSE = 1
	swPLL = 2

	swsPolls = 16
)

var (
	schema = settings.NewSchema[Label]("rcc", labelCount)

	FieldSource = settings.Declare(schema, LabelSource, "clock_source", SourceUnset)
	FieldPLL    = settings.Declare(schema, LabelPLL, "pll", PLL{})

	driver = engine.NewDriver[Label, *Controller]("rcc", schema)

	// SettleDelay is slept between Initialize retries.
	SettleDelay = 50 * time.Microsecond
)

func init() {
	driver.Logf = engine.Println
	driver.Settle = func(int) { time.Sleep(SettleDelay) }
}

func setup(t *engine.Table[Label, *Controller]) {
	engine.Bind(t, FieldSource, applySource)
	engine.Bind(t, FieldPLL, applyPLL)
}

// Controller is the RCC driver.
type Controller struct {
	m     regs.Map
	gates *clockgate.Gates
	e     *engine.Engine[Label, *Controller]

	// HSEHz is the external oscillator frequency, used by SysClockHz.
	HSEHz uint32
}

var _ engine.Peripheral = (*Controller)(nil)

// New builds a controller defaulting to the internal oscillator.
func New(m regs.Map, gates *clockgate.Gates) *Controller {
	c := &Controller{m: m, gates: gates, HSEHz: 25_000_000}
	c.e = engine.New(driver, c, setup)
	c.e.SetMandatory(LabelSource)
	settings.Set(c.e.Settings(), FieldSource, HSI)
	return c
}

func (c *Controller) SetSource(s Source) error { return engine.Set(c.e, FieldSource, s) }
func (c *Controller) SetPLL(p PLL) error       { return engine.Set(c.e, FieldPLL, p) }

// SetAll replaces the source and PLL together.
func (c *Controller) SetAll(s Source, p PLL) error { return c.e.SetAll(s, p) }

func (c *Controller) Source() Source { return engine.Get(c.e, FieldSource) }
func (c *Controller) PLL() PLL       { return engine.Get(c.e, FieldPLL) }

func (c *Controller) Initialize(checkMandatory bool, retries int) error {
	return c.e.Initialize(checkMandatory, retries)
}

func (c *Controller) Status() engine.Status { return c.e.Status() }
func (c *Controller) IsReady() bool         { return c.e.IsReady() }

// FailedField names the field whose callback failed the last Initialize.
func (c *Controller) FailedField() (Label, bool) { return c.e.FailedField() }

// SysClockHz computes the system clock from the configured source.
func (c *Controller) SysClockHz() uint32 {
	switch c.Source() {
	case HSI:
		return HSIHz
	case HSE:
		return c.HSEHz
	case MainPLL:
		p := c.PLL()
		if p.Validate() != nil {
			return 0
		}
		in := uint64(HSIHz)
		if p.FromHSE {
			in = uint64(c.HSEHz)
		}
		vco := mathx.RoundDiv(in*uint64(p.N), uint64(p.M))
		return uint32(mathx.RoundDiv(vco, uint64(p.P)))
	}
	return 0
}

func applySource(v Source, e *engine.Engine[Label, *Controller]) error {
	r := e.Device().m.RCC()
	switch v {
	case SourceUnset:
		return nil
	case HSI:
		return switchTo(r, regs.CRHSION, regs.CRHSIRDY, errcode.NotReady, swHSI)
	case HSE:
		return switchTo(r, regs.CRHSEON, regs.CRHSERDY, errcode.NotReady, swHSE)
	case MainPLL:
	default:
		return errcode.New(errcode.Unsupported, "clock_source", v.String())
	}

	// PLLCFGR must be written before PLLON, so the PLL field is programmed here.
	pll := engine.Get(e, FieldPLL)
	if err := pll.Validate(); err != nil {
		return err
	}
	if pll.FromHSE {
		r.CR.SetBits(regs.CRHSEON)
		if !r.CR.HasBits(regs.CRHSERDY) {
			return errcode.NotReady
		}
	}
	cur := r.PLLCFGR.Get()
	if want := pll.word(cur); want != cur {
		// PLLCFGR is only writable with the PLL off.
		if r.CR.HasBits(regs.CRPLLON) {
			if regs.ReadBits(r.CFGR, 2, regs.CFGRSWPos) == swPLL {
				if err := switchTo(r, regs.CRHSION, regs.CRHSIRDY, errcode.NotReady, swHSI); err != nil {
					return err
				}
			}
			r.CR.ClearBits(regs.CRPLLON)
		}
		r.PLLCFGR.Set(want)
	}
	return switchTo(r, regs.CRPLLON, regs.CRPLLRDY, errcode.PLLNotLocked, swPLL)
}

func switchTo(r *regs.RCCBlock, on, rdy uint32, notReady errcode.Code, sw uint32) error {
	r.CR.SetBits(on)
	if !r.CR.HasBits(rdy) {
		return notReady
	}
	regs.ReplaceBits(r.CFGR, sw, 2, regs.CFGRSWPos)
	// SWS follows SW a few clock cycles later.
	for i := 0; i < swsPolls; i++ {
		if regs.ReadBits(r.CFGR, 2, regs.CFGRSWSPos) == sw {
			return nil
		}
	}
	return notReady
}

func applyPLL(v PLL, e *engine.Engine[Label, *Controller]) error {
	if v == (PLL{}) {
		return nil
	}
	return v.Validate()
}
