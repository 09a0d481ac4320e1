package regs

// STM32F411 register addresses (RM0383).
const (
	RCCBase   uint32 = 0x4002_3800
	GPIOABase uint32 = 0x4002_0000
	gpioStep  uint32 = 0x400

	OffCR      uint32 = 0x00
	OffPLLCFGR uint32 = 0x04
	OffCFGR    uint32 = 0x08

	OffAHB1RSTR  uint32 = 0x10
	OffAHB2RSTR  uint32 = 0x14
	OffAPB1RSTR  uint32 = 0x20
	OffAPB2RSTR  uint32 = 0x24
	OffAHB1ENR   uint32 = 0x30
	OffAHB2ENR   uint32 = 0x34
	OffAPB1ENR   uint32 = 0x40
	OffAPB2ENR   uint32 = 0x44
	OffAHB1LPENR uint32 = 0x50
	OffAHB2LPENR uint32 = 0x54
	OffAPB1LPENR uint32 = 0x60
	OffAPB2LPENR uint32 = 0x64

	OffMODER   uint32 = 0x00
	OffOTYPER  uint32 = 0x04
	OffOSPEEDR uint32 = 0x08
	OffPUPDR   uint32 = 0x0C
	OffIDR     uint32 = 0x10
	OffODR     uint32 = 0x14
	OffBSRR    uint32 = 0x18
)

// RCC_CR bits.
const (
	CRHSION  uint32 = 1 << 0
	CRHSIRDY uint32 = 1 << 1
	CRHSEON  uint32 = 1 << 16
	CRHSERDY uint32 = 1 << 17
	CRPLLON  uint32 = 1 << 24
	CRPLLRDY uint32 = 1 << 25
)

// RCC_PLLCFGR and RCC_CFGR fields.
const (
	PLLCFGRMPos   = 0
	PLLCFGRNPos   = 6
	PLLCFGRPPos   = 16
	PLLCFGRSrcHSE = 1 << 22
	PLLCFGRQPos   = 24

	CFGRSWPos  = 0
	CFGRSWSPos = 2

	// Reset values.
	CRReset      uint32 = 0x0000_0083
	PLLCFGRReset uint32 = 0x2400_3010
)

// Ports present on the STM32F411 (A..E and H).
var STM32F411Ports = []uint8{0, 1, 2, 3, 4, 7}

// GPIOBase returns the base address of a port index.
func GPIOBase(port uint8) uint32 { return GPIOABase + uint32(port)*gpioStep }

type busOffsets struct{ enr, lpenr, rstr uint32 }

var busRegs = [NumBuses]busOffsets{
	AHB1: {OffAHB1ENR, OffAHB1LPENR, OffAHB1RSTR},
	AHB2: {OffAHB2ENR, OffAHB2LPENR, OffAHB2RSTR},
	APB1: {OffAPB1ENR, OffAPB1LPENR, OffAPB1RSTR},
	APB2: {OffAPB2ENR, OffAPB2LPENR, OffAPB2RSTR},
}

// PortName renders a port index as its letter.
func PortName(port uint8) string {
	if port > 25 {
		return "?"
	}
	return string(rune('A' + port))
}

// layout builds the RCC and GPIO blocks from a per-register constructor.
// Maps with behaviour beyond plain storage build their blocks themselves.
type layout struct {
	rcc     RCCBlock
	gpio    [8]*GPIOBlock
	entries []Entry
}

func (l *layout) add(name string, addr uint32, r Register) Register {
	l.entries = append(l.entries, Entry{Name: name, Addr: addr, Reg: r})
	return r
}

func buildLayout(ports []uint8, mk func(addr uint32) Register) *layout {
	l := &layout{}
	l.rcc.CR = l.add("RCC_CR", RCCBase+OffCR, mk(RCCBase+OffCR))
	l.rcc.PLLCFGR = l.add("RCC_PLLCFGR", RCCBase+OffPLLCFGR, mk(RCCBase+OffPLLCFGR))
	l.rcc.CFGR = l.add("RCC_CFGR", RCCBase+OffCFGR, mk(RCCBase+OffCFGR))
	for b := AHB1; b < NumBuses; b++ {
		o := busRegs[b]
		n := b.String()
		l.rcc.Buses[b] = BusBlock{
			ENR:   l.add("RCC_"+n+"ENR", RCCBase+o.enr, mk(RCCBase+o.enr)),
			LPENR: l.add("RCC_"+n+"LPENR", RCCBase+o.lpenr, mk(RCCBase+o.lpenr)),
			RSTR:  l.add("RCC_"+n+"RSTR", RCCBase+o.rstr, mk(RCCBase+o.rstr)),
		}
	}
	for _, p := range ports {
		base := GPIOBase(p)
		n := "GPIO" + PortName(p) + "_"
		l.gpio[p] = &GPIOBlock{
			MODER:   l.add(n+"MODER", base+OffMODER, mk(base+OffMODER)),
			OTYPER:  l.add(n+"OTYPER", base+OffOTYPER, mk(base+OffOTYPER)),
			OSPEEDR: l.add(n+"OSPEEDR", base+OffOSPEEDR, mk(base+OffOSPEEDR)),
			PUPDR:   l.add(n+"PUPDR", base+OffPUPDR, mk(base+OffPUPDR)),
			IDR:     l.add(n+"IDR", base+OffIDR, mk(base+OffIDR)),
			ODR:     l.add(n+"ODR", base+OffODR, mk(base+OffODR)),
			BSRR:    l.add(n+"BSRR", base+OffBSRR, mk(base+OffBSRR)),
		}
	}
	return l
}

func (l *layout) RCC() *RCCBlock { return &l.rcc }

func (l *layout) GPIO(port uint8) (*GPIOBlock, bool) {
	if int(port) >= len(l.gpio) || l.gpio[port] == nil {
		return nil, false
	}
	return l.gpio[port], true
}

func (l *layout) Entries() []Entry { return l.entries }
