//go:build tinygo && stm32f4

package regs

import (
	"runtime/volatile"
	"unsafe"
)

func mmio(addr uint32) Register {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr)))
}

var hw *layout

// Hardware returns the memory-mapped STM32F411 registers.
func Hardware() Map {
	if hw == nil {
		hw = buildLayout(STM32F411Ports, mmio)
	}
	return hw
}
