//go:build tinygo && stm32f4

// Command blinky toggles the user LED of a Nucleo-F411RE (PA5) from the
// 84 MHz PLL clock.
package main

import (
	"time"

	"periphkit-go/drivers/gpio"
	"periphkit-go/periph/clockgate"
	"periphkit-go/periph/rcc"
	"periphkit-go/periph/regs"
)

func main() {
	m := regs.Hardware()

	clk := rcc.New(m, clockgate.New(m))
	if err := clk.SetAll(rcc.MainPLL, rcc.PLL{M: 16, N: 336, P: 4, Q: 7}); err != nil {
		println("[blinky] clock:", err.Error())
		return
	}
	if err := clk.Initialize(true, 100); err != nil {
		println("[blinky] clock init:", err.Error())
		return
	}
	if err := clk.EnableGPIOA(); err != nil {
		println("[blinky] gpioa:", err.Error())
		return
	}

	led := gpio.New(gpio.NewAllocationTable(), m)
	for _, step := range []func() error{
		func() error { return led.SetPort(gpio.PortA) },
		func() error { return led.SetPin(5) },
		led.SetOutputMode,
		led.SetPullPushOutputType,
		func() error { return led.Initialize(true, 0) },
	} {
		if err := step(); err != nil {
			println("[blinky] led:", err.Error())
			return
		}
	}

	for {
		_ = led.Toggle()
		time.Sleep(500 * time.Millisecond)
	}
}
