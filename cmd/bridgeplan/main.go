//go:build tinygo && rp2040

// Command bridgeplan runs on a Pico and configures a remote STM32F411
// through its I2C register bridge, from the plan embedded below.
package main

import (
	"machine"
	"time"

	"periphkit-go/config"
	"periphkit-go/drivers/gpio"
	"periphkit-go/periph/regs"
)

const bridgeAddr = 0x2A

const planJSON = `{
  "board": "bridge-f411",
  "clock": {"source": "hsi"},
  "pins": [
    {"pin": "PA5", "label": "led", "mode": "output", "initial": false},
    {"pin": "PC13", "label": "button", "mode": "input", "pull": "up"}
  ]
}`

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		println("[bridgeplan] i2c:", err.Error())
		return
	}

	plan, err := config.ParseJSON([]byte(planJSON))
	if err != nil {
		println("[bridgeplan] plan:", err.Error())
		return
	}
	m := regs.NewI2CMap(bus, bridgeAddr)
	board, err := config.Apply(plan, m, gpio.NewAllocationTable())
	if err == nil {
		err = m.Err()
	}
	if err != nil {
		println("[bridgeplan] apply:", err.Error())
		return
	}
	led, _ := board.Pin("led")
	button, _ := board.Pin("button")

	for {
		level, err := button.Read()
		if err != nil {
			println("[bridgeplan] read:", err.Error())
		}
		// Active low.
		_ = led.Write(!level)
		if err := m.Err(); err != nil {
			println("[bridgeplan] bus:", err.Error())
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
