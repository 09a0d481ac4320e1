package rcc

import (
	"periphkit-go/errcode"
	"periphkit-go/periph/clockgate"
	"periphkit-go/periph/regs"
)

func (c *Controller) bridge(p Peripheral, op string) (*clockgate.Bridge, uint8, error) {
	bus, index, ok := p.Gate()
	if !ok {
		return nil, 0, errcode.New(errcode.UnknownPeripheral, op, p.String())
	}
	b, err := c.gates.Bridge(bus)
	if err != nil {
		return nil, 0, err
	}
	return b, index, nil
}

// Enable turns on the clock of p.
func (c *Controller) Enable(p Peripheral) error {
	b, i, err := c.bridge(p, "enable")
	if err != nil {
		return err
	}
	return b.Enable(i, false)
}

func (c *Controller) Disable(p Peripheral) error {
	b, i, err := c.bridge(p, "disable")
	if err != nil {
		return err
	}
	return b.Disable(i)
}

// EnableLowPower keeps the clock of p running in sleep mode.
func (c *Controller) EnableLowPower(p Peripheral) error {
	b, i, err := c.bridge(p, "enable_low_power")
	if err != nil {
		return err
	}
	return b.EnableLowPower(i)
}

func (c *Controller) DisableLowPower(p Peripheral) error {
	b, i, err := c.bridge(p, "disable_low_power")
	if err != nil {
		return err
	}
	return b.DisableLowPower(i)
}

// ResetPeripheral sets the reset bit of p. Clearing it again is up to the
// caller.
func (c *Controller) ResetPeripheral(p Peripheral) error {
	b, i, err := c.bridge(p, "reset")
	if err != nil {
		return err
	}
	return b.Reset(i)
}

func (c *Controller) IsEnabled(p Peripheral) bool {
	b, i, err := c.bridge(p, "is_enabled")
	return err == nil && b.IsEnabled(i)
}

// EnableGPIO turns on the clock of a GPIO port index.
func (c *Controller) EnableGPIO(port uint8) error {
	p, ok := GPIOPeripheral(port)
	if !ok {
		return errcode.New(errcode.UnknownPort, "enable", "GPIO"+regs.PortName(port))
	}
	return c.Enable(p)
}

func (c *Controller) EnableGPIOA() error { return c.Enable(GPIOA) }
func (c *Controller) EnableGPIOB() error { return c.Enable(GPIOB) }
func (c *Controller) EnableGPIOC() error { return c.Enable(GPIOC) }
func (c *Controller) EnableGPIOD() error { return c.Enable(GPIOD) }
func (c *Controller) EnableGPIOE() error { return c.Enable(GPIOE) }
func (c *Controller) EnableGPIOH() error { return c.Enable(GPIOH) }
