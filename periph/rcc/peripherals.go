package rcc

import (
	"strings"

	"periphkit-go/periph/regs"
)

// Peripheral names a clock-gated peripheral of the STM32F411.
type Peripheral uint8

const (
	GPIOA Peripheral = iota
	GPIOB
	GPIOC
	GPIOD
	GPIOE
	GPIOH
	CRC
	DMA1
	DMA2
	OTGFS
	TIM2
	TIM3
	TIM4
	TIM5
	WWDG
	SPI2
	SPI3
	USART2
	I2C1
	I2C2
	I2C3
	PWR
	TIM1
	USART1
	USART6
	ADC1
	SDIO
	SPI1
	SPI4
	SYSCFG
	TIM9
	TIM10
	TIM11
	SPI5
	numPeripherals
)

type gate struct {
	bus   regs.Bus
	index uint8
	name  string
}

var gateTable = [numPeripherals]gate{
	GPIOA:  {regs.AHB1, 0, "GPIOA"},
	GPIOB:  {regs.AHB1, 1, "GPIOB"},
	GPIOC:  {regs.AHB1, 2, "GPIOC"},
	GPIOD:  {regs.AHB1, 3, "GPIOD"},
	GPIOE:  {regs.AHB1, 4, "GPIOE"},
	GPIOH:  {regs.AHB1, 7, "GPIOH"},
	CRC:    {regs.AHB1, 12, "CRC"},
	DMA1:   {regs.AHB1, 21, "DMA1"},
	DMA2:   {regs.AHB1, 22, "DMA2"},
	OTGFS:  {regs.AHB2, 7, "OTGFS"},
	TIM2:   {regs.APB1, 0, "TIM2"},
	TIM3:   {regs.APB1, 1, "TIM3"},
	TIM4:   {regs.APB1, 2, "TIM4"},
	TIM5:   {regs.APB1, 3, "TIM5"},
	WWDG:   {regs.APB1, 11, "WWDG"},
	SPI2:   {regs.APB1, 14, "SPI2"},
	SPI3:   {regs.APB1, 15, "SPI3"},
	USART2: {regs.APB1, 17, "USART2"},
	I2C1:   {regs.APB1, 21, "I2C1"},
	I2C2:   {regs.APB1, 22, "I2C2"},
	I2C3:   {regs.APB1, 23, "I2C3"},
	PWR:    {regs.APB1, 28, "PWR"},
	TIM1:   {regs.APB2, 0, "TIM1"},
	USART1: {regs.APB2, 4, "USART1"},
	USART6: {regs.APB2, 5, "USART6"},
	ADC1:   {regs.APB2, 8, "ADC1"},
	SDIO:   {regs.APB2, 11, "SDIO"},
	SPI1:   {regs.APB2, 12, "SPI1"},
	SPI4:   {regs.APB2, 13, "SPI4"},
	SYSCFG: {regs.APB2, 14, "SYSCFG"},
	TIM9:   {regs.APB2, 16, "TIM9"},
	TIM10:  {regs.APB2, 17, "TIM10"},
	TIM11:  {regs.APB2, 18, "TIM11"},
	SPI5:   {regs.APB2, 20, "SPI5"},
}

// Gate returns the bus and bus-local bit index of p.
func (p Peripheral) Gate() (regs.Bus, uint8, bool) {
	if p >= numPeripherals {
		return 0, 0, false
	}
	g := gateTable[p]
	return g.bus, g.index, true
}

func (p Peripheral) String() string {
	if p >= numPeripherals {
		return "unknown"
	}
	return gateTable[p].name
}

// Lookup resolves a peripheral by name, case-insensitively.
func Lookup(name string) (Peripheral, bool) {
	for i := range gateTable {
		if strings.EqualFold(gateTable[i].name, name) {
			return Peripheral(i), true
		}
	}
	return 0, false
}

// GPIOPeripheral returns the clock gate of a GPIO port index (A=0 .. H=7).
func GPIOPeripheral(port uint8) (Peripheral, bool) {
	switch {
	case port <= 4:
		return GPIOA + Peripheral(port), true
	case port == 7:
		return GPIOH, true
	}
	return 0, false
}
