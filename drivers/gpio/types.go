package gpio

import (
	"strconv"
	"strings"

	"periphkit-go/errcode"
)

// Port is a GPIO port index (A=0 .. H=7).
type Port uint8

const (
	PortA Port = 0
	PortB Port = 1
	PortC Port = 2
	PortD Port = 3
	PortE Port = 4
	PortH Port = 7

	PortNone Port = 0xFF
)

func (p Port) String() string {
	if p == PortNone {
		return "none"
	}
	if p > 7 {
		return "port(" + strconv.Itoa(int(p)) + ")"
	}
	return string(rune('A' + p))
}

// Pin is a pin number within a port, 0..15.
type Pin uint8

const PinNone Pin = 0xFF

type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
	ModeAlternate
	ModeAnalog

	ModeNone Mode = 0xFF
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeAlternate:
		return "alternate"
	case ModeAnalog:
		return "analog"
	}
	return "none"
}

// Pull is the pull-up/pull-down selection.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown

	PullUnset Pull = 0xFF
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "unset"
}

type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain

	OutputTypeUnset OutputType = 0xFF
)

func (o OutputType) String() string {
	switch o {
	case PushPull:
		return "push_pull"
	case OpenDrain:
		return "open_drain"
	}
	return "unset"
}

type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedFast
	SpeedHigh

	SpeedUnset Speed = 0xFF
)

func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "low"
	case SpeedMedium:
		return "medium"
	case SpeedFast:
		return "fast"
	case SpeedHigh:
		return "high"
	}
	return "unset"
}

// State is the output level.
type State uint8

const (
	Low State = iota
	High

	StateUnset State = 0xFF
)

// StateOf converts a level.
func StateOf(high bool) State {
	if high {
		return High
	}
	return Low
}

// ParsePort accepts "A", "b", "GPIOC" or "PD".
func ParsePort(s string) (Port, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	u = strings.TrimPrefix(u, "GPIO")
	if len(u) == 2 && u[0] == 'P' {
		u = u[1:]
	}
	if len(u) == 1 {
		switch p := Port(u[0] - 'A'); p {
		case PortA, PortB, PortC, PortD, PortE, PortH:
			return p, nil
		}
	}
	return PortNone, errcode.New(errcode.UnknownPort, "parse_port", s)
}

// ParsePinName splits a pin name such as "PA5" or "C13".
func ParsePinName(s string) (Port, Pin, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	u = strings.TrimPrefix(u, "P")
	if len(u) < 2 {
		return PortNone, PinNone, errcode.New(errcode.UnknownPin, "parse_pin", s)
	}
	port, err := ParsePort(u[:1])
	if err != nil {
		return PortNone, PinNone, err
	}
	n, err := strconv.ParseUint(u[1:], 10, 8)
	if err != nil || n > 15 {
		return PortNone, PinNone, errcode.New(errcode.UnknownPin, "parse_pin", s)
	}
	return port, Pin(n), nil
}

// ParseMode accepts the names printed by Mode.String, plus "af".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ModeNone, nil
	case "input", "in":
		return ModeInput, nil
	case "output", "out":
		return ModeOutput, nil
	case "alternate", "af":
		return ModeAlternate, nil
	case "analog":
		return ModeAnalog, nil
	}
	return ModeNone, errcode.New(errcode.InvalidParams, "parse_mode", s)
}

func ParsePull(s string) (Pull, error) {
	switch strings.ToLower(s) {
	case "", "unset":
		return PullUnset, nil
	case "none", "floating":
		return PullNone, nil
	case "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	}
	return PullUnset, errcode.New(errcode.InvalidParams, "parse_pull", s)
}

func ParseOutputType(s string) (OutputType, error) {
	switch strings.ToLower(s) {
	case "", "unset":
		return OutputTypeUnset, nil
	case "push_pull", "pushpull", "pp":
		return PushPull, nil
	case "open_drain", "opendrain", "od":
		return OpenDrain, nil
	}
	return OutputTypeUnset, errcode.New(errcode.InvalidParams, "parse_output_type", s)
}

func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(s) {
	case "", "unset":
		return SpeedUnset, nil
	case "low":
		return SpeedLow, nil
	case "medium":
		return SpeedMedium, nil
	case "fast":
		return SpeedFast, nil
	case "high":
		return SpeedHigh, nil
	}
	return SpeedUnset, errcode.New(errcode.InvalidParams, "parse_speed", s)
}
