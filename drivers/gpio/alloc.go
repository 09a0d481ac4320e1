package gpio

import (
	"math/bits"
	"strconv"

	"periphkit-go/errcode"
)

// AllocationTable records which (port, pin) pairs are owned by a live IOPin.
// Every pin sharing a table shares the ownership rule; tests use one table
// each. Not safe for concurrent use.
type AllocationTable struct {
	owned [8]uint16
}

func NewAllocationTable() *AllocationTable { return &AllocationTable{} }

// IsAllocated reports whether the pair is owned.
func (t *AllocationTable) IsAllocated(port Port, pin Pin) bool {
	if port > 7 || pin > 15 {
		return false
	}
	return t.owned[port]&(1<<pin) != 0
}

func (t *AllocationTable) claim(port Port, pin Pin) error {
	switch {
	case port > 7:
		return errcode.New(errcode.UnknownPort, "allocate", port.String())
	case pin > 15:
		return errcode.New(errcode.UnknownPin, "allocate", strconv.Itoa(int(pin)))
	case t.IsAllocated(port, pin):
		return errcode.New(errcode.AlreadyAllocated, "allocate", pairName(port, pin))
	}
	t.owned[port] |= 1 << pin
	return nil
}

func (t *AllocationTable) release(port Port, pin Pin) {
	if port > 7 || pin > 15 {
		return
	}
	t.owned[port] &^= 1 << pin
}

// Count returns the number of owned pins.
func (t *AllocationTable) Count() int {
	n := 0
	for _, w := range t.owned {
		n += bits.OnesCount16(w)
	}
	return n
}

func pairName(port Port, pin Pin) string { return "P" + port.String() + strconv.Itoa(int(pin)) }
