package gpio

import (
	"periphkit-go/errcode"
	"periphkit-go/periph/engine"
)

// IOPin fault codes, above the engine's own states.
const (
	StatusArgumentTypeNotAllowed engine.Status = engine.StatusDriver + iota
	StatusAlreadyAllocatedPin
	StatusHandlerNotAllocated
	StatusInitQueuedSettingsFailed
	StatusModeNotAllowed
	StatusNotReadyNotReset
	StatusReadingDeallocatedPin
)

// StatusOf maps an IOPin error to its status code. A failed Initialize maps
// to the code of its cause when it has one, else InitQueuedSettingsFailed.
func StatusOf(err error) (engine.Status, bool) {
	if err == nil {
		return engine.StatusReady, true
	}
	switch errcode.Of(err) {
	case errcode.ArgumentTypeNotAllowed:
		return StatusArgumentTypeNotAllowed, true
	case errcode.AlreadyAllocated:
		return StatusAlreadyAllocatedPin, true
	case errcode.HandlerNotAllocated:
		return StatusHandlerNotAllocated, true
	case errcode.ModeNotAllowed:
		return StatusModeNotAllowed, true
	case errcode.NotReadyNotReset:
		return StatusNotReadyNotReset, true
	case errcode.ReadingDeallocatedPin:
		return StatusReadingDeallocatedPin, true
	case errcode.FieldFailed:
		switch errcode.Cause(err) {
		case errcode.ModeNotAllowed:
			return StatusModeNotAllowed, true
		case errcode.HandlerNotAllocated:
			return StatusHandlerNotAllocated, true
		}
		return StatusInitQueuedSettingsFailed, true
	}
	return engine.StatusError, false
}
