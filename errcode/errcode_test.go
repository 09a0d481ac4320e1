package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"missing_argument":          MissingArgument,
		"argument_type_not_allowed": ArgumentTypeNotAllowed,
		"already_allocated":         AlreadyAllocated,
		"handler_not_allocated":     HandlerNotAllocated,
		"reading_deallocated_pin":   ReadingDeallocatedPin,
		"not_ready":                 NotReady,
		"not_ready_not_reset":       NotReadyNotReset,
		"not_input_mode":            NotInputMode,
		"mode_not_allowed":          ModeNotAllowed,
		"field_failed":              FieldFailed,
		"pll_not_locked":            PLLNotLocked,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfAndIs(t *testing.T) {
	if Of(nil) != OK {
		t.Fatalf("Of(nil) = %q", Of(nil))
	}
	if Of(NotReady) != NotReady {
		t.Fatalf("bare code not recognised")
	}
	e := New(AlreadyAllocated, "set_pin", "A5")
	if Of(e) != AlreadyAllocated {
		t.Fatalf("Of(*E) = %q", Of(e))
	}
	wrapped := fmt.Errorf("board: %w", e)
	if Of(wrapped) != AlreadyAllocated {
		t.Fatalf("Of through fmt wrapper = %q", Of(wrapped))
	}
	if !errors.Is(wrapped, AlreadyAllocated) {
		t.Fatal("errors.Is should match the code")
	}
	if errors.Is(wrapped, NotReady) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("plain errors should map to Error")
	}
}

func TestCauseFindsInnermostCode(t *testing.T) {
	err := Wrap(FieldFailed, "initialize", PLLNotLocked)
	if Of(err) != FieldFailed {
		t.Fatalf("outer code = %q", Of(err))
	}
	if Cause(err) != PLLNotLocked {
		t.Fatalf("cause = %q", Cause(err))
	}
	if Cause(Wrap(FieldFailed, "initialize", errors.New("io"))) != FieldFailed {
		t.Fatal("cause without inner code should fall back to the outer code")
	}
}

func TestErrorString(t *testing.T) {
	e := &E{C: MissingArgument, Op: "initialize", Msg: "gpio.port"}
	if got, want := e.Error(), "initialize: missing_argument: gpio.port"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
