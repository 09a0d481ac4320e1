package engine

import (
	"errors"
	"testing"

	"periphkit-go/errcode"
	"periphkit-go/periph/settings"
)

type lampLabel uint8

const (
	lampChannel lampLabel = iota
	lampLevel
	lampName
	lampCount
)

// lampDev records the fields programmed by the callbacks.
type lampDev struct {
	log      []string
	level    uint32
	failLeft int
}

type lampDriver struct {
	drv     *Driver[lampLabel, *lampDev]
	channel settings.Field[lampLabel, uint8]
	level   settings.Field[lampLabel, uint32]
	name    settings.Field[lampLabel, string]
	setups  int
}

func newLampDriver() *lampDriver {
	s := settings.NewSchema[lampLabel]("lamp", lampCount)
	d := &lampDriver{
		channel: settings.Declare(s, lampChannel, "channel", uint8(0xFF)),
		level:   settings.Declare(s, lampLevel, "level", uint32(0)),
		name:    settings.Declare(s, lampName, "name", ""),
	}
	d.drv = NewDriver[lampLabel, *lampDev]("lamp", s)
	return d
}

func (d *lampDriver) setup(t *Table[lampLabel, *lampDev]) {
	d.setups++
	Bind(t, d.channel, func(v uint8, e *Engine[lampLabel, *lampDev]) error {
		dev := e.Device()
		if dev.failLeft > 0 {
			dev.failLeft--
			return errcode.NotReady
		}
		dev.log = append(dev.log, "channel")
		return nil
	})
	Bind(t, d.level, func(v uint32, e *Engine[lampLabel, *lampDev]) error {
		// Sibling reads go through the instance.
		if Get(e, d.channel) == 7 && v > 100 {
			return errcode.InvalidParams
		}
		e.Device().level = v
		e.Device().log = append(e.Device().log, "level")
		return nil
	})
	Bind(t, d.name, func(v string, e *Engine[lampLabel, *lampDev]) error {
		e.Device().log = append(e.Device().log, "name")
		return nil
	})
}

func (d *lampDriver) instance() (*Engine[lampLabel, *lampDev], *lampDev) {
	dev := &lampDev{}
	return New(d.drv, dev, d.setup), dev
}

func TestTableSharedAcrossInstances(t *testing.T) {
	d := newLampDriver()
	a, _ := d.instance()
	b, _ := d.instance()
	if d.setups != 1 {
		t.Fatalf("setup ran %d times", d.setups)
	}
	if a.Table() != b.Table() || a.Table() != d.drv.Table() {
		t.Fatal("instances do not share the table")
	}
	if err := Set(a, d.level, 42); err != nil {
		t.Fatal(err)
	}
	if Get(b, d.level) != 0 {
		t.Fatal("values leaked between instances")
	}
}

func TestInitializeRunsInLabelOrder(t *testing.T) {
	d := newLampDriver()
	e, dev := d.instance()
	if e.Status() != StatusReset {
		t.Fatalf("status=%v", e.Status())
	}
	_ = Set(e, d.channel, 1)
	_ = Set(e, d.level, 30)
	if err := e.Initialize(true, 0); err != nil {
		t.Fatal(err)
	}
	if !e.IsReady() || dev.level != 30 {
		t.Fatalf("ready=%v level=%d", e.IsReady(), dev.level)
	}
	want := []string{"channel", "level", "name"}
	if len(dev.log) != len(want) {
		t.Fatalf("log=%v", dev.log)
	}
	for i := range want {
		if dev.log[i] != want[i] {
			t.Fatalf("log=%v", dev.log)
		}
	}
}

func TestMissingMandatory(t *testing.T) {
	d := newLampDriver()
	e, dev := d.instance()
	e.SetMandatory(lampChannel)
	if !e.IsMandatory(lampChannel) || e.IsMandatory(lampLevel) {
		t.Fatal("mandatory set")
	}
	err := e.Initialize(true, 3)
	if errcode.Of(err) != errcode.MissingArgument {
		t.Fatalf("err=%v", err)
	}
	if len(dev.log) != 0 {
		t.Fatalf("callbacks ran: %v", dev.log)
	}
	if e.Status() != StatusReset {
		t.Fatalf("status=%v", e.Status())
	}
	// Skipping the check runs callbacks with the sentinel.
	if err := e.Initialize(false, 0); err != nil {
		t.Fatal(err)
	}
}

func TestFailFastAndFailedField(t *testing.T) {
	d := newLampDriver()
	e, dev := d.instance()
	_ = Set(e, d.channel, 7)
	_ = Set(e, d.level, 200)
	err := e.Initialize(true, 0)
	if errcode.Of(err) != errcode.FieldFailed || errcode.Cause(err) != errcode.InvalidParams {
		t.Fatalf("err=%v", err)
	}
	if !errors.Is(err, errcode.InvalidParams) {
		t.Fatal("cause not reachable")
	}
	if e.Status() != StatusError {
		t.Fatalf("status=%v", e.Status())
	}
	if l, ok := e.FailedField(); !ok || l != lampLevel {
		t.Fatalf("failed=%v %v", l, ok)
	}
	if len(dev.log) != 1 || dev.log[0] != "channel" {
		t.Fatalf("name ran after failure: %v", dev.log)
	}
	if err := Set(e, d.level, 10); errcode.Of(err) != errcode.NotReadyNotReset {
		t.Fatalf("set in error state: %v", err)
	}
	if err := e.SetAll(uint8(1), uint32(1), "x"); errcode.Of(err) != errcode.NotReadyNotReset {
		t.Fatalf("set all in error state: %v", err)
	}
	e.Reset()
	if _, ok := e.FailedField(); ok || e.Status() != StatusReset {
		t.Fatal("reset")
	}
	if err := Set(e, d.level, 10); err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(true, 0); err != nil {
		t.Fatal(err)
	}
}

func TestRetriesAndSettle(t *testing.T) {
	d := newLampDriver()
	var settles []int
	var logged int
	d.drv.Settle = func(attempt int) { settles = append(settles, attempt) }
	d.drv.Logf = func(string, ...any) { logged++ }
	e, dev := d.instance()
	dev.failLeft = 2
	if err := e.Initialize(true, 1); err == nil {
		t.Fatal("expected failure with one retry")
	}
	dev.failLeft = 2
	if err := e.Initialize(true, 2); err != nil {
		t.Fatal(err)
	}
	if !e.IsReady() {
		t.Fatal("not ready")
	}
	if len(settles) != 3 || settles[0] != 1 || settles[2] != 2 {
		t.Fatalf("settles=%v", settles)
	}
	if logged != 4 {
		t.Fatalf("logged=%d", logged)
	}
}

func TestSetValueAndCopyFrom(t *testing.T) {
	d := newLampDriver()
	a, _ := d.instance()
	b, _ := d.instance()
	if err := a.SetValue(lampLevel, "high"); errcode.Of(err) != errcode.ArgumentTypeNotAllowed {
		t.Fatalf("err=%v", err)
	}
	if err := a.SetValue(lampLevel, uint32(9)); err != nil {
		t.Fatal(err)
	}
	a.SetMandatory(lampName)
	a.SetStatus(StatusDriver + 1)
	b.CopyFrom(a)
	if Get(b, d.level) != 9 || !b.IsMandatory(lampName) {
		t.Fatal("copy")
	}
	if b.Status() != StatusReset {
		t.Fatalf("status copied: %v", b.Status())
	}
	if got := a.Status().String(); got != "status(17)" {
		t.Fatalf("status string %q", got)
	}
}

func TestUnboundFieldPanics(t *testing.T) {
	d := newLampDriver()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(d.drv, &lampDev{}, func(t *Table[lampLabel, *lampDev]) {
		Bind(t, d.channel, func(uint8, *Engine[lampLabel, *lampDev]) error { return nil })
	})
}

func TestBindTwicePanics(t *testing.T) {
	d := newLampDriver()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(d.drv, &lampDev{}, func(t *Table[lampLabel, *lampDev]) {
		d.setup(t)
		Bind(t, d.name, func(string, *Engine[lampLabel, *lampDev]) error { return nil })
	})
}
