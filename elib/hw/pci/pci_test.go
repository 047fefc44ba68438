// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import (
	"sync"
	"testing"
	"unsafe"
)

// simBus models the two-port configuration mechanism over a table of
// simulated functions, 16 registers each.  Addresses with no entry read
// as all-ones.
type simBus struct {
	addr uint32
	regs map[BusAddress][16]uint32
}

func newSimBus() *simBus {
	return &simBus{regs: make(map[BusAddress][16]uint32)}
}

func (b *simBus) Out32(port uint16, v uint32) {
	switch port {
	case ConfigAddress:
		b.addr = v
	case ConfigData:
		a, r, ok := b.selected()
		if !ok {
			return
		}
		if regs, found := b.regs[a]; found {
			regs[r] = v
			b.regs[a] = regs
		}
	}
}

func (b *simBus) In32(port uint16) uint32 {
	if port != ConfigData {
		return ^uint32(0)
	}
	a, r, ok := b.selected()
	if !ok {
		return ^uint32(0)
	}
	regs, found := b.regs[a]
	if !found {
		return ^uint32(0)
	}
	return regs[r]
}

func (b *simBus) selected() (a BusAddress, r uint, ok bool) {
	if b.addr&addressEnable == 0 {
		return
	}
	a = BusAddress(b.addr >> 8)
	r = uint(b.addr&0xff) / 4
	ok = r < 16
	return
}

func (b *simBus) add(a BusAddress, id DeviceID, class DeviceClass, tp uint8, bars ...uint32) {
	var regs [16]uint32
	regs[0] = uint32(uint16(id.Vendor)) | uint32(uint16(id.Device))<<16
	regs[2] = uint32(class) << 16
	regs[3] = uint32(tp) << 16
	for i, bar := range bars {
		regs[4+i] = bar
	}
	regs[11] = uint32(uint16(id.Vendor)) | uint32(uint16(id.Device))<<16 // subsystem = id
	regs[15] = 0x0105                                                    // line 5, pin 1
	b.regs[a] = regs
}

// recorder claims everything offered and counts purges.
type recorder struct {
	addrs  []BusAddress
	purged map[BusAddress]int
}

func (r *recorder) probe(dev *Device) Driver {
	r.addrs = append(r.addrs, dev.Addr)
	return &recorded{r: r, addr: dev.Addr}
}

type recorded struct {
	r    *recorder
	addr BusAddress
}

func (d *recorded) Purge() {
	if d.r.purged == nil {
		d.r.purged = make(map[BusAddress]int)
	}
	d.r.purged[d.addr]++
}

func resetDrivers(t *testing.T) {
	t.Helper()
	drivers.Lock()
	drivers.probes = nil
	drivers.Unlock()
	Devices = NewDevStore(nil)
}

func TestBusAddress(t *testing.T) {
	a := MakeBusAddress(1, 2, 3)
	if got, want := uint16(a), uint16(0x113); got != want {
		t.Errorf("packed: got 0x%x want 0x%x", got, want)
	}
	if got, want := a.selectAddress(0), uint32(0x80011300); got != want {
		t.Errorf("select: got 0x%08x want 0x%08x", got, want)
	}
	if a.Bus() != 1 || a.Slot() != 2 || a.Fn() != 3 {
		t.Errorf("unpacked: got %d:%d.%d", a.Bus(), a.Slot(), a.Fn())
	}
	if got, want := a.String(), "01:02.3"; got != want {
		t.Errorf("String: got %s want %s", got, want)
	}
}

func TestConfigSizes(t *testing.T) {
	if got, want := unsafe.Sizeof(ConfigHeader{}), uintptr(16); got != want {
		t.Errorf("ConfigHeader: got %d bytes want %d", got, want)
	}
	if got, want := unsafe.Sizeof(DeviceConfig{}), uintptr(64); got != want {
		t.Errorf("DeviceConfig: got %d bytes want %d", got, want)
	}
}

func TestEnumerate(t *testing.T) {
	b := newSimBus()
	id := DeviceID{Intel, 0x10fb}
	b.add(MakeBusAddress(0, 0, 0), id, Network_Ethernet, 0)
	b.add(MakeBusAddress(1, 2, 3), id, Network_Ethernet, 0)
	b.add(MakeBusAddress(255, 31, 7), id, Network_Ethernet, 0)

	// All-ones vendor/device is the not-present sentinel; the bit must
	// stay clear even though the address answers.
	absent := MakeBusAddress(2, 0, 0)
	var regs [16]uint32
	for i := range regs {
		regs[i] = ^uint32(0)
	}
	b.regs[absent] = regs

	m := Enumerate(b)
	if got, want := m.NSet(), uint(3); got != want {
		t.Fatalf("NSet: got %d want %d", got, want)
	}
	for _, a := range []BusAddress{
		MakeBusAddress(0, 0, 0),
		MakeBusAddress(1, 2, 3),
		MakeBusAddress(255, 31, 7),
	} {
		if !m.Get(a) {
			t.Errorf("%s: not present", a)
		}
	}
	if m.Get(absent) {
		t.Errorf("%s: sentinel address marked present", absent)
	}

	// Foreach order is ascending bus, device, function.
	var walked []BusAddress
	m.Foreach(func(a BusAddress) { walked = append(walked, a) })
	for i := 1; i < len(walked); i++ {
		if walked[i-1] >= walked[i] {
			t.Errorf("Foreach out of order: %s before %s",
				walked[i-1], walked[i])
		}
	}
}

func TestEnumerateIdempotent(t *testing.T) {
	b := newSimBus()
	id := DeviceID{Intel, 0x1563}
	b.add(MakeBusAddress(0, 3, 0), id, Network_Ethernet, 0)
	b.add(MakeBusAddress(4, 0, 1), id, Network_Ethernet, 0x80)

	m0 := Enumerate(b)
	m1 := Enumerate(b)
	if *m0 != *m1 {
		t.Error("two scans of unchanged hardware differ")
	}
}

func TestReadDeviceConfig(t *testing.T) {
	b := newSimBus()
	a := MakeBusAddress(3, 4, 0)
	id := DeviceID{Intel, 0x10fb}
	b.add(a, id, Network_Ethernet, 0, 0xfea00004, 0x1, 0xfe000000)

	h := ReadConfigHeader(b, a)
	if h.DeviceID != id {
		t.Errorf("header id: got %v want %v", h.DeviceID, id)
	}
	if h.Type() != Normal {
		t.Errorf("header type: got %v want %v", h.Type(), Normal)
	}

	d := ReadDeviceConfig(b, a)
	if d.DeviceID != id || d.SubID != id {
		t.Errorf("ids: got %v/%v want %v", d.DeviceID, d.SubID, id)
	}
	if d.DeviceClass != Network_Ethernet {
		t.Errorf("class: got %v want %v", d.DeviceClass, Network_Ethernet)
	}
	if got, want := d.BaseAddressRegs[0], BaseAddressReg(0xfea00004); got != want {
		t.Errorf("bar0: got %v want %v", got, want)
	}
	if d.InterruptLine != 5 || d.InterruptPin != 1 {
		t.Errorf("interrupt: got line %d pin %d", d.InterruptLine,
			d.InterruptPin)
	}
}

func TestBridgeFiltered(t *testing.T) {
	resetDrivers(t)
	b := newSimBus()
	id := DeviceID{Intel, 0x10fb}
	normal := MakeBusAddress(0, 1, 0)
	b.add(normal, id, Network_Ethernet, 0)
	b.add(MakeBusAddress(0, 2, 0), id, Bridge_PCI, uint8(Bridge))
	b.add(MakeBusAddress(0, 3, 0), id, Bridge_CARDBUS, uint8(CardBus))
	// Multi-function marker does not make a normal device a bridge.
	multi := MakeBusAddress(0, 4, 0)
	b.add(multi, id, Network_Ethernet, 1<<7)

	r := &recorder{}
	AddDriver(r.probe)
	Init(b, &memSlot{})

	if got, want := len(r.addrs), 2; got != want {
		t.Fatalf("probed %d functions, want %d: %v", got, want, r.addrs)
	}
	if r.addrs[0] != normal || r.addrs[1] != multi {
		t.Errorf("probed %v, want [%s %s]", r.addrs, normal, multi)
	}
}

func TestMultiClaim(t *testing.T) {
	resetDrivers(t)
	b := newSimBus()
	b.add(MakeBusAddress(0, 1, 0), DeviceID{Intel, 0x10fb},
		Network_Ethernet, 0)

	r0, r1 := &recorder{}, &recorder{}
	AddDriver(r0.probe)
	AddDriver(r1.probe)
	Init(b, &memSlot{})

	if got, want := Devices.Len(), 2; got != want {
		t.Errorf("store: got %d instances want %d", got, want)
	}
}

func TestProbePanicAbsorbed(t *testing.T) {
	resetDrivers(t)
	b := newSimBus()
	b.add(MakeBusAddress(0, 1, 0), DeviceID{Intel, 0x10fb},
		Network_Ethernet, 0)
	b.add(MakeBusAddress(0, 2, 0), DeviceID{Intel, 0x1563},
		Network_Ethernet, 0)

	AddDriver(func(dev *Device) Driver { panic("probe setup failed") })
	r := &recorder{}
	AddDriver(r.probe)
	Init(b, &memSlot{})

	if got, want := len(r.addrs), 2; got != want {
		t.Errorf("surviving probe saw %d functions, want %d", got, want)
	}
	if got, want := Devices.Len(), 2; got != want {
		t.Errorf("store: got %d instances want %d", got, want)
	}
}

func TestInitUsesPersistedMap(t *testing.T) {
	resetDrivers(t)
	b := newSimBus()
	b.add(MakeBusAddress(0, 1, 0), DeviceID{Intel, 0x10fb},
		Network_Ethernet, 0)

	s := &memSlot{}
	r := &recorder{}
	AddDriver(r.probe)
	Init(b, s)
	if s.m == nil {
		t.Fatal("first Init did not populate the slot")
	}

	// Second Init in the same cycle reuses the map rather than
	// re-scanning.
	first := *s.m
	b.add(MakeBusAddress(9, 0, 0), DeviceID{Intel, 0x1563},
		Network_Ethernet, 0)
	Init(b, s)
	if *s.m != first {
		t.Error("second Init re-scanned the bus")
	}
}

func TestDestroyDevices(t *testing.T) {
	resetDrivers(t)
	b := newSimBus()
	for slot := uint(1); slot <= 3; slot++ {
		b.add(MakeBusAddress(0, slot, 0), DeviceID{Intel, 0x10fb},
			Network_Ethernet, 0)
	}

	// Simulate an abandoned holder of the store lock: purge must still
	// reach every instance.
	lock := new(sync.Mutex)
	Devices = NewDevStore(lock)

	r := &recorder{}
	AddDriver(r.probe)
	Init(b, &memSlot{})

	lock.Lock()
	defer lock.Unlock()
	DestroyDevices()

	if got, want := len(r.purged), 3; got != want {
		t.Fatalf("purged %d instances, want %d", got, want)
	}
	for a, n := range r.purged {
		if n != 1 {
			t.Errorf("%s: purged %d times, want once", a, n)
		}
	}
}

func TestBarType(t *testing.T) {
	if got, want := BaseAddressReg(0).Type(), Bits32; got != want {
		t.Errorf("00: got %v want %v", got, want)
	}
	if got, want := BaseAddressReg(4).Type(), Bits64; got != want {
		t.Errorf("10: got %v want %v", got, want)
	}
	for _, bad := range []BaseAddressReg{1 << 1, 3 << 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("0x%x: no panic", uint32(bad))
				}
			}()
			bad.Type()
		}()
	}
}

// memSlot is a test stand-in for the cross-reboot store.
type memSlot struct {
	mutex sync.Mutex
	m     *DeviceMap
}

func (s *memSlot) DeviceMap() *DeviceMap {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.m
}

func (s *memSlot) SetDeviceMap(m *DeviceMap) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.m == nil {
		s.m = m
	}
}
