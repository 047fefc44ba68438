// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import (
	"github.com/platinasystems/log"

	"github.com/platinasystems/pcibus/elib/hw/portio"
)

// Debug enables a verbose enumeration trace.  Diagnostics only; no
// effect on control flow.
var Debug = false

// Devices is the process-wide store of bound driver instances.  It is
// populated by Init and iterated, not cleared, by DestroyDevices; after
// a soft reboot the new kernel discovers everything fresh.
var Devices = NewDevStore(nil)

// Slot is the cross-soft-reboot home of the presence bitmap, guarded by
// its own lock.  Init reads it if present and writes it once if absent.
type Slot interface {
	// DeviceMap returns the persisted map, nil when no scan has run
	// this power cycle.
	DeviceMap() *DeviceMap
	SetDeviceMap(*DeviceMap)
}

// Enumerate walks every bus/device/function address in ascending order
// and records which ones respond.  A function that is absent reads as
// all-ones; real vendor/device IDs are never all-ones.  The scan is a
// pure function of bus state: no retries, no early exit, idempotent for
// unchanged hardware.
func Enumerate(b portio.Bus) *DeviceMap {
	m := new(DeviceMap)
	for bus := uint(0); bus < 256; bus++ {
		for slot := uint(0); slot < 32; slot++ {
			for fn := uint(0); fn < 8; fn++ {
				a := MakeBusAddress(bus, slot, fn)
				b.Out32(ConfigAddress, a.selectAddress(0))
				if b.In32(ConfigData) != 0xffffffff {
					m.Set(a)
				}
			}
		}
	}
	return m
}

// Init enumerates the bus, parses each responding normal function and
// offers it to the driver table, pushing every claim into Devices.
// The scan itself runs at most once per power cycle: a map already in
// slot is reused.  The check-then-populate on slot is not race free;
// callers serialize first-time enumeration.
func Init(b portio.Bus, slot Slot) {
	m := slot.DeviceMap()
	if m == nil {
		m = Enumerate(b)
		slot.SetDeviceMap(m)
	}

	m.Foreach(func(a BusAddress) {
		h := ReadConfigHeader(b, a)

		// Probing bridges, cardbus bridges and anything else with a
		// nonzero type is out of scope.
		if h.Type() != Normal {
			return
		}

		dev := &Device{Addr: a}
		dev.DeviceConfig = ReadDeviceConfig(b, a)

		if Debug {
			log.Print("pci: ", a, " device ", dev.DeviceID,
				" subsystem ", dev.SubID)
		}

		for _, d := range probe(dev) {
			Devices.Push(d)
		}
	})
}

// DestroyDevices purges every bound instance ahead of a soft reboot.
// It bypasses the store lock via Shatter, so it must only run once all
// other cores are stopped; the caller may be a panic handler.  Purge
// failures are not observable.
func DestroyDevices() {
	for _, d := range Devices.Shatter() {
		d.Purge()
	}
}
