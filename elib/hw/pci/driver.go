// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import (
	"sync"

	"github.com/platinasystems/log"
)

// Driver is a bound driver instance.  Higher layers that need the
// concrete type get it with an ordinary type assertion.
type Driver interface {
	// Purge is invoked when we're doing a soft reboot, possibly from an
	// exceptionally hostile environment: a panic inside an NMI handler,
	// with a previous user of the device interrupted mid-use and other
	// cores already halted.  It must stop anything asynchronous the
	// device is driving (DMA, interrupt generation) well enough that the
	// freshly reloaded kernel can re-run enumeration, must not block and
	// must not assume the device's internal state is consistent.  There
	// is no error return; best effort only.
	Purge()
}

// Device is the transient snapshot handed to each probe: the function's
// address plus its type 0 configuration.  It is not retained after
// probing; a driver that wants the configuration later re-derives it.
type Device struct {
	Addr BusAddress
	DeviceConfig
}

// ProbeFunc inspects a discovered device and either claims and
// initializes it, returning the bound instance, or returns nil.  Any
// internal setup failure is a nil return, never an error that stops
// enumeration.
type ProbeFunc func(dev *Device) Driver

var drivers struct {
	sync.Mutex
	probes []ProbeFunc
}

// AddDriver appends a probe to the fixed driver table.  Call from the
// machine main before Init; there is no registration after enumeration
// has run.
func AddDriver(p ProbeFunc) {
	drivers.Lock()
	defer drivers.Unlock()
	drivers.probes = append(drivers.probes, p)
}

// probe offers dev to every probe in table order and collects all
// claims.  Deliberately permissive: more than one driver may bind the
// same function, e.g. a diagnostic logger beside a functional driver.
// Conflict detection between claimants is left to the driver layer.
func probe(dev *Device) (bound []Driver) {
	drivers.Lock()
	probes := drivers.probes
	drivers.Unlock()
	for _, p := range probes {
		if d := tryProbe(p, dev); d != nil {
			bound = append(bound, d)
		}
	}
	return
}

// tryProbe keeps a panicking probe from aborting the walk over the
// remaining functions; the panic counts as no claim.
func tryProbe(p ProbeFunc, dev *Device) (d Driver) {
	defer func() {
		if e := recover(); e != nil {
			log.Print("pci: ", dev.Addr, " probe panic: ", e)
			d = nil
		}
	}()
	d = p(dev)
	return
}
