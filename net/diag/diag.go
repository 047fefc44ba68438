// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag claims every ethernet class function to log what the
// scan found.  It binds beside whatever functional driver also claims
// the device; the registry keeps both.
package diag

import (
	"fmt"

	"github.com/platinasystems/log"

	"github.com/platinasystems/pcibus/elib/hw/pci"
)

type dev struct {
	addr pci.BusAddress
	id   pci.DeviceID
}

func (d *dev) String() string {
	return fmt.Sprint("diag ", d.id, " @ ", d.addr)
}

func Probe(d *pci.Device) pci.Driver {
	if d.DeviceClass != pci.Network_Ethernet {
		return nil
	}
	log.Print("pci: ", d.Addr, " ethernet ", d.DeviceID,
		" subsystem ", d.SubID,
		" irq line ", d.InterruptLine, " pin ", d.InterruptPin)
	return &dev{addr: d.Addr, id: d.DeviceID}
}

// Purge has nothing asynchronous to stop; this driver never programs
// the device.
func (*dev) Purge() {}
