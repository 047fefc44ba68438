// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Goes machine for PCI enumeration and driver binding, run as daemons
// w/in another distro.
package main

import (
	"github.com/platinasystems/pcibus/elib/hw/pci"
	"github.com/platinasystems/pcibus/goes"
	"github.com/platinasystems/pcibus/goes/cmd/pcibus"
	"github.com/platinasystems/pcibus/goes/cmd/pcibusd"
	"github.com/platinasystems/pcibus/goes/cmd/reboot"
	"github.com/platinasystems/pcibus/net/diag"
	"github.com/platinasystems/pcibus/net/intel"
)

func main() {
	// The driver table is fixed before anything probes; there is no
	// registration after this point.
	pci.AddDriver(intel.Probe)
	pci.AddDriver(diag.Probe)

	g := goes.New("goes-pcibus")
	g.Plot(
		pcibus.Command{},
		&pcibusd.Command{},
		reboot.Command{},
	)
	g.Main()
}
