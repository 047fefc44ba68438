// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pcibus

import (
	"fmt"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"

	"github.com/platinasystems/pcibus/elib/hw/pci"
	"github.com/platinasystems/pcibus/elib/hw/portio"
	"github.com/platinasystems/pcibus/goes/lang"
)

type Command struct{}

func (Command) String() string { return "pcibus" }

func (Command) Usage() string { return "pcibus [-v] [bus=BUS]" }

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "scan and show the PCI bus",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Walk the whole bus/device/function space through the configuration
	ports and print each responding function.  Bridges and other
	non-type-0 headers are listed but not parsed.

OPTIONS
	-v	also print subsystem, interrupt and base address registers

	bus=BUS
		limit output to the given (hex) bus number`,
	}
}

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-v")
	parm, args := parms.New(args, "bus")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	onlyBus := -1
	if s := parm.ByName["bus"]; len(s) > 0 {
		var bus uint
		if _, err := fmt.Sscanf(s, "%x", &bus); err != nil || bus > 255 {
			return fmt.Errorf("bus: %s: invalid", s)
		}
		onlyBus = int(bus)
	}

	b, err := portio.New()
	if err != nil {
		return err
	}
	defer b.Close()

	m := pci.Enumerate(b)
	m.Foreach(func(a pci.BusAddress) {
		if onlyBus >= 0 && a.Bus() != uint(onlyBus) {
			return
		}
		h := pci.ReadConfigHeader(b, a)
		if h.Type() != pci.Normal {
			fmt.Printf("%s %v class %v [%v]\n",
				a, h.DeviceID, h.DeviceClass, h.Type())
			return
		}
		d := pci.ReadDeviceConfig(b, a)
		fmt.Printf("%s %v class %v\n", a, d.DeviceID, d.DeviceClass)
		if !flag.ByName["-v"] {
			return
		}
		fmt.Printf("\tsubsystem %v irq line %d pin %d\n",
			d.SubID, d.InterruptLine, d.InterruptPin)
		for i := range d.BaseAddressRegs {
			if bar := d.BaseAddressRegs[i]; bar != 0 {
				fmt.Printf("\tbar%d %v\n", i, bar)
			}
		}
	})
	return nil
}
