// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package reboot

import (
	"fmt"
	"syscall"

	"github.com/platinasystems/flags"

	"github.com/platinasystems/pcibus/elib/hw/pci"
	"github.com/platinasystems/pcibus/goes/lang"
	"github.com/platinasystems/pcibus/kexec"
)

type Command struct{}

func (Command) String() string { return "reboot" }

func (Command) Usage() string { return "reboot [-f]" }

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "kexec the loaded kernel after quiescing devices",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Purge every bound PCI device so nothing is left generating
	interrupts or DMA while the next kernel comes up, then kexec it,
	falling back to an ordinary restart if no kernel is loaded.

	By the time this runs all other activity must already be stopped;
	the purge walk takes the device store without its lock.

OPTIONS
	-f	skip the device purge`,
	}
}

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-f")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	if !flag.ByName["-f"] {
		pci.DestroyDevices()
	}

	kexec.Prepare()

	_ = syscall.Reboot(syscall.LINUX_REBOOT_CMD_KEXEC)

	return syscall.Reboot(syscall.LINUX_REBOOT_CMD_RESTART)
}
