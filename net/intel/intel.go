// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intel binds Intel 82599/X540/X550 family 10G controllers
// discovered on the PCI bus.  The probe maps BAR0 registers and quiets
// the device; a full datapath attaches later through the usual vnet
// plumbing and is out of scope here.
package intel

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/platinasystems/pcibus/elib/hw/pci"
)

// PCI dev IDs
const (
	dev_id_82599_kx4     = 0x10f7
	dev_id_82599_kr      = 0x1517
	dev_id_82599_cx4     = 0x10f9
	dev_id_82599_sfp     = 0x10fb
	dev_id_82599en_sfp   = 0x1557
	dev_id_82599_t3_lom  = 0x151c
	dev_id_x540t         = 0x1528
	dev_id_x540t1        = 0x1560
	dev_id_x550t         = 0x1563
	dev_id_x550em_x_kx4  = 0x15aa
	dev_id_x550em_x_kr   = 0x15ab
	dev_id_x550em_x_sfp  = 0x15ac
	dev_id_x550em_x_10gt = 0x15ad
)

var dev_ids = map[pci.VendorDeviceID]struct{}{
	dev_id_82599_kx4:     struct{}{},
	dev_id_82599_kr:      struct{}{},
	dev_id_82599_cx4:     struct{}{},
	dev_id_82599_sfp:     struct{}{},
	dev_id_82599en_sfp:   struct{}{},
	dev_id_82599_t3_lom:  struct{}{},
	dev_id_x540t:         struct{}{},
	dev_id_x540t1:        struct{}{},
	dev_id_x550t:         struct{}{},
	dev_id_x550em_x_kx4:  struct{}{},
	dev_id_x550em_x_kr:   struct{}{},
	dev_id_x550em_x_sfp:  struct{}{},
	dev_id_x550em_x_10gt: struct{}{},
}

// Register byte offsets in BAR0.
const (
	reg_control                           = 0x00000
	reg_status                            = 0x00008
	reg_interrupt_enable_write_1_to_clear = 0x00888
	reg_rx_enable                         = 0x03000
	reg_tx_dma_control                    = 0x04a80
)

const (
	control_master_disable = 1 << 2
	control_device_reset   = 1 << 26
	rx_enable_rxen         = 1 << 0
	tx_dma_control_te      = 1 << 0
)

// BAR0 register window of the 82599 family.
const regBytes = 128 << 10

type Nic struct {
	addr pci.BusAddress
	id   pci.DeviceID
	mem  []byte
}

func (n *Nic) String() string {
	return fmt.Sprint("intel ", n.id, " @ ", n.addr)
}

func (n *Nic) get(o uint) uint32 {
	return *(*uint32)(unsafe.Pointer(&n.mem[o]))
}

func (n *Nic) set(o uint, v uint32) {
	*(*uint32)(unsafe.Pointer(&n.mem[o])) = v
}

// Probe claims supported Intel devices.  Setup failure of any kind is
// no claim; it never stops enumeration.
func Probe(dev *pci.Device) pci.Driver {
	if dev.Vendor != pci.Intel {
		return nil
	}
	if _, supported := dev_ids[dev.Device]; !supported {
		return nil
	}

	bar := dev.BaseAddressRegs[0]
	if !bar.IsMem() || !bar.Valid() {
		return nil
	}
	base := uint64(bar.Addr())
	if bar.Type() == pci.Bits64 {
		base |= uint64(dev.BaseAddressRegs[1]) << 32
	}

	mem, err := mapRegs(base)
	if err != nil {
		return nil
	}

	n := &Nic{addr: dev.Addr, id: dev.DeviceID, mem: mem}

	// Quiet until a datapath attaches.
	n.set(reg_interrupt_enable_write_1_to_clear, ^uint32(0))

	return n
}

func mapRegs(base uint64) (mem []byte, err error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer f.Close()
	mem, err = syscall.Mmap(int(f.Fd()), int64(base), regBytes,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	return
}

// Purge stops interrupt generation and rx/tx DMA, then resets the
// device.  Plain register stores only: no waits on completion bits, no
// allocation, no assumption that a previous user left the device in a
// consistent state.
func (n *Nic) Purge() {
	if len(n.mem) < regBytes {
		return
	}
	n.set(reg_interrupt_enable_write_1_to_clear, ^uint32(0))
	n.set(reg_rx_enable, n.get(reg_rx_enable)&^uint32(rx_enable_rxen))
	n.set(reg_tx_dma_control,
		n.get(reg_tx_dma_control)&^uint32(tx_dma_control_te))
	n.set(reg_control,
		n.get(reg_control)|control_master_disable|control_device_reset)
	// Posts the writes above.
	_ = n.get(reg_status)
}
