// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import (
	"unsafe"

	"github.com/platinasystems/pcibus/elib/hw/portio"
)

// readRegs windows ConfigData onto successive 32-bit registers of the
// function at a and reads them in order.
func readRegs(b portio.Bus, a BusAddress, regs []uint32) {
	for i := range regs {
		b.Out32(ConfigAddress, a.selectAddress(uint(i)*4))
		regs[i] = b.In32(ConfigData)
	}
}

// ReadConfigHeader reads the 4 registers common to every header type.
// The word array is reinterpreted in native byte order; the destination
// need not be word aligned.
func ReadConfigHeader(b portio.Bus, a BusAddress) (h ConfigHeader) {
	var w [unsafe.Sizeof(ConfigHeader{}) / 4]uint32
	readRegs(b, a, w[:])
	h = *(*ConfigHeader)(unsafe.Pointer(&w[0]))
	return
}

// ReadDeviceConfig reads the full 16 register type 0 configuration.
// Only call for functions whose header Type() is Normal.
func ReadDeviceConfig(b portio.Bus, a BusAddress) (d DeviceConfig) {
	var w [unsafe.Sizeof(DeviceConfig{}) / 4]uint32
	readRegs(b, a, w[:])
	d = *(*DeviceConfig)(unsafe.Pointer(&w[0]))
	return
}

func ReadConfigUint32(b portio.Bus, a BusAddress, offset uint) uint32 {
	b.Out32(ConfigAddress, a.selectAddress(offset))
	return b.In32(ConfigData)
}

func WriteConfigUint32(b portio.Bus, a BusAddress, offset uint, v uint32) {
	b.Out32(ConfigAddress, a.selectAddress(offset))
	b.Out32(ConfigData, v)
}
