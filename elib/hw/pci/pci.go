// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Generic devices on PCI bus discovered via the configuration mechanism:
// a flat bus/device/function scan, header parsing and a fixed table of
// driver probes.  Bridges are not managed and BARs are never reprogrammed.
package pci

import "fmt"

// Ports of the standard configuration access mechanism.
const (
	ConfigAddress uint16 = 0xcf8
	ConfigData    uint16 = 0xcfc
)

// Bit 31 of ConfigAddress enables configuration space decoding.
const addressEnable = 1 << 31

// BusAddress is bus/device/function packed as (bus<<8)|(device<<3)|fn.
// It doubles as the index into the presence bitmap.
type BusAddress uint16

func MakeBusAddress(bus, slot, fn uint) BusAddress {
	return BusAddress(bus<<8 | slot<<3 | fn)
}

func (a BusAddress) Bus() uint  { return uint(a) >> 8 }
func (a BusAddress) Slot() uint { return uint(a) >> 3 & 0x1f }
func (a BusAddress) Fn() uint   { return uint(a) & 0x7 }

func (a BusAddress) String() string {
	return fmt.Sprintf("%02x:%02x.%01x", a.Bus(), a.Slot(), a.Fn())
}

// selectAddress composes the value written to ConfigAddress to window
// ConfigData onto the given register byte offset of this function.
func (a BusAddress) selectAddress(offset uint) uint32 {
	return addressEnable | uint32(a)<<8 | uint32(offset&0xff)
}

// Device/vendor ID from PCI config space.
type VendorID uint16
type VendorDeviceID uint16

func (v VendorID) String() string       { return fmt.Sprintf("0x%04x", uint16(v)) }
func (d VendorDeviceID) String() string { return fmt.Sprintf("0x%04x", uint16(d)) }

// Vendor/Device pair
type DeviceID struct {
	Vendor VendorID
	Device VendorDeviceID
}

func (d DeviceID) String() string {
	return fmt.Sprintf("%04x:%04x", uint16(d.Vendor), uint16(d.Device))
}

type Command uint16

const (
	IOEnable Command = 1 << iota
	MemoryEnable
	BusMasterEnable
	SpecialCycles
	WriteInvalidate
	VgaPaletteSnoop
	Parity
	AddressDataStepping
	SERR
	BackToBackWrite
	INTxEmulationDisable
)

type Status uint16

// Distinguishes programming interface for device.
// For example, different standards for USB controllers.
type SoftwareInterface uint8

func (x SoftwareInterface) String() string {
	return fmt.Sprintf("0x%02x", uint8(x))
}

// Under PCI, each device has 256 bytes of configuration address space,
// of which the first 64 bytes are standardized as follows:
type ConfigHeader struct {
	DeviceID
	Command
	Status

	Revision uint8

	SoftwareInterface

	DeviceClass

	CacheSize    uint8
	LatencyTimer uint8

	// If bit 7 of this register is set, the device has multiple functions;
	// otherwise, it is a single function device.
	Tp uint8

	Bist uint8
}

type HeaderType uint8

func (c ConfigHeader) Type() HeaderType {
	return HeaderType(c.Tp &^ (1 << 7))
}

const (
	Normal HeaderType = iota
	Bridge
	CardBus
)

func (t HeaderType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Bridge:
		return "bridge"
	case CardBus:
		return "cardbus"
	}
	return fmt.Sprintf("unknown 0x%02x", uint8(t))
}

/* Header type 0 (normal devices) */
type DeviceConfig struct {
	ConfigHeader

	// Base addresses specify locations in memory or I/O space.
	BaseAddressRegs [6]BaseAddressReg

	CardBusCIS uint32

	SubID DeviceID

	RomAddress uint32

	// Config space offset of start of capability list.
	CapabilityOffset uint8
	_                [7]uint8

	InterruptLine uint8
	InterruptPin  uint8
	MinGrant      uint8
	MaxLatency    uint8
}
