// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import "fmt"

// DeviceClass is the class/sub-class pair at config offset 0xa,
// sub-class in the low byte.
type DeviceClass uint16

const (
	Undefined          DeviceClass = 0x0000
	Undefined_VGA      DeviceClass = 0x0001
	Storage_SCSI       DeviceClass = 0x0100
	Storage_IDE        DeviceClass = 0x0101
	Storage_RAID       DeviceClass = 0x0104
	Storage_SATA       DeviceClass = 0x0106
	Storage_SAS        DeviceClass = 0x0107
	Storage_Other      DeviceClass = 0x0180
	Network_Ethernet   DeviceClass = 0x0200
	Network_Token_Ring DeviceClass = 0x0201
	Network_FDDI       DeviceClass = 0x0202
	Network_ATM        DeviceClass = 0x0203
	Network_Other      DeviceClass = 0x0280
	Display_VGA        DeviceClass = 0x0300
	Display_XGA        DeviceClass = 0x0301
	Display_Other      DeviceClass = 0x0380
	Memory_RAM         DeviceClass = 0x0500
	Memory_Flash       DeviceClass = 0x0501
	Bridge_Host        DeviceClass = 0x0600
	Bridge_ISA         DeviceClass = 0x0601
	Bridge_PCI         DeviceClass = 0x0604
	Bridge_CARDBUS     DeviceClass = 0x0607
	Bridge_Other       DeviceClass = 0x0680
	System_PIC         DeviceClass = 0x0800
	System_DMA         DeviceClass = 0x0801
	System_Timer       DeviceClass = 0x0802
	System_RTC         DeviceClass = 0x0803
	System_Other       DeviceClass = 0x0880
	Serial_Firewire    DeviceClass = 0x0c00
	Serial_USB         DeviceClass = 0x0c03
	Serial_SMBUS       DeviceClass = 0x0c05
)

func (c DeviceClass) String() string { return fmt.Sprintf("0x%04x", uint16(c)) }

const (
	Broadcom VendorID = 0x14e4
	Intel    VendorID = 0x8086
	Mellanox VendorID = 0x15b3
	RealTek  VendorID = 0x10ec
)
