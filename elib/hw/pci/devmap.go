// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

// NBusAddresses covers the whole bus/device/function space.
const NBusAddresses = 256 * 32 * 8

// DeviceMap records which addresses had a responding device during the
// last full scan, one bit per BusAddress.  Words are fixed at 64 bits so
// the map has a stable shape in the cross-reboot store.
type DeviceMap [NBusAddresses / 64]uint64

// index gives word index and mask for given bus address
func deviceMapIndex(a BusAddress) (i uint, m uint64) {
	i = uint(a) / 64
	m = 1 << (uint(a) % 64)
	return
}

func (p *DeviceMap) Get(a BusAddress) bool {
	i, m := deviceMapIndex(a)
	return p[i]&m != 0
}

func (p *DeviceMap) Set(a BusAddress) (old bool) {
	i, m := deviceMapIndex(a)
	v := p[i]
	old = v&m != 0
	p[i] = v | m
	return
}

// Foreach calls f for each present address in ascending bus, device,
// function order.
func (p *DeviceMap) Foreach(f func(a BusAddress)) {
	for i, w := range p {
		if w == 0 {
			continue
		}
		for bit := uint(0); bit < 64; bit++ {
			if w&(1<<bit) != 0 {
				f(BusAddress(uint(i)*64 + bit))
			}
		}
	}
}

func (p *DeviceMap) NSet() (n uint) {
	p.Foreach(func(BusAddress) { n++ })
	return
}
