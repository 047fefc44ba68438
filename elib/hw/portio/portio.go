// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package portio is the two-port windowed register access primitive used
// to reach PCI configuration space.
package portio

import "os"

// Bus does fixed-latency 32-bit accesses to x86 I/O ports.  These never
// suspend; an implementation must not be a blocking transport.
type Bus interface {
	Out32(port uint16, v uint32)
	In32(port uint16) (v uint32)
}

// Port is the kernel's port device.  Reads and writes are positioned at
// the port number.
type Port struct {
	f *os.File
}

func New() (p *Port, err error) {
	f, err := os.OpenFile("/dev/port", os.O_RDWR, 0)
	if err != nil {
		return
	}
	p = &Port{f: f}
	return
}

func (p *Port) Close() error { return p.f.Close() }

func (p *Port) Out32(port uint16, v uint32) {
	var b [4]byte
	for i := range b {
		b[i] = byte((v >> uint(8*i)) & 0xff)
	}
	if _, err := p.f.WriteAt(b[:], int64(port)); err != nil {
		panic(err)
	}
}

func (p *Port) In32(port uint16) (v uint32) {
	var b [4]byte
	if _, err := p.f.ReadAt(b[:], int64(port)); err != nil {
		panic(err)
	}
	for i := range b {
		v |= uint32(b[i]) << (8 * uint(i))
	}
	return
}
