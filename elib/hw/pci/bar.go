// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import "fmt"

type BaseAddressReg uint32

func (b BaseAddressReg) IsMem() bool {
	return b&(1<<0) == 0
}

func (b BaseAddressReg) Addr() uint32 {
	return uint32(b &^ 0xf)
}

func (b BaseAddressReg) Valid() bool {
	return b.Addr() != 0
}

// BarType is the memory decode width of a memory BAR, bits 2:1 of the
// register.
type BarType uint32

const (
	Bits32 BarType = 0
	Bits64 BarType = 2
)

func (t BarType) String() string {
	if t == Bits64 {
		return "64-bit"
	}
	return "32-bit"
}

// Type decodes the width of a memory BAR.  A conformant device encodes
// only 32-bit or 64-bit; anything else means broken hardware or a
// decoding bug, and there is no way to continue with a BAR of unknown
// shape, so this panics.
func (b BaseAddressReg) Type() BarType {
	switch t := BarType(b >> 1 & 3); t {
	case Bits32, Bits64:
		return t
	}
	panic(fmt.Errorf("pci: invalid BAR type: 0x%08x", uint32(b)))
}

func (b BaseAddressReg) String() string {
	if b == 0 {
		return "{}"
	}
	x := uint32(b)
	tp := "mem"
	loc := ""
	if !b.IsMem() {
		tp = "i/o"
	} else {
		switch (x >> 1) & 3 {
		case 0:
			loc = "32-bit "
		case 1:
			loc = "< 1M "
		case 2:
			loc = "64-bit "
		case 3:
			loc = "unknown "
		}
		if x&(1<<3) != 0 {
			loc += "prefetchable "
		}
	}
	return fmt.Sprintf("{%s: %s0x%08x}", tp, loc, b.Addr())
}
