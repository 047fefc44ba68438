// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package persist keeps the PCI presence bitmap across a soft restart.
// Each slot implements pci.Slot: read-if-present, write-once-if-absent,
// guarded by its own lock.
package persist

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/platinasystems/redis"

	"github.com/platinasystems/pcibus/elib/hw/pci"
)

// DefaultField is the machine hash field holding the encoded bitmap.
const DefaultField = "pci.devmap"

// Mem is a process-local slot; the map lives only as long as the
// process.  Used by one-shot commands and tests.
type Mem struct {
	mutex sync.Mutex
	m     *pci.DeviceMap
}

func (s *Mem) DeviceMap() *pci.DeviceMap {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.m
}

func (s *Mem) SetDeviceMap(m *pci.DeviceMap) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.m == nil {
		s.m = m
	}
}

// Redis stores the bitmap hex encoded in the machine hash, which redisd
// carries across a goes soft restart the way the kernel's persist store
// carries it across a kexec.
type Redis struct {
	mutex sync.Mutex
	Field string
}

func NewRedis() *Redis { return &Redis{Field: DefaultField} }

func (s *Redis) DeviceMap() *pci.DeviceMap {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v, err := redis.Hget(redis.DefaultHash, s.Field)
	if err != nil || len(v) == 0 {
		return nil
	}
	m, err := Decode(v)
	if err != nil {
		return nil
	}
	return m
}

func (s *Redis) SetDeviceMap(m *pci.DeviceMap) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if v, _ := redis.Hget(redis.DefaultHash, s.Field); len(v) > 0 {
		return
	}
	redis.Hset(redis.DefaultHash, s.Field, Encode(m))
}

// Encode renders the map as hex of little endian 64-bit words.
func Encode(m *pci.DeviceMap) string {
	b := make([]byte, len(m)*8)
	for i, w := range m {
		binary.LittleEndian.PutUint64(b[i*8:], w)
	}
	return hex.EncodeToString(b)
}

func Decode(s string) (m *pci.DeviceMap, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	m = new(pci.DeviceMap)
	if len(b) != len(m)*8 {
		return nil, fmt.Errorf("persist: device map is %d bytes, want %d",
			len(b), len(m)*8)
	}
	for i := range m {
		m[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return
}
