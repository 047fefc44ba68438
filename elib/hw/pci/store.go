// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pci

import "sync"

// DevStore is the ordered collection of bound driver instances.  Normal
// mutation happens under the lock; the kernel supplies an
// interrupt-disabling sync.Locker when interrupts are in play.
type DevStore struct {
	lock sync.Locker
	devs []Driver
}

func NewDevStore(lock sync.Locker) *DevStore {
	if lock == nil {
		lock = new(sync.Mutex)
	}
	return &DevStore{lock: lock}
}

func (s *DevStore) Push(d Driver) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.devs = append(s.devs, d)
}

func (s *DevStore) Len() (n int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.devs)
}

func (s *DevStore) Foreach(f func(d Driver)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, d := range s.devs {
		f(d)
	}
}

// Shatter returns the instances without touching the lock.  This is the
// one sanctioned exception to the locking discipline, for teardown ahead
// of a soft reboot where the caller may itself be a panic handler that
// interrupted the lock holder.  Only valid once the caller has stopped
// every other core, so that no holder of the lock can resume.
func (s *DevStore) Shatter() []Driver {
	return s.devs
}
