// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package kexec

import (
	"os"
	"syscall"
)

// Prepare flushes what can still be flushed before the kernel is
// swapped under us.
func Prepare() {
	for _, f := range []*os.File{
		os.Stdout,
		os.Stderr,
	} {
		syscall.Fsync(int(f.Fd()))
	}
	syscall.Sync()
}
