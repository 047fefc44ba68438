// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pcibusd enumerates the PCI bus, binds the machine's driver
// table and publishes the result to redis.
package pcibusd

import (
	"fmt"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/atsock"
	"github.com/platinasystems/log"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"
	"github.com/satori/go.uuid"

	"github.com/platinasystems/pcibus/elib/hw/pci"
	"github.com/platinasystems/pcibus/elib/hw/portio"
	"github.com/platinasystems/pcibus/goes/cmd"
	"github.com/platinasystems/pcibus/goes/lang"
	"github.com/platinasystems/pcibus/internal/persist"
)

const Name = "pcibusd"

type Command struct {
	Info
}

type Info struct {
	mutex sync.Mutex
	rpc   *atsock.RpcServer
	pub   *publisher.Publisher
	stop  chan struct{}
	port  *portio.Port
	slot  *persist.Redis
	lasts map[string]string
}

func (*Command) String() string { return Name }

func (*Command) Usage() string { return Name }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "PCI enumeration daemon, publishes to redis",
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(...string) error {
	b := &backoff.Backoff{
		Min:    1 * time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: false,
	}
	for redis.IsReady() != nil {
		time.Sleep(b.Duration())
	}

	port, err := portio.New()
	if err != nil {
		return err
	}
	defer port.Close()

	c.port = port
	c.slot = persist.NewRedis()
	c.stop = make(chan struct{})
	c.lasts = make(map[string]string)

	if c.pub, err = publisher.New(); err != nil {
		return err
	}

	if c.rpc, err = atsock.NewRpcServer(Name); err != nil {
		return err
	}

	rpc.Register(&c.Info)
	if err = redis.Assign(redis.DefaultHash+":pci.", Name, "Info"); err != nil {
		return err
	}

	pci.Init(port, c.slot)
	log.Print(Name, ": ", pci.Devices.Len(), " bound driver instances")

	c.publishDrivers()
	c.update()

	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return nil
		case <-t.C:
			c.update()
		}
	}
}

func (c *Command) Close() error {
	close(c.stop)
	return nil
}

// publishDrivers tags each bound instance so subscribers can tell two
// claims on the same function apart.
func (c *Info) publishDrivers() {
	pci.Devices.Foreach(func(d pci.Driver) {
		name := "driver"
		if s, ok := d.(fmt.Stringer); ok {
			name = s.String()
		}
		c.pub.Print("pci.driver.", uuid.NewV4(), ": ", name)
	})
}

// update re-reads every present function and publishes changed fields.
func (c *Info) update() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	m := c.slot.DeviceMap()
	if m == nil {
		m = pci.Enumerate(c.port)
	}
	m.Foreach(func(a pci.BusAddress) {
		h := pci.ReadConfigHeader(c.port, a)
		prefix := fmt.Sprint("pci.", a, ".")
		c.publish(prefix+"id", h.DeviceID.String())
		c.publish(prefix+"class", h.DeviceClass.String())
		if h.Type() != pci.Normal {
			c.publish(prefix+"type", h.Type().String())
			return
		}
		d := pci.ReadDeviceConfig(c.port, a)
		c.publish(prefix+"subsystem", d.SubID.String())
		c.publish(prefix+"irq.line", fmt.Sprint(d.InterruptLine))
	})
}

func (c *Info) publish(k, v string) {
	if c.lasts[k] != v {
		c.pub.Print(k, ": ", v)
		c.lasts[k] = v
	}
}

func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	field := strings.TrimPrefix(a.Field, "pci.")
	if field != "rescan" {
		return fmt.Errorf("cannot hset: %s", a.Field)
	}
	i.mutex.Lock()
	// Forget the last published values so the next update republishes
	// the whole table.
	i.lasts = make(map[string]string)
	i.mutex.Unlock()
	i.update()
	*r = 1
	return nil
}
