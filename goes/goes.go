// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes plots a machine's commands by name and dispatches
// command line arguments to them.
package goes

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/platinasystems/pcibus/goes/cmd"
	"github.com/platinasystems/pcibus/goes/lang"
)

var Exit = os.Exit

type Goes struct {
	Name   string
	ByName map[string]cmd.Cmd
}

type closer interface {
	Close() error
}

type kinder interface {
	Kind() cmd.Kind
}

type manner interface {
	Man() lang.Alt
}

func New(name string) *Goes {
	return &Goes{Name: name, ByName: make(map[string]cmd.Cmd)}
}

func (g *Goes) Plot(cmds ...cmd.Cmd) {
	for _, v := range cmds {
		g.ByName[v.String()] = v
	}
}

func (g *Goes) Keys() []string {
	keys := make([]string, 0, len(g.ByName))
	for k, v := range g.ByName {
		if w, ok := v.(kinder); ok && w.Kind().IsHidden() {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main runs the args[0] command.  When run w/o args this uses os.Args
// and exits instead of returns on error.
func (g *Goes) Main(args ...string) (err error) {
	if len(args) == 0 {
		args = os.Args
		if len(args) > 0 && filepath.Base(args[0]) == g.Name {
			args = args[1:]
		}
		defer func() {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", g.Name, err)
				Exit(1)
			}
		}()
	}
	if len(args) == 0 {
		return g.usage(nil)
	}

	cmd.Swap(args)
	name := args[0]
	args = args[1:]

	switch name {
	case "apropos":
		return g.apropos(args)
	case "help":
		return g.help(args)
	case "man":
		return g.man(args)
	case "usage":
		return g.usage(args)
	}

	v, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: command not found", name)
	}

	if w, ok := v.(kinder); ok && w.Kind().IsDaemon() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-stop
			if c, ok := v.(closer); ok {
				c.Close()
			}
		}()
		defer signal.Stop(stop)
	}

	return v.Main(args...)
}

func (g *Goes) apropos(args []string) error {
	for _, k := range g.Keys() {
		fmt.Printf("%-15s %s\n", k, g.ByName[k].Apropos())
	}
	return nil
}

func (g *Goes) help(args []string) error {
	if len(args) == 0 {
		return g.apropos(args)
	}
	v, found := g.ByName[args[0]]
	if !found {
		return fmt.Errorf("%s: command not found", args[0])
	}
	fmt.Println("usage:", v.Usage())
	fmt.Println(v.Apropos())
	return nil
}

func (g *Goes) man(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("man: missing command")
	}
	v, found := g.ByName[args[0]]
	if !found {
		return fmt.Errorf("%s: command not found", args[0])
	}
	fmt.Println("NAME")
	fmt.Println("\t", v, "-", v.Apropos())
	fmt.Println("\nSYNOPSIS")
	fmt.Println("\t", v.Usage())
	if m, ok := v.(manner); ok {
		fmt.Println(m.Man())
	}
	return nil
}

func (g *Goes) usage(args []string) error {
	if len(args) > 0 {
		if v, found := g.ByName[args[0]]; found {
			fmt.Println("usage:", v.Usage())
			return nil
		}
		return fmt.Errorf("%s: command not found", args[0])
	}
	fmt.Println("usage:", g.Name, "COMMAND [ARGS]...")
	for _, k := range g.Keys() {
		fmt.Println("\t", g.ByName[k].Usage())
	}
	return nil
}
