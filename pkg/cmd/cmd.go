//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// Package cmd provides a minimal sub-command framework for the ndvpal tools.
package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/tabwriter"

	"ndvpal/third_party/forked/golang/glog"

	"ndvpal/pkg/version"
)

type (
	ICommand interface {
		GetName() string
		GetDesc() string //get short description
		GetSynopsis() string
		GetDetails() string
		GetOptionDesc() string
		GetExample() string
		AddExample(cmdExample string, desc string)
		AddDetails(txt string)
		Init(name string, desc string)
		Exec()
		Parse(args []string) error
		PrintUsage()
	}

	Command struct {
		Option
		name       string
		desc       string //short description. (one line)
		synopsis   string
		details    string
		examples   string
		optVModule string
	}

	Group struct {
		cmds []ICommand
		name string
	}

	// registry keeps commands in registration order for the usage text.
	registry struct {
		byName map[string]ICommand
		groups []*Group
		others []ICommand
	}
)

var commands = newRegistry()

func newRegistry() *registry {
	return &registry{byName: make(map[string]ICommand)}
}

func (c *Command) Init(name string, desc string) {
	c.name = name
	c.desc = desc
	c.Option.Init(name, flag.ContinueOnError)
	c.StringVar(&c.optVModule, "vmodule", "", "comma-separated list of pattern=N settings for file-filtered logging")
	c.Option.Usage = c.PrintUsage
}

func (c *Command) SetSynopsis(str string) { c.synopsis = str }
func (c *Command) AddDetails(txt string) { c.details += txt }
func (c *Command) GetName() string { return c.name }
func (c *Command) GetDesc() string { return c.desc }
func (c *Command) GetSynopsis() string { return c.synopsis }
func (c *Command) GetDetails() string { return c.details }
func (c *Command) GetExample() string { return c.examples }

func (c *Command) AddExample(cmdExample string, desc string) {
	c.examples += desc + "\n\t\t" + cmdExample + "\n\n"
}

// Write renders the usage page of the command.
func (c *Command) Write(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := usageTemplate.Execute(tw, c); err != nil {
		fmt.Fprintln(w, err)
	}
	tw.Flush()
}

func (c *Command) PrintUsage() {
	page(c.Write)
}

func (c *Command) Validate() {
	if !c.Parsed() {
		glog.Exit("not parsed")
	}
}

func (c *Command) Parse(arguments []string) error {
	if err := c.Option.Parse(arguments); err != nil {
		return err
	}
	if c.optVModule != "" {
		glog.SetVModule(c.optVModule)
	}
	return nil
}

// page pipes the output through $PAGER when one is set and falls back to stdout.
func page(write func(io.Writer)) {
	if pager := os.Getenv("PAGER"); pager != "" {
		var buf bytes.Buffer
		write(&buf)
		p := exec.Command(pager)
		p.Stdin = &buf
		p.Stdout = os.Stdout
		if err := p.Run(); err == nil {
			return
		}
	}
	write(os.Stdout)
}

func (r *registry) add(c ICommand) bool {
	if _, found := r.byName[c.GetName()]; found {
		glog.Warningf("command %s has been registered", c.GetName())
		return false
	}
	r.byName[c.GetName()] = c
	return true
}

func (r *registry) group(name string) *Group {
	for _, g := range r.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// lookup returns the first argument naming a registered command, and the
// remaining arguments with the ones before the command name kept in front.
func (r *registry) lookup(argv []string) (ICommand, []string) {
	for i, arg := range argv {
		if c, ok := r.byName[arg]; ok {
			args := make([]string, 0, len(argv)-1)
			args = append(args, argv[:i]...)
			return c, append(args, argv[i+1:]...)
		}
	}
	return nil, argv
}

func (r *registry) writeCommands(w io.Writer) {
	if len(r.groups)+len(r.others) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCOMMAND")
	list := func(cmds []ICommand) {
		for _, c := range cmds {
			fmt.Fprintf(w, "    * %s\n      %s\n", c.GetName(), c.GetDesc())
		}
	}
	for _, g := range r.groups {
		fmt.Fprintf(w, "  %s\n", g.name)
		list(g.cmds)
	}
	if len(r.others) != 0 {
		if len(r.groups) != 0 {
			fmt.Fprintln(w, "  others")
		}
		list(r.others)
	}
}

// RegisterNewGroup returns nil if a group of that name exists.
func RegisterNewGroup(name string, cmds ...ICommand) *Group {
	if commands.group(name) != nil {
		glog.Warningf("group %s has been registered", name)
		return nil
	}
	grp := &Group{name: name}
	for _, c := range cmds {
		if commands.add(c) {
			grp.cmds = append(grp.cmds, c)
		}
	}
	commands.groups = append(commands.groups, grp)
	return grp
}

func Register(c ICommand) bool {
	if !commands.add(c) {
		return false
	}
	commands.others = append(commands.others, c)
	return true
}

func GetCommand(name string) ICommand {
	return commands.byName[name]
}

// ParseCommandLine finds the command named on the command line. args is nil
// when none is found.
func ParseCommandLine() (ICommand, []string) {
	c, args := commands.lookup(os.Args[1:])
	if c == nil {
		return nil, nil
	}
	return c, args
}

func Write(w io.Writer) {
	fmt.Fprintf(w, "\nUSAGE\n  %s [-version] [[options] <command> [<args>]] \n\n", filepath.Base(os.Args[0]))
	WriteCommand(w)
}

func WriteCommand(w io.Writer) {
	commands.writeCommands(w)
}

func PrintUsage() {
	page(Write)
}

// PrintVersionOrUsage handles a command line without a command.
func PrintVersionOrUsage() {
	var option Option
	var displayVersion bool
	option.Init(filepath.Base(os.Args[0]), flag.ContinueOnError)
	option.BoolOption(&displayVersion, "version", false, "display version info.")
	option.Usage = PrintUsage
	if err := option.Parse(os.Args[1:]); err != nil {
		return
	}
	if displayVersion {
		version.PrintVersionInfo()
		return
	}
	PrintUsage()
}
