package main

import (
	"slices"
	"strings"
	"testing"
)

func TestNewApp(t *testing.T) {
	app := newApp()

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
		if c.Action == nil {
			t.Errorf("command %q has no action", c.Name)
		}
	}
	for _, want := range []string{"tohtml", "towml", "parts", "dumpconfig"} {
		if !slices.Contains(names, want) {
			t.Errorf("command %q is missing, have %v", want, names)
		}
	}
}

func TestCommandHelp(t *testing.T) {
	for _, c := range commands() {
		if strings.Contains(c.CustomHelpTemplate, "%!") {
			t.Errorf("help of %q is malformed:\n%s", c.Name, c.CustomHelpTemplate)
		}
	}

	want := map[string][]string{
		"towml":  {"nodirs", "overwrite", "force-zip-cp", "template", "charset"},
		"tohtml": {"nodirs", "overwrite", "force-zip-cp", "replace", "match-case"},
	}
	for _, c := range commands() {
		names, ok := want[c.Name]
		if !ok {
			continue
		}
		var flags []string
		for _, f := range c.Flags {
			flags = append(flags, f.Names()...)
		}
		for _, name := range names {
			if !slices.Contains(flags, name) {
				t.Errorf("%s flag %q is missing, have %v", c.Name, name, flags)
			}
		}
	}
}
