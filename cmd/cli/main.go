package main

import (
	"github.com/DeBrosOfficial/contacts/pkg/cli"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	v := version
	if commit != "" {
		v += " (commit " + commit + ")"
	}
	if date != "" {
		v += " built " + date
	}
	cli.Execute(v)
}
