package main

import (
	"github.com/leocov-dev/mrserver/cmd"
	"github.com/leocov-dev/mrserver/config"
)

var Version string

func main() {
	config.SetVersion(Version)
	cmd.Execute()
}
