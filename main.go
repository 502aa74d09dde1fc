package main

import (
	"github.com/treesync/treesync/cmd"
	"github.com/treesync/treesync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
