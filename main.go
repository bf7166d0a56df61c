package main

import (
	"github.com/peripherylabs/agentsync/cmd"
	"github.com/peripherylabs/agentsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
