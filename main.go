package main

import (
	"github.com/starpipe/starpipe/cmd"
)

func main() {
	cmd.Execute()
}
