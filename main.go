package main

import (
	"github.com/crossforge/xcodemcp/cmd"
)

func main() {
	cmd.Execute()
}
