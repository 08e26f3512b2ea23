package main

import (
	"github.com/prismstudio/certverify/cmd/cli"
)

// main delegates to the cli package.
func main() {
	cli.Execute()
}

//Personal.AI order the ending
