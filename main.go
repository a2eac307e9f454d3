package main

import (
	"os"

	"github.com/inovacc/gitroster/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
