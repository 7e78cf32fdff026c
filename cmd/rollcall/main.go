package main

import (
	"os"

	"github.com/softusing/rollcall/cmd/rollcall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
