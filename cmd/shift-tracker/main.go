package main

import (
	"os"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
