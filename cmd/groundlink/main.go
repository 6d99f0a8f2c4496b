package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/groundlink-io/groundlink/cmd/groundlink/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
