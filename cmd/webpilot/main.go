package main

import (
	"os"

	"github.com/devicelab-dev/webpilot/pkg/cli"
)

func main() {
	os.Exit(cli.Main(os.Args))
}
