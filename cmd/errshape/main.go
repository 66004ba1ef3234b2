package main

import (
	"os"

	"github.com/errshape/errshape/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
