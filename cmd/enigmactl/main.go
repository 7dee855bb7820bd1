package main

import (
	"github.com/enigmahunt/enigmahunt/internal/cli"
)

func main() {
	cli.Execute()
}
