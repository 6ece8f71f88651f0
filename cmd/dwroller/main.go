package main

import (
	"github.com/alexpolo1/dwroller-sub001/internal/cli"
)

func main() {
	cli.Execute()
}
