package main

import (
	"github.com/andrescamacho/industry-go/internal/adapters/cli"
)

func main() {
	cli.Execute(bootstrap)
}
