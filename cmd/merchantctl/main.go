package main

import (
	"os"

	"merchant-client/internal/cli"
	"merchant-client/pkg/merchant"
)

func main() {
	if err := cli.Execute(merchant.Version); err != nil {
		os.Exit(1)
	}
}
