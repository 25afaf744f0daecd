package main

import (
	"os"

	"github.com/pablogoliveira/personia-hub/cmd/cadastro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
