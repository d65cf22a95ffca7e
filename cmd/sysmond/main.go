package main

import (
	"os"

	"sysmond.sh/cmd/sysmond/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
