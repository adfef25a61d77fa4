package main

import (
	"os"

	"lyceum/cmd/lyceumctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
