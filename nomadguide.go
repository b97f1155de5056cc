package main

import (
	"fmt"
	"os"

	"nomadguide/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nomadguide: %v\n", err)
		os.Exit(1)
	}
}
