package main

import (
	"os"

	"github.com/urbanthreadz/brandchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
