package main

import (
	"context"
	"os"

	"github.com/grovetools/rnsgit/cmd"
)

func main() {
	if err := cmd.Execute(context.Background(), os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cmd.ExitError); ok {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
