package main

import (
	"fmt"
	"os"

	"github.com/Afrawles/sprintboard/internal/clierr"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
