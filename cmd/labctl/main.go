package main

import (
	"fmt"
	"os"

	"github.com/example/labctl/internal/labctl"
	"github.com/example/labctl/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		labctl.Usage()
		os.Exit(labctl.ExitFailure)
	}

	var err error
	switch os.Args[1] {
	case "setup":
		err = tui.StartWizard()
	default:
		labctl.InitLogging()
		err = labctl.Run(os.Args[1:])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(labctl.ExitCode(err))
	}
}
