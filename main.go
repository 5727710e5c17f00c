package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/huna/cmd"
	"github.com/PolarWolf314/huna/internal/ui"
)

func main() {
	stop := cmd.Registry.Guard(os.Exit)
	err := cmd.Execute()
	stop()

	if drainErr := cmd.Registry.Drain(); drainErr != nil {
		fmt.Fprintln(os.Stderr, ui.Failure("Could not remove temporary files: "+drainErr.Error(), "Run huna doctor"))
	}
	if err != nil {
		if !cmd.Reported(err) {
			fmt.Fprintln(os.Stderr, ui.Failure(err.Error(), ""))
		}
		os.Exit(1)
	}
}
